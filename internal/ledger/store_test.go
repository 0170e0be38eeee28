package ledger_test

import (
	"context"
	"testing"
	"time"

	"duplex/internal/ledger"
	"duplex/internal/testsupport"
)

func TestCircuitOpensAtThreshold(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	const key = "/pdfs/Doe-2019-Networks.pdf"

	for attempt := 1; attempt <= ledger.FailureThreshold; attempt++ {
		open, err := store.IsCircuitOpen(ctx, key)
		if err != nil {
			t.Fatalf("IsCircuitOpen: %v", err)
		}
		if open {
			t.Fatalf("circuit open after %d failures, want closed", attempt-1)
		}
		if err := store.RecordFailure(ctx, key, "engine exit=2"); err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
	}

	open, err := store.IsCircuitOpen(ctx, key)
	if err != nil {
		t.Fatalf("IsCircuitOpen: %v", err)
	}
	if !open {
		t.Fatalf("circuit closed after %d failures, want open", ledger.FailureThreshold)
	}

	record, err := store.Failure(ctx, key)
	if err != nil {
		t.Fatalf("Failure: %v", err)
	}
	if record.AttemptCount != ledger.FailureThreshold {
		t.Fatalf("attempt count = %d, want %d", record.AttemptCount, ledger.FailureThreshold)
	}
	if record.LastReason != "engine exit=2" {
		t.Fatalf("last reason = %q", record.LastReason)
	}
}

func TestCircuitStaysOpenAcrossReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()
	const key = "/pdfs/Smith-2020-DeepLearning.pdf"

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	for i := 0; i < ledger.FailureThreshold; i++ {
		if err := store.RecordFailure(ctx, key, "timeout"); err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	open, err := reopened.IsCircuitOpen(ctx, key)
	if err != nil {
		t.Fatalf("IsCircuitOpen: %v", err)
	}
	if !open {
		t.Fatal("circuit should remain open across process lifetimes")
	}
}

func TestResetClosesCircuit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()
	const key = "/pdfs/stuck.pdf"

	for i := 0; i < ledger.FailureThreshold; i++ {
		if err := store.RecordFailure(ctx, key, "exit=1"); err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
	}
	removed, err := store.ResetFailures(ctx, key)
	if err != nil {
		t.Fatalf("ResetFailures: %v", err)
	}
	if removed != ledger.FailureThreshold {
		t.Fatalf("removed = %d, want %d", removed, ledger.FailureThreshold)
	}
	open, err := store.IsCircuitOpen(ctx, key)
	if err != nil {
		t.Fatalf("IsCircuitOpen: %v", err)
	}
	if open {
		t.Fatal("circuit should close after operator reset")
	}
}

func TestRunLogAppendAndQuery(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	entries := []ledger.RunLogEntry{
		{RunID: "run-1", File: "a.pdf", Outcome: ledger.OutcomeTranslated, Pages: 50, SizeBytes: 5 << 20, Duration: 90 * time.Second},
		{RunID: "run-1", File: "b.pdf", Outcome: ledger.OutcomeSkipped, Reason: "already-translated"},
		{RunID: "run-2", File: "c.pdf", Outcome: ledger.OutcomeDegraded, Reason: "target locked"},
	}
	for _, entry := range entries {
		if err := store.AppendRunLog(ctx, entry); err != nil {
			t.Fatalf("AppendRunLog: %v", err)
		}
	}

	all, err := store.RunLog(ctx, ledger.RunLogQuery{})
	if err != nil {
		t.Fatalf("RunLog: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].File != "c.pdf" {
		t.Fatalf("expected newest first, got %q", all[0].File)
	}

	run1, err := store.RunLog(ctx, ledger.RunLogQuery{RunID: "run-1"})
	if err != nil {
		t.Fatalf("RunLog run-1: %v", err)
	}
	if len(run1) != 2 {
		t.Fatalf("len(run1) = %d, want 2", len(run1))
	}

	limited, err := store.RunLog(ctx, ledger.RunLogQuery{Limit: 1})
	if err != nil {
		t.Fatalf("RunLog limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("len(limited) = %d, want 1", len(limited))
	}
}

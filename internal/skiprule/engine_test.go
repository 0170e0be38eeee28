package skiprule_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"duplex/internal/config"
	"duplex/internal/document"
	"duplex/internal/ledger"
	"duplex/internal/logging"
	"duplex/internal/provenance"
	"duplex/internal/services/vlm"
	"duplex/internal/skiprule"
	"duplex/internal/testsupport"
)

type fakeProber struct {
	report vlm.Report
	err    error
	calls  int
}

func (f *fakeProber) Probe(_ context.Context, _ string, _ int) (vlm.Report, error) {
	f.calls++
	return f.report, f.err
}

func testDoc(name string) document.Document {
	return document.Document{
		Path:      "/library/" + name,
		SizeBytes: 1 << 20,
		ModTime:   time.Now(),
	}
}

func newEngine(t *testing.T, cfg *config.Config, store document.Store, prober skiprule.LanguageProber) *skiprule.Engine {
	t.Helper()
	return skiprule.NewEngine(cfg, store, prober, logging.NewNop())
}

func TestDecideProceedsOnCleanDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewFakeStore()
	store.PageCounts["/library/Doe-2019-Networks.pdf"] = 12
	prober := &fakeProber{report: vlm.Report{Votes: map[string]int{"en": 3}, Sampled: 3}}

	engine := newEngine(t, cfg, store, prober)
	decision := engine.Decide(context.Background(), testDoc("Doe-2019-Networks.pdf"), ledger.FailureRecord{}, nil)
	if decision.Skip {
		t.Fatalf("expected proceed, got skip via %s: %s", decision.Rule, decision.Reason)
	}
	if prober.calls != 1 {
		t.Fatalf("prober calls = %d, want 1", prober.calls)
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewFakeStore()
	store.PageCounts["/library/Doe-2019-Networks.pdf"] = 500

	engine := newEngine(t, cfg, store, &fakeProber{})
	doc := testDoc("Doe-2019-Networks.pdf")
	first := engine.Decide(context.Background(), doc, ledger.FailureRecord{}, nil)
	second := engine.Decide(context.Background(), doc, ledger.FailureRecord{}, nil)
	if first != second {
		t.Fatalf("decisions diverged: %+v vs %+v", first, second)
	}
}

func TestArtifactSuffixShortCircuits(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewFakeStore()
	prober := &fakeProber{}
	engine := newEngine(t, cfg, store, prober)

	for _, name := range []string{
		"Doe-2019-Networks_original.pdf",
		"Doe-2019-Networks.no_watermark.zh.mono.pdf",
		"Doe-2019-Networks.merged-sidecar.pdf",
	} {
		decision := engine.Decide(context.Background(), testDoc(name), ledger.FailureRecord{}, nil)
		if !decision.Skip || decision.Rule != "artifact-suffix" {
			t.Fatalf("%s: decision = %+v, want artifact-suffix skip", name, decision)
		}
	}
	if prober.calls != 0 {
		t.Fatal("probe must not run for artifacts")
	}
}

func TestAlreadyTranslatedMetadata(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := newEngine(t, cfg, testsupport.NewFakeStore(), &fakeProber{})

	meta := provenance.Translated(time.Now(), "m", nil, nil, 18)
	decision := engine.Decide(context.Background(), testDoc("Doe-2019-Networks.pdf"), ledger.FailureRecord{}, &meta)
	if !decision.Skip || decision.Rule != "already-translated" {
		t.Fatalf("decision = %+v, want already-translated skip", decision)
	}

	untranslated := provenance.Minimal(time.Now())
	decision = engine.Decide(context.Background(), testDoc("Doe-2019-Networks.pdf"), ledger.FailureRecord{}, &untranslated)
	if decision.Skip && decision.Rule == "already-translated" {
		t.Fatalf("untranslated metadata must not trigger the rule: %+v", decision)
	}
}

func TestCircuitOpenRule(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := newEngine(t, cfg, testsupport.NewFakeStore(), &fakeProber{})

	failure := ledger.FailureRecord{AttemptCount: ledger.FailureThreshold, LastReason: "engine exit 2"}
	decision := engine.Decide(context.Background(), testDoc("Doe-2019-Networks.pdf"), failure, nil)
	if !decision.Skip || decision.Rule != "circuit-open" {
		t.Fatalf("decision = %+v, want circuit-open skip", decision)
	}

	failure.AttemptCount = ledger.FailureThreshold - 1
	store := testsupport.NewFakeStore()
	store.PageCounts["/library/Doe-2019-Networks.pdf"] = 5
	engine = newEngine(t, cfg, store, &fakeProber{err: errors.New("down")})
	decision = engine.Decide(context.Background(), testDoc("Doe-2019-Networks.pdf"), failure, nil)
	if decision.Skip {
		t.Fatalf("below threshold must not skip: %+v", decision)
	}
}

func TestFilenameRules(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := newEngine(t, cfg, testsupport.NewFakeStore(), &fakeProber{})

	decision := engine.Decide(context.Background(), testDoc("深度学习.pdf"), ledger.FailureRecord{}, nil)
	if !decision.Skip || decision.Rule != "filename-script" {
		t.Fatalf("decision = %+v, want filename-script skip", decision)
	}

	decision = engine.Decide(context.Background(), testDoc("2020-Smith-Paper.pdf"), ledger.FailureRecord{}, nil)
	if !decision.Skip || decision.Rule != "filename-format" {
		t.Fatalf("decision = %+v, want filename-format skip", decision)
	}
}

func TestPageAndSizeCeilings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewFakeStore()
	store.PageCounts["/library/Doe-2019-Networks.pdf"] = cfg.Skip.PageCeiling + 1
	engine := newEngine(t, cfg, store, &fakeProber{})

	decision := engine.Decide(context.Background(), testDoc("Doe-2019-Networks.pdf"), ledger.FailureRecord{}, nil)
	if !decision.Skip || decision.Rule != "page-ceiling" {
		t.Fatalf("decision = %+v, want page-ceiling skip", decision)
	}

	big := testDoc("Roe-2021-Archive.pdf")
	big.SizeBytes = cfg.Skip.MaxSizeBytes + 1
	store.PageCounts["/library/Roe-2021-Archive.pdf"] = 4
	decision = engine.Decide(context.Background(), big, ledger.FailureRecord{}, nil)
	if !decision.Skip || decision.Rule != "size-ceiling" {
		t.Fatalf("decision = %+v, want size-ceiling skip", decision)
	}
}

func TestUnreadableInputSkips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewFakeStore()
	store.PageCountErr["/library/Doe-2019-Networks.pdf"] = errors.New("malformed xref")
	engine := newEngine(t, cfg, store, &fakeProber{})

	decision := engine.Decide(context.Background(), testDoc("Doe-2019-Networks.pdf"), ledger.FailureRecord{}, nil)
	if !decision.Skip || decision.Rule != "page-ceiling" {
		t.Fatalf("decision = %+v, want unreadable skip via page-ceiling", decision)
	}
}

func TestKeywordRule(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithKeywords("draft"))
	store := testsupport.NewFakeStore()
	store.PageCounts["/library/Doe-2019-Networks-draft.pdf"] = 4
	engine := newEngine(t, cfg, store, &fakeProber{})

	decision := engine.Decide(context.Background(), testDoc("Doe-2019-Networks-draft.pdf"), ledger.FailureRecord{}, nil)
	if !decision.Skip || decision.Rule != "keyword" {
		t.Fatalf("decision = %+v, want keyword skip", decision)
	}
}

func TestLanguageProbeSkipsTargetLanguage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewFakeStore()
	store.PageCounts["/library/Doe-2019-Networks.pdf"] = 10
	prober := &fakeProber{report: vlm.Report{Votes: map[string]int{"zh": 2, "en": 1}, Sampled: 3}}
	engine := newEngine(t, cfg, store, prober)

	decision := engine.Decide(context.Background(), testDoc("Doe-2019-Networks.pdf"), ledger.FailureRecord{}, nil)
	if !decision.Skip || decision.Rule != "language-probe" {
		t.Fatalf("decision = %+v, want language-probe skip", decision)
	}
}

func TestLanguageProbeNormalizesRegionalTarget(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Engine.LangOut = "zh-CN"
	store := testsupport.NewFakeStore()
	store.PageCounts["/library/Doe-2019-Networks.pdf"] = 10
	prober := &fakeProber{report: vlm.Report{Votes: map[string]int{"zh": 3}, Sampled: 3}}
	engine := newEngine(t, cfg, store, prober)

	decision := engine.Decide(context.Background(), testDoc("Doe-2019-Networks.pdf"), ledger.FailureRecord{}, nil)
	if !decision.Skip || decision.Rule != "language-probe" {
		t.Fatalf("decision = %+v, want regional target to match base-tag votes", decision)
	}
}

func TestLanguageProbeTieSkips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewFakeStore()
	store.PageCounts["/library/Doe-2019-Networks.pdf"] = 10
	prober := &fakeProber{report: vlm.Report{Votes: map[string]int{"zh": 1, "en": 1}, Sampled: 2}}
	engine := newEngine(t, cfg, store, prober)

	decision := engine.Decide(context.Background(), testDoc("Doe-2019-Networks.pdf"), ledger.FailureRecord{}, nil)
	if !decision.Skip || decision.Rule != "language-probe" {
		t.Fatalf("decision = %+v, want tie resolved toward skip", decision)
	}
}

func TestLanguageProbeErrorProceeds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewFakeStore()
	store.PageCounts["/library/Doe-2019-Networks.pdf"] = 10
	prober := &fakeProber{err: errors.New("vision api down")}
	engine := newEngine(t, cfg, store, prober)

	decision := engine.Decide(context.Background(), testDoc("Doe-2019-Networks.pdf"), ledger.FailureRecord{}, nil)
	if decision.Skip {
		t.Fatalf("probe errors must never skip: %+v", decision)
	}
}

func TestDisabledRulesAreSkipped(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Skip.FilenameFormat = false
	cfg.Skip.LanguageProbe = false
	store := testsupport.NewFakeStore()
	store.PageCounts["/library/2020-Smith-Paper.pdf"] = 4
	prober := &fakeProber{}
	engine := newEngine(t, cfg, store, prober)

	decision := engine.Decide(context.Background(), testDoc("2020-Smith-Paper.pdf"), ledger.FailureRecord{}, nil)
	if decision.Skip {
		t.Fatalf("disabled rules still firing: %+v", decision)
	}
	if prober.calls != 0 {
		t.Fatal("disabled probe must not run")
	}
}

package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"duplex/internal/config"
	"duplex/internal/document"
	"duplex/internal/fileutil"
	"duplex/internal/ledger"
	"duplex/internal/merge"
	"duplex/internal/provenance"
	"duplex/internal/services"
	"duplex/internal/services/pdf2zh"
	"duplex/internal/skiprule"
)

// Translator runs the external engine for one document.
type Translator interface {
	Invoke(ctx context.Context, doc document.Document) (pdf2zh.Result, error)
}

// Merger composes original and translation into the final document.
type Merger interface {
	Merge(ctx context.Context, leftPath, rightPath, outPath string) (merge.Result, error)
}

// Embedder writes provenance metadata into an artifact.
type Embedder interface {
	Embed(ctx context.Context, target string, meta provenance.Metadata, originalPath string, minimal bool) error
}

// Decider runs the skip-rule chain for one document.
type Decider interface {
	Decide(ctx context.Context, doc document.Document, failure ledger.FailureRecord, meta *provenance.Metadata) skiprule.Decision
}

// Summary counts per-outcome results for one run.
type Summary struct {
	Total      int
	Translated int
	Skipped    int
	Failed     int
	Degraded   int
}

func (s *Summary) add(outcome ledger.Outcome) {
	s.Total++
	switch outcome {
	case ledger.OutcomeTranslated:
		s.Translated++
	case ledger.OutcomeSkipped:
		s.Skipped++
	case ledger.OutcomeFailed:
		s.Failed++
	case ledger.OutcomeDegraded:
		s.Degraded++
	}
}

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Store      document.Store
	Decider    Decider
	Translator Translator
	Merger     Merger
	Embedder   Embedder
	Ledger     *ledger.Store
}

// Orchestrator drives one batch run: scan, decide, back up, translate,
// merge, embed, clean up, one file at a time. No single file's failure ever
// aborts the batch.
type Orchestrator struct {
	cfg    *config.Config
	deps   Deps
	pacer  *Pacer
	logger *slog.Logger
	clock  func() time.Time
	lock   *flock.Flock
	dryRun bool
}

// Option adjusts orchestrator behavior.
type Option func(*Orchestrator)

// WithDryRun evaluates every skip decision but leaves the library, the
// engine, and the ledger untouched.
func WithDryRun() Option {
	return func(o *Orchestrator) { o.dryRun = true }
}

// NewOrchestrator wires a run over the configured library root.
func NewOrchestrator(cfg *config.Config, deps Deps, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    cfg,
		deps:   deps,
		pacer:  NewPacer(cfg.Engine.PaceSeconds),
		logger: logger,
		clock:  time.Now,
		lock:   flock.New(filepath.Join(cfg.Paths.LogDir, "duplex.lock")),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// fileResult is the per-file material for the run log.
type fileResult struct {
	outcome  ledger.Outcome
	reason   string
	pages    int
	duration time.Duration
}

// Run executes one batch pass and returns its summary. The run lock is held
// for the whole pass; a second concurrent run refuses to start.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	ok, err := o.lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return Summary{}, errors.New("another duplex run is already in progress")
	}
	defer func() {
		_ = o.lock.Unlock()
	}()

	runID := uuid.NewString()
	files, err := Scan(o.cfg.Paths.RootDir)
	if err != nil {
		return Summary{}, fmt.Errorf("scan %s: %w", o.cfg.Paths.RootDir, err)
	}
	o.logger.Info("batch run started",
		"run_id", runID,
		"root", o.cfg.Paths.RootDir,
		"files", len(files))

	var summary Summary
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result := o.processOne(ctx, path)
		summary.add(result.outcome)
		o.appendRunLog(ctx, runID, path, result)
	}

	o.logger.Info("batch run finished",
		"run_id", runID,
		"total", summary.Total,
		"translated", summary.Translated,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"degraded", summary.Degraded)
	return summary, nil
}

func (o *Orchestrator) appendRunLog(ctx context.Context, runID, path string, result fileResult) {
	if o.dryRun {
		return
	}
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	entry := ledger.RunLogEntry{
		RunID:     runID,
		File:      path,
		Outcome:   result.outcome,
		Reason:    result.reason,
		Pages:     result.pages,
		SizeBytes: size,
		Duration:  result.duration,
	}
	if err := o.deps.Ledger.AppendRunLog(ctx, entry); err != nil {
		o.logger.Warn("run log append failed", "file", path, "error", err)
	}
}

func (o *Orchestrator) processOne(ctx context.Context, path string) fileResult {
	started := o.clock()
	finish := func(outcome ledger.Outcome, reason string, pages int) fileResult {
		return fileResult{outcome: outcome, reason: reason, pages: pages, duration: o.clock().Sub(started)}
	}

	doc, err := document.Snapshot(path)
	if err != nil {
		o.logger.Warn("skipping unreadable file", "file", path, "error", err)
		return finish(ledger.OutcomeSkipped, fmt.Sprintf("unreadable: %v", err), 0)
	}

	fileKey, err := filepath.Abs(doc.Path)
	if err != nil {
		fileKey = doc.Path
	}
	meta, err := provenance.ReadMetadata(ctx, o.deps.Store, doc.Path)
	if err != nil {
		o.logger.Debug("embedded metadata unreadable", "file", doc.Name(), "error", err)
		meta = nil
	}
	failure, err := o.deps.Ledger.Failure(ctx, fileKey)
	if err != nil {
		o.logger.Warn("failure ledger read failed", "file", doc.Name(), "error", err)
	}

	decision := o.deps.Decider.Decide(ctx, doc, failure, meta)
	if decision.Skip {
		// suppress_skipped quiets the log line only; the run-log row is
		// always written so every scanned file has one entry per run.
		if !o.cfg.Cleanup.SuppressSkipped {
			o.logger.Debug("skipping file",
				"file", doc.Name(),
				"rule", decision.Rule,
				"reason", decision.Reason)
		}
		return finish(ledger.OutcomeSkipped, decision.Rule+": "+decision.Reason, 0)
	}
	if o.dryRun {
		o.logger.Info("would translate", "file", doc.Name())
		return finish(ledger.OutcomeTranslated, "dry run", 0)
	}

	backupPath := document.BackupPath(doc.Path)
	if err := fileutil.CopyFileVerified(doc.Path, backupPath); err != nil {
		o.logger.Error("backup failed", "file", doc.Name(), "error", err)
		return finish(ledger.OutcomeFailed, fmt.Sprintf("backup: %v", err), 0)
	}
	if err := o.deps.Embedder.Embed(ctx, backupPath, provenance.Minimal(o.clock()), "", true); err != nil {
		o.logger.Warn("backup metadata embed failed", "file", doc.Name(), "error", err)
	}

	if err := o.pacer.Wait(ctx); err != nil {
		o.discardBackup(doc, backupPath)
		return finish(ledger.OutcomeFailed, fmt.Sprintf("paused: %v", err), 0)
	}
	o.logger.Info("translating", "file", doc.Name())
	translation, err := o.deps.Translator.Invoke(ctx, doc)
	if err != nil {
		o.logger.Error("translation failed", "file", doc.Name(), "error", err)
		if lerr := o.deps.Ledger.RecordFailure(ctx, fileKey, err.Error()); lerr != nil {
			o.logger.Warn("failure ledger write failed", "file", doc.Name(), "error", lerr)
		}
		// The original is untouched; a leftover backup would trip the
		// backup-exists rule next run and starve the circuit breaker
		// of its retries.
		o.discardBackup(doc, backupPath)
		return finish(ledger.OutcomeFailed, err.Error(), 0)
	}

	sourceDims, err := o.deps.Store.PageDims(ctx, backupPath)
	if err != nil {
		o.logger.Warn("source geometry unreadable", "file", doc.Name(), "error", err)
	}

	merged, err := o.deps.Merger.Merge(ctx, doc.Path, translation.MonoPath, doc.Path)
	if err != nil {
		// Structural mismatches and compose failures are not engine
		// failures; the circuit stays untouched.
		o.logger.Error("merge failed", "file", doc.Name(), "error", err,
			"structural", errors.Is(err, services.ErrStructural))
		o.discardBackup(doc, backupPath)
		return finish(ledger.OutcomeFailed, err.Error(), len(sourceDims))
	}

	resultDims, err := o.deps.Store.PageDims(ctx, merged.Path)
	if err != nil {
		o.logger.Warn("result geometry unreadable", "file", doc.Name(), "error", err)
	}
	full := provenance.Translated(o.clock(), o.modelName(), sourceDims, resultDims, o.cfg.Merge.GapPt)
	if err := o.deps.Embedder.Embed(ctx, merged.Path, full, backupPath, false); err != nil {
		o.logger.Error("metadata embed failed", "file", doc.Name(), "error", err)
		return finish(ledger.OutcomeFailed, fmt.Sprintf("embed metadata: %v", err), len(sourceDims))
	}

	o.cleanupArtifacts(doc, translation.MonoPath, backupPath)

	outcome := ledger.OutcomeTranslated
	reason := ""
	if merged.Degraded {
		outcome = ledger.OutcomeDegraded
		reason = "canonical target locked, wrote sidecar"
	}
	o.logger.Info("file finished",
		"file", doc.Name(),
		"outcome", string(outcome),
		"output", merged.Path,
		"ocr_fallback", translation.UsedOCR)
	return finish(outcome, reason, len(sourceDims))
}

// discardBackup removes the backup made for an attempt that failed before
// the original was replaced. The original is still canonical, so the next
// run must see the file as untranslated.
func (o *Orchestrator) discardBackup(doc document.Document, backupPath string) {
	if err := os.Remove(backupPath); err != nil && !os.IsNotExist(err) {
		o.logger.Warn("backup discard failed", "file", doc.Name(), "error", err)
	}
}

// cleanupArtifacts applies the configured post-run deletions. Errors are
// logged only; leftover intermediates are skipped as artifacts next run.
func (o *Orchestrator) cleanupArtifacts(doc document.Document, monoPath, backupPath string) {
	if o.cfg.Cleanup.DeleteMono || o.cfg.Cleanup.DeleteAllExceptFinal {
		if err := os.Remove(monoPath); err != nil && !os.IsNotExist(err) {
			o.logger.Warn("mono cleanup failed", "file", doc.Name(), "error", err)
		}
	}
	if o.cfg.Cleanup.DeleteAllExceptFinal {
		if err := os.Remove(backupPath); err != nil && !os.IsNotExist(err) {
			o.logger.Warn("backup cleanup failed", "file", doc.Name(), "error", err)
		}
	}
}

func (o *Orchestrator) modelName() string {
	if o.cfg.Engine.Service == config.ServiceFree {
		return config.FreeServiceModel
	}
	return o.cfg.Engine.Model
}

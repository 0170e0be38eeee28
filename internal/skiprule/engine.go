package skiprule

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"duplex/internal/config"
	"duplex/internal/document"
	"duplex/internal/ledger"
	"duplex/internal/provenance"
	"duplex/internal/services/vlm"
)

// Decision is the outcome of running the rule chain over one document.
type Decision struct {
	Skip   bool
	Rule   string
	Reason string
}

func proceed() Decision {
	return Decision{}
}

func skip(rule, reason string) Decision {
	return Decision{Skip: true, Rule: rule, Reason: reason}
}

// LanguageProber is the slice of the vlm prober the engine needs.
type LanguageProber interface {
	Probe(ctx context.Context, pdfPath string, pageCount int) (vlm.Report, error)
}

// Engine runs an ordered chain of skip rules over a document. The chain is
// OR-combined and short-circuits on the first matching rule; rules are
// ordered cheap to expensive so the language probe only runs for documents
// nothing else ruled out. Given identical inputs the outcome is identical,
// and deciding never mutates anything.
type Engine struct {
	cfg    *config.Config
	store  document.Store
	prober LanguageProber
	logger *slog.Logger
	rules  []rule
}

type rule struct {
	name  string
	check func(ctx context.Context, ev *evaluation) Decision
}

// evaluation carries per-document state across the chain, including the
// lazily read page count shared by the page ceiling and probe rules.
type evaluation struct {
	doc       document.Document
	failure   ledger.FailureRecord
	meta      *provenance.Metadata
	pageCount int
	pageErr   error
	pagesRead bool
}

func (ev *evaluation) pages(ctx context.Context, store document.Store) (int, error) {
	if !ev.pagesRead {
		ev.pagesRead = true
		ev.pageCount, ev.pageErr = store.PageCount(ctx, ev.doc.Path)
	}
	return ev.pageCount, ev.pageErr
}

// NewEngine builds the rule chain from configuration. Disabled rules are
// left out of the chain entirely.
func NewEngine(cfg *config.Config, store document.Store, prober LanguageProber, logger *slog.Logger) *Engine {
	e := &Engine{cfg: cfg, store: store, prober: prober, logger: logger}
	e.rules = e.buildRules()
	return e
}

// Decide runs the chain. meta is the parsed embedded metadata when the
// document carries one, nil otherwise.
func (e *Engine) Decide(ctx context.Context, doc document.Document, failure ledger.FailureRecord, meta *provenance.Metadata) Decision {
	ev := &evaluation{doc: doc, failure: failure, meta: meta}
	for _, r := range e.rules {
		if decision := r.check(ctx, ev); decision.Skip {
			return decision
		}
	}
	return proceed()
}

func (e *Engine) buildRules() []rule {
	skipCfg := e.cfg.Skip
	rules := []rule{
		{name: "artifact-suffix", check: e.checkArtifactSuffix},
	}
	if skipCfg.TranslatedMetadata {
		rules = append(rules, rule{name: "already-translated", check: e.checkAlreadyTranslated})
	}
	rules = append(rules,
		rule{name: "backup-exists", check: e.checkBackupExists},
		rule{name: "circuit-open", check: e.checkCircuitOpen},
	)
	if skipCfg.FilenameScript {
		rules = append(rules, rule{name: "filename-script", check: e.checkFilenameScript})
	}
	if skipCfg.FilenameFormat {
		rules = append(rules, rule{name: "filename-format", check: e.checkFilenameFormat})
	}
	if skipCfg.MaxPages {
		rules = append(rules, rule{name: "page-ceiling", check: e.checkPageCeiling})
	}
	if skipCfg.MaxFileSize {
		rules = append(rules, rule{name: "size-ceiling", check: e.checkSizeCeiling})
	}
	if skipCfg.KeywordFilter && len(skipCfg.Keywords) > 0 {
		rules = append(rules, rule{name: "keyword", check: e.checkKeyword})
	}
	if skipCfg.LanguageProbe && e.prober != nil {
		rules = append(rules, rule{name: "language-probe", check: e.checkLanguageProbe})
	}
	return rules
}

func (e *Engine) checkArtifactSuffix(_ context.Context, ev *evaluation) Decision {
	if document.IsArtifact(ev.doc.Name()) {
		return skip("artifact-suffix", "pipeline artifact")
	}
	return proceed()
}

func (e *Engine) checkAlreadyTranslated(_ context.Context, ev *evaluation) Decision {
	if ev.meta != nil && ev.meta.IsTranslated() {
		return skip("already-translated", "embedded metadata reports translated")
	}
	return proceed()
}

func (e *Engine) checkBackupExists(_ context.Context, ev *evaluation) Decision {
	if _, err := os.Stat(document.BackupPath(ev.doc.Path)); err == nil {
		return skip("backup-exists", "original backup already present")
	}
	return proceed()
}

func (e *Engine) checkCircuitOpen(_ context.Context, ev *evaluation) Decision {
	if ev.failure.CircuitOpen() {
		return skip("circuit-open", fmt.Sprintf("failed %d times, last: %s", ev.failure.AttemptCount, ev.failure.LastReason))
	}
	return proceed()
}

func (e *Engine) checkFilenameScript(_ context.Context, ev *evaluation) Decision {
	if document.ContainsCJK(ev.doc.Stem()) {
		return skip("filename-script", "filename already in target script")
	}
	return proceed()
}

func (e *Engine) checkFilenameFormat(_ context.Context, ev *evaluation) Decision {
	if !document.IsNormalizedStem(ev.doc.Stem()) {
		return skip("filename-format", "filename not in Author-Year-Title form")
	}
	return proceed()
}

func (e *Engine) checkPageCeiling(ctx context.Context, ev *evaluation) Decision {
	pages, err := ev.pages(ctx, e.store)
	if err != nil {
		return skip("page-ceiling", fmt.Sprintf("unreadable input: %v", err))
	}
	if ceiling := e.cfg.Skip.PageCeiling; ceiling > 0 && pages > ceiling {
		return skip("page-ceiling", fmt.Sprintf("%d pages exceeds ceiling %d", pages, ceiling))
	}
	return proceed()
}

func (e *Engine) checkSizeCeiling(_ context.Context, ev *evaluation) Decision {
	if limit := e.cfg.Skip.MaxSizeBytes; limit > 0 && ev.doc.SizeBytes > limit {
		return skip("size-ceiling", fmt.Sprintf("%d bytes exceeds ceiling %d", ev.doc.SizeBytes, limit))
	}
	return proceed()
}

func (e *Engine) checkKeyword(_ context.Context, ev *evaluation) Decision {
	name := strings.ToLower(ev.doc.Name())
	for _, keyword := range e.cfg.Skip.Keywords {
		if strings.Contains(name, keyword) {
			return skip("keyword", fmt.Sprintf("filename contains %q", keyword))
		}
	}
	return proceed()
}

// checkLanguageProbe skips documents whose sampled pages are already
// dominated by the target language. A failed probe never skips; the document
// proceeds to translation and the probe failure is only logged.
func (e *Engine) checkLanguageProbe(ctx context.Context, ev *evaluation) Decision {
	pages, err := ev.pages(ctx, e.store)
	if err != nil {
		return skip("language-probe", fmt.Sprintf("unreadable input: %v", err))
	}
	report, err := e.prober.Probe(ctx, ev.doc.Path, pages)
	if err != nil {
		e.logger.Warn("language probe failed, proceeding to translation",
			"file", ev.doc.Name(),
			"error", err)
		return proceed()
	}
	// Votes are normalized base tags, so the configured target must be
	// reduced the same way before comparing ("zh-CN" vs "zh").
	target := vlm.NormalizeLanguage(e.cfg.Engine.LangOut)
	if report.Dominates(target) {
		return skip("language-probe", fmt.Sprintf("sampled pages already %s (%d of %d votes)", target, report.Votes[target], report.Sampled))
	}
	return proceed()
}

package pdf2zh

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"duplex/internal/config"
	"duplex/internal/document"
	"duplex/internal/fileutil"
	"duplex/internal/services"
)

// Result reports a successful invocation.
type Result struct {
	MonoPath string
	UsedOCR  bool
}

// Invoker wraps the engine with the retry-with-OCR-fallback policy and the
// filename-encoding workaround. It never touches the failure ledger; a
// terminal error here is the orchestrator's cue to do that.
type Invoker struct {
	engine  Engine
	langOut string
	timeout time.Duration
	logger  *slog.Logger
}

// NewInvoker constructs an Invoker from configuration.
func NewInvoker(engine Engine, cfg *config.Config, logger *slog.Logger) *Invoker {
	return &Invoker{
		engine:  engine,
		langOut: cfg.Engine.LangOut,
		timeout: time.Duration(cfg.Engine.TimeoutSeconds) * time.Second,
		logger:  logger,
	}
}

// Invoke runs the engine for doc. Policy: one attempt without OCR, then on
// failure exactly one retry with the OCR fallback flag; a second failure is
// terminal for this call. Non-ASCII filenames are processed through an ASCII
// alias and the output renamed back to the canonical mono pattern.
func (i *Invoker) Invoke(ctx context.Context, doc document.Document) (Result, error) {
	outputDir := doc.Dir()
	started := time.Now()
	defer i.cleanupDroppings(outputDir, started)

	workPath := doc.Path
	aliased := false
	if !document.IsASCII(doc.Name()) {
		alias := filepath.Join(outputDir, "duplex_tmp_"+uuid.NewString()[:8]+".pdf")
		if err := fileutil.CopyFile(doc.Path, alias); err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, "translate", "alias", "copy to safe name", err)
		}
		defer os.Remove(alias)
		workPath = alias
		aliased = true
	}

	usedOCR := false
	err := i.translateOnce(ctx, workPath, outputDir, false)
	if err != nil {
		i.logger.Warn("translation failed, retrying with OCR fallback",
			"file", doc.Name(),
			"error", err)
		usedOCR = true
		if err = i.translateOnce(ctx, workPath, outputDir, true); err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, "translate", "pdf2zh", "retry with OCR fallback exhausted", err)
		}
	}

	monoPath, found := i.locateMono(workPath)
	if !found {
		return Result{}, services.Wrap(services.ErrExternalTool, "translate", "pdf2zh", "mono output not found", nil)
	}

	if aliased {
		canonical := document.MonoPath(doc.Path, i.langOut)
		if err := os.Rename(monoPath, canonical); err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, "translate", "alias", "rename output to canonical pattern", err)
		}
		if _, err := os.Stat(canonical); err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, "translate", "alias", "unexpected-output-name", err)
		}
		monoPath = canonical
	}

	return Result{MonoPath: monoPath, UsedOCR: usedOCR}, nil
}

func (i *Invoker) translateOnce(ctx context.Context, inputPath, outputDir string, ocr bool) error {
	attemptCtx := ctx
	if i.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}
	return i.engine.Translate(attemptCtx, Request{
		InputPath:   inputPath,
		OutputDir:   outputDir,
		OCRFallback: ocr,
	})
}

// locateMono finds the engine's mono rendering for inputPath: the exact
// derived name first, then the newest glob match since engine versions differ
// in how they spell the infix.
func (i *Invoker) locateMono(inputPath string) (string, bool) {
	expected := document.MonoPath(inputPath, i.langOut)
	if _, err := os.Stat(expected); err == nil {
		return expected, true
	}

	matches, err := filepath.Glob(document.MonoGlob(inputPath))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.Slice(matches, func(a, b int) bool {
		return modTime(matches[a]).After(modTime(matches[b]))
	})
	return matches[0], true
}

// cleanupDroppings removes CSV files the engine writes next to its outputs
// during this invocation window.
func (i *Invoker) cleanupDroppings(dir string, since time.Time) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return
	}
	removed := 0
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.ModTime().Before(since.Add(-time.Second)) {
			continue
		}
		if os.Remove(match) == nil {
			removed++
		}
	}
	if removed > 0 {
		i.logger.Debug("removed engine csv droppings", "dir", dir, "count", removed)
	}
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

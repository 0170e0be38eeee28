package merge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"duplex/internal/document"
	"duplex/internal/services"
)

const (
	defaultReplaceAttempts = 4
	defaultReplaceBackoff  = 250 * time.Millisecond
)

// Result reports where the composed document ended up.
type Result struct {
	Path     string
	Degraded bool
}

// Engine composes the side-by-side document and moves it into place. The
// composition itself is delegated to the document store; this layer owns the
// page-count precondition and the replace-or-degrade policy around the
// canonical target.
type Engine struct {
	store           document.Store
	gap             float64
	logger          *slog.Logger
	replaceAttempts int
	replaceBackoff  time.Duration
	sleeper         func(time.Duration)
}

// Option customizes the engine.
type Option func(*Engine)

// WithReplaceRetries overrides the replace attempt count and base backoff.
func WithReplaceRetries(attempts int, backoff time.Duration) Option {
	return func(e *Engine) {
		if attempts > 0 {
			e.replaceAttempts = attempts
		}
		if backoff >= 0 {
			e.replaceBackoff = backoff
		}
	}
}

// WithSleeper overrides how backoff sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(e *Engine) {
		if sleeper != nil {
			e.sleeper = sleeper
		}
	}
}

// NewEngine constructs a merge engine writing composed sheets with the given
// gap in points between the page halves.
func NewEngine(store document.Store, gap float64, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:           store,
		gap:             gap,
		logger:          logger,
		replaceAttempts: defaultReplaceAttempts,
		replaceBackoff:  defaultReplaceBackoff,
		sleeper:         time.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Merge composes leftPath and rightPath page by page into outPath. Unequal
// page counts are a structural mismatch and nothing is written. When the
// canonical target stays locked through every replace attempt, the result is
// written to the sidecar path instead and reported as degraded.
func (e *Engine) Merge(ctx context.Context, leftPath, rightPath, outPath string) (Result, error) {
	leftPages, err := e.store.PageCount(ctx, leftPath)
	if err != nil {
		return Result{}, err
	}
	rightPages, err := e.store.PageCount(ctx, rightPath)
	if err != nil {
		return Result{}, err
	}
	if leftPages != rightPages {
		return Result{}, services.Wrap(services.ErrStructural, "merge", "precondition",
			fmt.Sprintf("page count mismatch: %d vs %d", leftPages, rightPages), nil)
	}

	tmpPath := filepath.Join(filepath.Dir(outPath), ".duplex-merge-"+uuid.NewString()[:8]+".pdf")
	if err := e.store.ComposeSideBySide(ctx, leftPath, rightPath, tmpPath, e.gap); err != nil {
		os.Remove(tmpPath)
		return Result{}, services.Wrap(services.ErrExternalTool, "merge", "compose", "compose side-by-side document", err)
	}

	if err := e.replaceWithBackoff(ctx, tmpPath, outPath); err == nil {
		return Result{Path: outPath}, nil
	} else if ctxErr := ctx.Err(); ctxErr != nil {
		os.Remove(tmpPath)
		return Result{}, ctxErr
	} else {
		e.logger.Warn("canonical target stayed locked, degrading to sidecar",
			"target", outPath,
			"error", err)
	}

	sidecar := document.SidecarPath(outPath)
	if err := os.Rename(tmpPath, sidecar); err != nil {
		os.Remove(tmpPath)
		return Result{}, services.Wrap(services.ErrLockedTarget, "merge", "replace", "write sidecar fallback", err)
	}
	return Result{Path: sidecar, Degraded: true}, nil
}

// replaceWithBackoff renames tmpPath over target, retrying with exponential
// backoff while the target is held open by a viewer.
func (e *Engine) replaceWithBackoff(ctx context.Context, tmpPath, target string) error {
	var lastErr error
	delay := e.replaceBackoff
	for attempt := 1; attempt <= e.replaceAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = os.Rename(tmpPath, target)
		if lastErr == nil {
			return nil
		}
		if attempt < e.replaceAttempts {
			e.sleeper(delay)
			delay *= 2
		}
	}
	return lastErr
}

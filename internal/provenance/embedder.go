package provenance

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"duplex/internal/document"
	"duplex/internal/fileutil"
)

// Embedder writes provenance metadata, the original-file attachment, and the
// clickable open-original region into documents through a document.Store.
type Embedder struct {
	store  document.Store
	logger *slog.Logger
}

// NewEmbedder constructs an Embedder.
func NewEmbedder(store document.Store, logger *slog.Logger) *Embedder {
	return &Embedder{store: store, logger: logger}
}

// Embed writes meta into target. When minimal is false it also attaches the
// pre-merge original at originalPath and inserts a first-page region that
// opens it. The write is best-effort-atomic: all mutations are staged on a
// temp copy and the target is only replaced once every mutation succeeded, so
// a failure leaves the target untouched.
func (e *Embedder) Embed(ctx context.Context, target string, meta Metadata, originalPath string, minimal bool) error {
	payload, err := meta.Encode()
	if err != nil {
		return err
	}

	staged := stagingPath(target)
	if err := fileutil.CopyFile(target, staged); err != nil {
		return fmt.Errorf("stage %s: %w", target, err)
	}
	defer os.Remove(staged)

	if err := e.store.AttachBytes(ctx, staged, document.MetaAttachmentName, payload, "duplex provenance metadata"); err != nil {
		return fmt.Errorf("attach metadata: %w", err)
	}

	if !minimal {
		if err := e.store.AttachFile(ctx, staged, originalPath, "pre-merge original"); err != nil {
			return fmt.Errorf("attach original: %w", err)
		}
		label := "Open original: " + filepath.Base(originalPath)
		if err := e.store.AddOpenAttachmentRegion(ctx, staged, filepath.Base(originalPath), label); err != nil {
			return fmt.Errorf("add open-original region: %w", err)
		}
	}

	if err := os.Rename(staged, target); err != nil {
		return fmt.Errorf("replace %s: %w", target, err)
	}
	e.logger.Debug("provenance embedded",
		"target", target,
		"status", meta.Status,
		"minimal", minimal)
	return nil
}

// ReadMetadata returns the embedded provenance of path, or nil when the
// document carries none. Read errors are reported so callers can decide
// whether unreadable input matters at their stage.
func ReadMetadata(ctx context.Context, store document.Store, path string) (*Metadata, error) {
	data, ok, err := store.ReadEmbeddedFile(ctx, path, document.MetaAttachmentName)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}
	meta, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func stagingPath(target string) string {
	dir := filepath.Dir(target)
	base := filepath.Base(target)
	return filepath.Join(dir, "."+base+".embed-"+uuid.NewString()[:8])
}

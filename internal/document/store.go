package document

import "context"

// PageDim is a page size in PDF points.
type PageDim struct {
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Store is the capability interface over the concrete PDF library. Everything
// the pipeline needs from a document — geometry, embedded metadata,
// attachments, the side-by-side composition itself — goes through here so the
// library choice stays an implementation detail.
type Store interface {
	// PageCount returns the number of pages, or an error for unreadable input.
	PageCount(ctx context.Context, path string) (int, error)

	// PageDims returns per-page media box dimensions in points.
	PageDims(ctx context.Context, path string) ([]PageDim, error)

	// ReadEmbeddedFile returns the named embedded file's bytes. The boolean
	// reports presence; absence is not an error.
	ReadEmbeddedFile(ctx context.Context, path, name string) ([]byte, bool, error)

	// AttachBytes embeds data as a named file attachment, in place.
	AttachBytes(ctx context.Context, path, name string, data []byte, desc string) error

	// AttachFile embeds the file at srcPath under its base name, in place.
	AttachFile(ctx context.Context, path, srcPath, desc string) error

	// AddOpenAttachmentRegion inserts a clickable region on the first page
	// that opens the named attachment.
	AddOpenAttachmentRegion(ctx context.Context, path, attachmentName, label string) error

	// ComposeSideBySide writes a new document to outPath where page i is
	// leftPath's page i (annotations and links preserved) beside rightPath's
	// page i, separated by gap points.
	ComposeSideBySide(ctx context.Context, leftPath, rightPath, outPath string, gap float64) error
}

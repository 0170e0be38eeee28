package pdfstore

import (
	"context"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"duplex/internal/document"
	"duplex/internal/services"
)

// Store implements document.Store on pdfcpu. All pdfcpu usage in the program
// lives in this package.
type Store struct {
	conf   *model.Configuration
	logger *slog.Logger
}

// New constructs a Store. Validation is relaxed because scanned and
// machine-translated PDFs are frequently out of spec but still processable.
func New(logger *slog.Logger) *Store {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Store{conf: conf, logger: logger}
}

var _ document.Store = (*Store)(nil)

// PageCount returns the number of pages in the document at path.
func (s *Store) PageCount(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count, err := api.PageCountFile(path)
	if err != nil {
		return 0, services.Wrap(services.ErrUnreadableInput, "pdf", "pagecount", "read page count", err)
	}
	return count, nil
}

// PageDims returns the media box size of every page in points.
func (s *Store) PageDims(ctx context.Context, path string) ([]document.PageDim, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrUnreadableInput, "pdf", "pagedims", "read page dimensions", err)
	}
	out := make([]document.PageDim, len(dims))
	for i, d := range dims {
		out[i] = document.PageDim{Width: d.Width, Height: d.Height}
	}
	return out, nil
}

package pdfstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"duplex/internal/document"
)

// ComposeSideBySide builds outPath where page i shows leftPath's page i and
// rightPath's page i next to each other, separated by gap points. Both inputs
// must have the same page count; the merge engine checks that before calling.
//
// pdfcpu has no single-call side-by-side operation, so the composition runs
// in three steps: split both inputs into single pages, merge them interleaved
// (L1 R1 L2 R2 ...), then lay the merged stream out on a one-row two-column
// grid sized to the combined page dimensions.
func (s *Store) ComposeSideBySide(ctx context.Context, leftPath, rightPath, outPath string, gap float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	workDir, err := os.MkdirTemp(filepath.Dir(outPath), ".duplex-compose-*")
	if err != nil {
		return fmt.Errorf("compose: temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	leftPages, err := s.splitPages(workDir, "l", leftPath)
	if err != nil {
		return err
	}
	rightPages, err := s.splitPages(workDir, "r", rightPath)
	if err != nil {
		return err
	}
	if len(leftPages) != len(rightPages) {
		return fmt.Errorf("compose: page count diverged during split: %d vs %d", len(leftPages), len(rightPages))
	}

	interleaved := filepath.Join(workDir, "interleaved.pdf")
	if err := api.MergeCreateFile(interleave(leftPages, rightPages), interleaved, false, s.conf); err != nil {
		return fmt.Errorf("compose: merge interleaved pages: %w", err)
	}

	leftDims, err := s.PageDims(ctx, leftPath)
	if err != nil {
		return err
	}
	rightDims, err := s.PageDims(ctx, rightPath)
	if err != nil {
		return err
	}
	nup, err := api.PDFGridConfig(1, 2, gridDesc(sheetDim(leftDims, rightDims, gap), gap), s.conf)
	if err != nil {
		return fmt.Errorf("compose: grid config: %w", err)
	}
	if err := api.NUpFile([]string{interleaved}, outPath, nil, nup, s.conf); err != nil {
		return fmt.Errorf("compose: grid layout: %w", err)
	}
	return nil
}

// splitPages splits src into one file per page inside workDir and returns
// the page files in page order.
func (s *Store) splitPages(workDir, prefix, src string) ([]string, error) {
	pageDir := filepath.Join(workDir, prefix)
	if err := os.MkdirAll(pageDir, 0o755); err != nil {
		return nil, fmt.Errorf("compose: page dir: %w", err)
	}
	staged := filepath.Join(pageDir, prefix+".pdf")
	if err := copyContents(src, staged); err != nil {
		return nil, fmt.Errorf("compose: stage %s: %w", filepath.Base(src), err)
	}
	if err := api.SplitFile(staged, pageDir, 1, s.conf); err != nil {
		return nil, fmt.Errorf("compose: split %s: %w", filepath.Base(src), err)
	}
	count, err := api.PageCountFile(staged)
	if err != nil {
		return nil, fmt.Errorf("compose: count pages of %s: %w", filepath.Base(src), err)
	}
	pages := make([]string, count)
	for i := range pages {
		// SplitFile names single pages <stem>_<1-based page>.pdf.
		pages[i] = filepath.Join(pageDir, fmt.Sprintf("%s_%d.pdf", prefix, i+1))
		if _, err := os.Stat(pages[i]); err != nil {
			return nil, fmt.Errorf("compose: missing split page: %w", err)
		}
	}
	return pages, nil
}

// interleave zips two equal-length page lists into L1 R1 L2 R2 order.
func interleave(left, right []string) []string {
	merged := make([]string, 0, len(left)+len(right))
	for i := range left {
		merged = append(merged, left[i], right[i])
	}
	return merged
}

// sheetDim is the output page size for one composed sheet: combined width
// plus the gap, by the taller of the two page heights.
func sheetDim(left, right []document.PageDim, gap float64) document.PageDim {
	var dim document.PageDim
	if len(left) > 0 {
		dim = left[0]
	}
	if len(right) > 0 {
		dim.Width += right[0].Width
		if right[0].Height > dim.Height {
			dim.Height = right[0].Height
		}
	}
	dim.Width += gap
	return dim
}

// gridDesc renders the layout description for a one-row two-column grid.
func gridDesc(sheet document.PageDim, gap float64) string {
	return fmt.Sprintf("dimensions:%.2f %.2f, border:off, margin:%.2f", sheet.Width, sheet.Height, gap/2)
}

func copyContents(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

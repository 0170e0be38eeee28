package vlm

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// commandContext allows tests to intercept renderer subprocess launches.
var commandContext = exec.CommandContext

const (
	defaultRendererBinary = "pdftoppm"
	defaultRenderDPI      = 72
)

// PageRenderer rasterizes a single PDF page to a PNG image.
type PageRenderer interface {
	RenderPage(ctx context.Context, pdfPath string, page int) ([]byte, error)
}

// PopplerRenderer shells out to pdftoppm. Rendering quality only needs to be
// good enough for language identification, so the DPI stays low by default.
type PopplerRenderer struct {
	binary string
	dpi    int
}

// NewPopplerRenderer constructs a renderer. Empty binary or non-positive dpi
// fall back to pdftoppm at 72 dpi.
func NewPopplerRenderer(binary string, dpi int) *PopplerRenderer {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = defaultRendererBinary
	}
	if dpi <= 0 {
		dpi = defaultRenderDPI
	}
	return &PopplerRenderer{binary: binary, dpi: dpi}
}

// RenderPage rasterizes one page (1-based) and returns the PNG bytes.
func (r *PopplerRenderer) RenderPage(ctx context.Context, pdfPath string, page int) ([]byte, error) {
	if page < 1 {
		return nil, fmt.Errorf("render page: page %d out of range", page)
	}
	workDir, err := os.MkdirTemp("", "duplex-render-*")
	if err != nil {
		return nil, fmt.Errorf("render page: temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	prefix := filepath.Join(workDir, "page")
	args := []string{
		"-png",
		"-r", strconv.Itoa(r.dpi),
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-singlefile",
		pdfPath,
		prefix,
	}
	cmd := commandContext(ctx, r.binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("render page %d of %s: %w: %s",
			page, filepath.Base(pdfPath), err, strings.TrimSpace(string(output)))
	}
	image, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("render page %d of %s: read output: %w", page, filepath.Base(pdfPath), err)
	}
	return image, nil
}

package vlm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"duplex/internal/config"
)

const defaultSamplePages = 3

// PageClassifier is the slice of Client the prober needs.
type PageClassifier interface {
	ClassifyPage(ctx context.Context, pngImage []byte) (PageVerdict, error)
}

// Prober samples pages from a document, classifies each, and aggregates the
// verdicts into a per-language vote count.
type Prober struct {
	classifier PageClassifier
	renderer   PageRenderer
	samples    int
	logger     *slog.Logger
}

// NewProber wires a classifier and renderer under the probe settings.
func NewProber(classifier PageClassifier, renderer PageRenderer, cfg config.Probe, logger *slog.Logger) *Prober {
	samples := cfg.SamplePages
	if samples <= 0 {
		samples = defaultSamplePages
	}
	return &Prober{
		classifier: classifier,
		renderer:   renderer,
		samples:    samples,
		logger:     logger,
	}
}

// Report aggregates per-page verdicts for one document.
type Report struct {
	Votes   map[string]int
	Sampled int
}

// Dominates reports whether lang collected at least as many votes as every
// other language. A tie counts for lang.
func (r Report) Dominates(lang string) bool {
	own := r.Votes[lang]
	if own == 0 {
		return false
	}
	for other, votes := range r.Votes {
		if other != lang && votes > own {
			return false
		}
	}
	return true
}

// Probe renders and classifies a deterministic sample of pages. Pages that
// fail to render or classify are logged and dropped from the vote; it is an
// error only when no page produced a verdict.
func (p *Prober) Probe(ctx context.Context, pdfPath string, pageCount int) (Report, error) {
	if pageCount < 1 {
		return Report{}, fmt.Errorf("probe %s: document has no pages", pdfPath)
	}
	pages := SamplePages(pageCount, p.samples)
	report := Report{Votes: make(map[string]int), Sampled: len(pages)}

	classified := 0
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		image, err := p.renderer.RenderPage(ctx, pdfPath, page)
		if err != nil {
			p.logger.Warn("page render failed during language probe",
				"file", pdfPath,
				"page", page,
				"error", err)
			continue
		}
		verdict, err := p.classifier.ClassifyPage(ctx, image)
		if err != nil {
			p.logger.Warn("page classification failed during language probe",
				"file", pdfPath,
				"page", page,
				"error", err)
			continue
		}
		report.Votes[verdict.Language]++
		classified++
	}
	if classified == 0 {
		return Report{}, errors.New("language probe: no sampled page produced a verdict")
	}
	return report, nil
}

// SamplePages picks up to samples 1-based page numbers spread evenly across
// the document, always including the first page. Deterministic for a given
// (pageCount, samples) pair.
func SamplePages(pageCount, samples int) []int {
	if pageCount < 1 || samples < 1 {
		return nil
	}
	if samples >= pageCount {
		pages := make([]int, pageCount)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}
	if samples == 1 {
		return []int{1}
	}
	seen := make(map[int]bool, samples)
	pages := make([]int, 0, samples)
	for i := 0; i < samples; i++ {
		page := 1 + i*(pageCount-1)/(samples-1)
		if !seen[page] {
			seen[page] = true
			pages = append(pages, page)
		}
	}
	sort.Ints(pages)
	return pages
}

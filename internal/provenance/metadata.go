package provenance

import (
	"encoding/json"
	"fmt"
	"time"

	"duplex/internal/document"
)

// Translation status values. Status is monotonic for a logical document: once
// translated it never reverts to untranslated.
const (
	StatusUntranslated = "untranslated"
	StatusTranslated   = "translated"
)

// Metadata is the provenance object embedded into processed documents.
// Backups carry the minimal form (status and run time only); final outputs
// carry every field.
type Metadata struct {
	Status          string             `json:"status"`
	RunTimeUTC      string             `json:"run_time_utc"`
	Model           string             `json:"model,omitempty"`
	SourcePageSizes []document.PageDim `json:"source_page_sizes_pt,omitempty"`
	ResultPageSizes []document.PageDim `json:"result_page_sizes_pt,omitempty"`
	GapPt           float64            `json:"gap_pt,omitempty"`
}

// Minimal returns the untranslated stub written to backups before the engine
// runs, stamped with now.
func Minimal(now time.Time) Metadata {
	return Metadata{
		Status:     StatusUntranslated,
		RunTimeUTC: formatRunTime(now),
	}
}

// Translated returns the full provenance object for a finished merge.
func Translated(now time.Time, model string, source, result []document.PageDim, gapPt float64) Metadata {
	return Metadata{
		Status:          StatusTranslated,
		RunTimeUTC:      formatRunTime(now),
		Model:           model,
		SourcePageSizes: source,
		ResultPageSizes: result,
		GapPt:           gapPt,
	}
}

// Parse decodes embedded metadata bytes.
func Parse(data []byte) (Metadata, error) {
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parse provenance metadata: %w", err)
	}
	return meta, nil
}

// Encode renders the metadata as the JSON attachment payload.
func (m Metadata) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode provenance metadata: %w", err)
	}
	return data, nil
}

// IsTranslated reports whether the document was already processed.
func (m Metadata) IsTranslated() bool {
	return m.Status == StatusTranslated
}

func formatRunTime(now time.Time) string {
	return now.UTC().Format(time.RFC3339)
}

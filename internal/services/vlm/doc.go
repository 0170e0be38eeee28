// Package vlm identifies the dominant written language of a PDF by rendering
// a small sample of pages and asking a vision model to classify each one.
// The verdict feeds the skip-rule engine; it never blocks a run on its own,
// since a failed probe simply means the document proceeds to translation.
package vlm

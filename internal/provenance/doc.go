// Package provenance defines the embedded metadata schema processed documents
// carry and the embedder that writes it. The skip engine relies on this
// metadata for idempotent re-scans, so embedding happens on degraded outputs
// too and never partially: a failed embed leaves the document untouched.
package provenance

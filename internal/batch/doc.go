// Package batch drives a full translation pass over the document library:
// scanning, skip decisions, engine invocation, side-by-side merging,
// provenance embedding, and the run log. Files are processed strictly one at
// a time and a failure in one never aborts the rest.
package batch

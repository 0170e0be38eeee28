// Package merge turns an original document and its translated counterpart
// into one side-by-side document, replacing the canonical file atomically or
// degrading to a sidecar when the target is held open.
package merge

// Package document owns the scan-time Document snapshot, the filesystem
// artifact naming conventions, the filename rules the skip engine evaluates,
// and the Store capability interface the PDF-touching components depend on.
package document

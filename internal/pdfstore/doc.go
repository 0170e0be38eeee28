// Package pdfstore implements the document.Store capability on pdfcpu:
// page geometry, embedded file attachments, the first-page open-attachment
// region, and the side-by-side page composition. No other package imports
// pdfcpu directly.
package pdfstore

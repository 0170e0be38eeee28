// Package pdf2zh wraps the external translation engine: the fixed CLI
// argument contract, the retry-once-with-OCR-fallback policy, and the
// filename-encoding workaround for names outside the engine's safe set.
package pdf2zh

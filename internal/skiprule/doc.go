// Package skiprule decides whether a scanned document enters the translation
// pipeline or is skipped, by running an ordered short-circuit chain of rules
// from cheap filename checks up to the vision language probe.
package skiprule

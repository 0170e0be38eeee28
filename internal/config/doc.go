// Package config loads, normalizes, and validates the TOML configuration that
// drives the batch pipeline.
//
// Defaults live in defaults.go so a missing config file still produces a
// runnable configuration; normalize.go applies path expansion, credential
// fallbacks, and trimming before validate.go enforces the invariants the rest
// of the system assumes (a usable language pair, exactly one service tier, and
// positive thresholds).
package config

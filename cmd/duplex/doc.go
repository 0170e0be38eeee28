// Package main hosts the duplex CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the batch translation run, failure
// ledger maintenance, run-log inspection, configuration scaffolding, and
// per-document provenance inspection. It centralizes configuration
// resolution and structured logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main

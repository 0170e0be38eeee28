// Package ledger persists the cross-run failure counter and the per-run
// outcome log in a single SQLite database.
//
// The failure ledger is the circuit breaker's memory: three recorded
// invocation failures for a file key open its circuit, and only an operator
// reset closes it again. Both tables are append-only so an interrupted run
// can always resume from whatever was flushed.
package ledger

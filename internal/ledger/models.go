package ledger

import "time"

// FailureThreshold is the attempt count at which a file's circuit opens. Once
// open, the file is permanently skipped until an operator resets its record.
const FailureThreshold = 3

// FailureRecord aggregates the failure history for one file key.
type FailureRecord struct {
	FileKey       string
	AttemptCount  int
	LastReason    string
	LastTimestamp time.Time
}

// CircuitOpen reports whether the record has crossed the failure threshold.
func (r FailureRecord) CircuitOpen() bool {
	return r.AttemptCount >= FailureThreshold
}

// Outcome classifies what happened to one file during a run.
type Outcome string

const (
	OutcomeTranslated Outcome = "translated"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeFailed     Outcome = "failed"
	OutcomeDegraded   Outcome = "degraded"
)

// RunLogEntry is one append-only run-log row: a single file's outcome within
// a single batch run.
type RunLogEntry struct {
	ID        int64
	RunID     string
	File      string
	Outcome   Outcome
	Reason    string
	Pages     int
	SizeBytes int64
	Duration  time.Duration
	CreatedAt time.Time
}

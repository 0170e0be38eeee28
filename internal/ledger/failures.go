package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Failure returns the aggregated failure record for fileKey. A file with no
// recorded failures yields a zero-count record, not an error.
func (s *Store) Failure(ctx context.Context, fileKey string) (FailureRecord, error) {
	record := FailureRecord{FileKey: fileKey}

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(MAX(created_at), '') FROM failure_events WHERE file_key = ?`,
		fileKey,
	)
	var lastTimestamp string
	if err := row.Scan(&record.AttemptCount, &lastTimestamp); err != nil {
		return record, fmt.Errorf("aggregate failures for %s: %w", fileKey, err)
	}
	if lastTimestamp != "" {
		if ts, err := time.Parse(time.RFC3339Nano, lastTimestamp); err == nil {
			record.LastTimestamp = ts
		}
	}

	if record.AttemptCount > 0 {
		reasonRow := s.db.QueryRowContext(ctx,
			`SELECT reason FROM failure_events WHERE file_key = ? ORDER BY id DESC LIMIT 1`,
			fileKey,
		)
		if err := reasonRow.Scan(&record.LastReason); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return record, fmt.Errorf("read last failure reason for %s: %w", fileKey, err)
		}
	}
	return record, nil
}

// RecordFailure appends one failure event for fileKey. Attempt counts only
// ever grow within a ledger lifetime; this is the single write path.
func (s *Store) RecordFailure(ctx context.Context, fileKey, reason string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO failure_events (file_key, reason, created_at) VALUES (?, ?, ?)`,
		fileKey, reason, timestamp,
	); err != nil {
		return fmt.Errorf("record failure for %s: %w", fileKey, err)
	}
	return nil
}

// IsCircuitOpen reports whether fileKey has accumulated enough failures to be
// permanently skipped.
func (s *Store) IsCircuitOpen(ctx context.Context, fileKey string) (bool, error) {
	record, err := s.Failure(ctx, fileKey)
	if err != nil {
		return false, err
	}
	return record.CircuitOpen(), nil
}

// Failures returns attempt counts for every file key with at least one event.
func (s *Store) Failures(ctx context.Context) ([]FailureRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_key, COUNT(1), MAX(created_at) FROM failure_events GROUP BY file_key ORDER BY file_key`,
	)
	if err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	defer rows.Close()

	var records []FailureRecord
	for rows.Next() {
		var record FailureRecord
		var lastTimestamp string
		if err := rows.Scan(&record.FileKey, &record.AttemptCount, &lastTimestamp); err != nil {
			return nil, fmt.Errorf("scan failure row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, lastTimestamp); err == nil {
			record.LastTimestamp = ts
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// ResetFailures removes the failure history for fileKey. This is the external
// operator action that re-closes an open circuit; the pipeline itself never
// calls it.
func (s *Store) ResetFailures(ctx context.Context, fileKey string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM failure_events WHERE file_key = ?`, fileKey)
	if err != nil {
		return 0, fmt.Errorf("reset failures for %s: %w", fileKey, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

package ledger

import (
	"context"
	"fmt"
	"time"
)

// AppendRunLog appends one outcome row. Rows are never updated or deleted.
func (s *Store) AppendRunLog(ctx context.Context, entry RunLogEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO run_log (run_id, file, outcome, reason, pages, size_bytes, duration_ms, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.File,
		string(entry.Outcome),
		entry.Reason,
		entry.Pages,
		entry.SizeBytes,
		entry.Duration.Milliseconds(),
		createdAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("append run log for %s: %w", entry.File, err)
	}
	return nil
}

// RunLogQuery narrows RunLog results.
type RunLogQuery struct {
	RunID string
	Limit int
}

// RunLog returns run-log rows, newest first.
func (s *Store) RunLog(ctx context.Context, query RunLogQuery) ([]RunLogEntry, error) {
	sqlQuery := `SELECT id, run_id, file, outcome, reason, pages, size_bytes, duration_ms, created_at FROM run_log`
	args := make([]any, 0, 2)
	if query.RunID != "" {
		sqlQuery += ` WHERE run_id = ?`
		args = append(args, query.RunID)
	}
	sqlQuery += ` ORDER BY id DESC`
	if query.Limit > 0 {
		sqlQuery += ` LIMIT ?`
		args = append(args, query.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query run log: %w", err)
	}
	defer rows.Close()

	var entries []RunLogEntry
	for rows.Next() {
		var entry RunLogEntry
		var outcome string
		var durationMS int64
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.RunID, &entry.File, &outcome, &entry.Reason,
			&entry.Pages, &entry.SizeBytes, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run log row: %w", err)
		}
		entry.Outcome = Outcome(outcome)
		entry.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			entry.CreatedAt = ts
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

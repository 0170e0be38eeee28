package ledger

import (
	"context"
	"fmt"
)

// Schema revisions, applied in order. The committed revision count lives in
// PRAGMA user_version, so appending a revision here upgrades existing
// ledgers on the next open. Never edit a shipped revision.
var schemaRevisions = []string{
	`
CREATE TABLE failure_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_key TEXT NOT NULL,
    reason TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

CREATE INDEX idx_failure_events_file_key ON failure_events (file_key);

CREATE TABLE run_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    file TEXT NOT NULL,
    outcome TEXT NOT NULL,
    reason TEXT NOT NULL DEFAULT '',
    pages INTEGER,
    size_bytes INTEGER,
    duration_ms INTEGER,
    created_at TEXT NOT NULL
);

CREATE INDEX idx_run_log_run_id ON run_log (run_id);
CREATE INDEX idx_run_log_file ON run_log (file);
`,
}

func (s *Store) applyMigrations(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var version int
	if err := tx.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= len(schemaRevisions) {
		return tx.Commit()
	}

	for i := version; i < len(schemaRevisions); i++ {
		if _, err := tx.ExecContext(ctx, schemaRevisions[i]); err != nil {
			return fmt.Errorf("apply schema revision %d: %w", i+1, err)
		}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", len(schemaRevisions))); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies every schema statement. Statements are idempotent so the
// full list runs on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS history_cache (
		position           INTEGER PRIMARY KEY,
		filename           TEXT NOT NULL,
		marksheet_type     TEXT NOT NULL DEFAULT '',
		records_extracted  INTEGER NOT NULL DEFAULT 0,
		file_size          INTEGER NOT NULL DEFAULT 0,
		processed_at       TEXT,
		processed_filename TEXT NOT NULL DEFAULT '',
		fetched_at         TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS cookies (
		host       TEXT NOT NULL,
		name       TEXT NOT NULL,
		value      TEXT NOT NULL,
		path       TEXT NOT NULL DEFAULT '/',
		expires_at TEXT,
		secure     INTEGER NOT NULL DEFAULT 0,
		http_only  INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (host, name)
	)`,

	`CREATE TABLE IF NOT EXISTS submission_attempts (
		id              TEXT PRIMARY KEY,
		marksheet_type  TEXT NOT NULL
		                CHECK(marksheet_type IN ('10th','12th','semester')),
		filename        TEXT NOT NULL,
		file_size       INTEGER NOT NULL DEFAULT 0,
		outcome         TEXT NOT NULL
		                CHECK(outcome IN ('succeeded','failed')),
		records_count   INTEGER NOT NULL DEFAULT 0,
		download_handle TEXT NOT NULL DEFAULT '',
		message         TEXT NOT NULL DEFAULT '',
		started_at      TEXT NOT NULL,
		finished_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_attempts_started ON submission_attempts(started_at)`,

	`ALTER TABLE submission_attempts ADD COLUMN pages INTEGER NOT NULL DEFAULT 0`,
}

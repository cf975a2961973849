package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesTablesAndIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"history_cache", "cookies", "submission_attempts"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}

	var idx string
	require.NoError(t, db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name='idx_attempts_started'`).Scan(&idx))
}

func TestMigrate_AttemptConstraints(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO submission_attempts
		(id, marksheet_type, filename, outcome, started_at, finished_at)
		VALUES ('a', '11th', 'f.pdf', 'succeeded', 'x', 'x')`)
	assert.Error(t, err, "unknown marksheet type must be rejected")

	_, err = db.Exec(`INSERT INTO submission_attempts
		(id, marksheet_type, filename, outcome, started_at, finished_at)
		VALUES ('b', '10th', 'f.pdf', 'pending', 'x', 'x')`)
	assert.Error(t, err, "unknown outcome must be rejected")
}

func TestOpenDB_CreatesDirectory(t *testing.T) {
	path := t.TempDir() + "/nested/dir/marksheet.db"
	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

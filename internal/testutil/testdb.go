package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/JeevithaAnandhan/marksheetpro/internal/db"
)

// NewTestDB returns a migrated in-memory store that is closed with the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, ":memory:")
}

// NewFileTestDB returns a migrated on-disk store under t.TempDir and its path,
// for tests that need a second handle on the same data via OpenTestDBAt.
func NewFileTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marksheet.db")
	return openTestDB(t, path), path
}

// OpenTestDBAt opens another handle on an existing store, as a later CLI run
// would.
func OpenTestDBAt(t *testing.T, path string) *sql.DB {
	t.Helper()
	return openTestDB(t, path)
}

// NewTestUoW creates a UnitOfWork backed by database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(path)
	if err != nil {
		t.Fatalf("opening test database %s: %v", path, err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

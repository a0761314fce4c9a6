package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"taskTracker/internal/db"
)

// OpenInMemoryDB opens an in-memory SQLite database and initializes it (schema + seed).
// Caller is responsible for closing the DB, typically via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// We use a shared cache memory database so that multiple connections share the same DB if needed.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// OpenTempFileDB opens a fresh SQLite file under t.TempDir().
func OpenTempFileDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open test db file: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d, path
}

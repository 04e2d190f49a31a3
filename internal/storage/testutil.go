package storage

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a fully configured in-memory SQLite database for testing.
//
// The database includes:
//   - Foreign key constraints enabled (required for cascade deletes)
//   - Full schema created
//   - A single connection, so every query sees the same in-memory database
//   - Automatic cleanup registered with t.Cleanup()
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	require.NoError(t, CreateSchema(db))

	return db
}

// NewTestStore wraps NewTestDB in a Store.
func NewTestStore(t testing.TB) *Store {
	t.Helper()

	store, err := NewStore(NewTestDB(t))
	require.NoError(t, err)
	return store
}

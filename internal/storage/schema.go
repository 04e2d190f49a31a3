package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the version written by CreateSchema.
const SchemaVersion = "1"

// CreateSchema creates all tables and indexes for the run history.
// Uses a transaction so that schema creation succeeds or fails as a whole.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"runs", createRunsTable},
		{"file_reports", createFileReportsTable},
		{"functions", createFunctionsTable},
		{"schema_metadata", createSchemaMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	_, err = tx.Exec(
		"INSERT INTO schema_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)",
		SchemaVersion, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion returns the stored schema version, or "0" for a new database.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check schema_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil // New database
	}

	var version string
	err = db.QueryRow("SELECT value FROM schema_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in schema_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

const createRunsTable = `
CREATE TABLE runs (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    root TEXT NOT NULL,
    file_count INTEGER NOT NULL,
    error_count INTEGER NOT NULL
)
`

const createFileReportsTable = `
CREATE TABLE file_reports (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    path TEXT NOT NULL,
    language TEXT NOT NULL,
    status TEXT NOT NULL,
    error TEXT,
    lines_of_code INTEGER NOT NULL DEFAULT 0,
    complexity INTEGER NOT NULL DEFAULT 0,
    function_count INTEGER NOT NULL DEFAULT 0,
    class_count INTEGER NOT NULL DEFAULT 0,
    import_count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, path)
)
`

const createFunctionsTable = `
CREATE TABLE functions (
    run_id TEXT NOT NULL,
    path TEXT NOT NULL,
    name TEXT NOT NULL,
    line_start INTEGER NOT NULL,
    line_end INTEGER NOT NULL,
    args_count INTEGER NOT NULL,
    complexity INTEGER NOT NULL,
    FOREIGN KEY (run_id, path) REFERENCES file_reports(run_id, path) ON DELETE CASCADE
)
`

const createSchemaMetadataTable = `
CREATE TABLE schema_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

// getAllIndexes returns all index creation statements.
func getAllIndexes() []string {
	return []string{
		"CREATE INDEX idx_runs_started_at ON runs(started_at)",
		"CREATE INDEX idx_file_reports_status ON file_reports(run_id, status)",
		"CREATE INDEX idx_functions_complexity ON functions(run_id, complexity DESC)",
	}
}

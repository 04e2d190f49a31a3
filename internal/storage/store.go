// Package storage records analysis runs in a SQLite database so results can
// be compared over time.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/codefeat/internal/scan"
)

// Status values stored for each file.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// timeLayout is fixed width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrRunNotFound indicates no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Run summarizes one recorded analysis run.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Root       string    `json:"root" yaml:"root"`
	FileCount  int       `json:"file_count" yaml:"file_count"`
	ErrorCount int       `json:"error_count" yaml:"error_count"`
}

// FileReport is the stored summary of one file in a run.
type FileReport struct {
	RunID         string `json:"run_id" yaml:"run_id"`
	Path          string `json:"path" yaml:"path"`
	Language      string `json:"language" yaml:"language"`
	Status        string `json:"status" yaml:"status"`
	Error         string `json:"error,omitempty" yaml:"error,omitempty"`
	LinesOfCode   int    `json:"lines_of_code" yaml:"lines_of_code"`
	Complexity    int    `json:"complexity" yaml:"complexity"`
	FunctionCount int    `json:"function_count" yaml:"function_count"`
	ClassCount    int    `json:"class_count" yaml:"class_count"`
	ImportCount   int    `json:"import_count" yaml:"import_count"`
}

// FunctionRecord is one function stored for a run.
type FunctionRecord struct {
	RunID      string `json:"run_id" yaml:"run_id"`
	Path       string `json:"path" yaml:"path"`
	Name       string `json:"name" yaml:"name"`
	LineStart  int    `json:"line_start" yaml:"line_start"`
	LineEnd    int    `json:"line_end" yaml:"line_end"`
	ArgsCount  int    `json:"args_count" yaml:"args_count"`
	Complexity int    `json:"complexity" yaml:"complexity"`
}

// Store reads and writes the run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at dbPath, creating parent
// directories and the schema as needed.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewStore wraps an open database, enabling foreign keys and creating the
// schema if it does not exist yet.
func NewStore(db *sql.DB) (*Store, error) {
	// Enable foreign keys (required for cascade deletes)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}

	switch version {
	case "0":
		if err := CreateSchema(db); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	case SchemaVersion:
	default:
		return nil, fmt.Errorf("unsupported schema version %s (want %s)", version, SchemaVersion)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores a run and all of its file results atomically and returns the new run ID.
func (s *Store) RecordRun(ctx context.Context, root string, started time.Time, results []scan.FileResult) (string, error) {
	runID := uuid.NewString()
	finished := time.Now()

	errorCount := 0
	for _, r := range results {
		if r.Err != nil {
			errorCount++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	_, err = sq.Insert("runs").
		Columns("id", "started_at", "finished_at", "root", "file_count", "error_count").
		Values(runID, formatTime(started), formatTime(finished), root, len(results), errorCount).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, r := range results {
		if err := insertFileResult(ctx, tx, runID, r); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return runID, nil
}

func insertFileResult(ctx context.Context, tx *sql.Tx, runID string, r scan.FileResult) error {
	report := FileReport{RunID: runID, Path: r.Path, Language: r.Language, Status: StatusOK}
	if r.Err != nil {
		report.Status = StatusError
		report.Error = r.Err.Error()
	} else if f := r.Features; f != nil {
		report.LinesOfCode = f.LinesOfCode
		report.Complexity = f.Complexity
		report.FunctionCount = len(f.Functions)
		report.ClassCount = len(f.Classes)
		report.ImportCount = len(f.Imports)
	}

	// A path listed twice in one run keeps its last result.
	_, err := sq.Insert("file_reports").
		Options("OR REPLACE").
		Columns("run_id", "path", "language", "status", "error",
			"lines_of_code", "complexity", "function_count", "class_count", "import_count").
		Values(report.RunID, report.Path, report.Language, report.Status, nullableString(report.Error),
			report.LinesOfCode, report.Complexity, report.FunctionCount, report.ClassCount, report.ImportCount).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert report for %s: %w", r.Path, err)
	}

	if r.Features == nil {
		return nil
	}
	for _, fn := range r.Features.Functions {
		_, err := sq.Insert("functions").
			Columns("run_id", "path", "name", "line_start", "line_end", "args_count", "complexity").
			Values(runID, r.Path, fn.Name, fn.LineStart, fn.LineEnd, fn.ArgsCount, fn.Complexity).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert function %s in %s: %w", fn.Name, r.Path, err)
		}
	}
	return nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := sq.Select("id", "started_at", "finished_at", "root", "file_count", "error_count").
		From("runs").
		OrderBy("started_at DESC", "rowid DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun returns a single run, or ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := sq.Select("id", "started_at", "finished_at", "root", "file_count", "error_count").
		From("runs").
		Where(sq.Eq{"id": runID}).
		RunWith(s.db).
		QueryRowContext(ctx)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FileReports returns the per-file summaries of a run ordered by path.
func (s *Store) FileReports(ctx context.Context, runID string) ([]FileReport, error) {
	rows, err := sq.Select("run_id", "path", "language", "status", "error",
		"lines_of_code", "complexity", "function_count", "class_count", "import_count").
		From("file_reports").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("path").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query file reports: %w", err)
	}
	defer rows.Close()

	reports := []FileReport{}
	for rows.Next() {
		var r FileReport
		var errText sql.NullString
		if err := rows.Scan(&r.RunID, &r.Path, &r.Language, &r.Status, &errText,
			&r.LinesOfCode, &r.Complexity, &r.FunctionCount, &r.ClassCount, &r.ImportCount); err != nil {
			return nil, fmt.Errorf("failed to scan file report: %w", err)
		}
		r.Error = errText.String
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// TopFunctions returns the most complex functions of a run: complexity
// descending, then path and start line.
func (s *Store) TopFunctions(ctx context.Context, runID string, limit int) ([]FunctionRecord, error) {
	query := sq.Select("run_id", "path", "name", "line_start", "line_end", "args_count", "complexity").
		From("functions").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("complexity DESC", "path", "line_start")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query functions: %w", err)
	}
	defer rows.Close()

	functions := []FunctionRecord{}
	for rows.Next() {
		var f FunctionRecord
		if err := rows.Scan(&f.RunID, &f.Path, &f.Name, &f.LineStart, &f.LineEnd, &f.ArgsCount, &f.Complexity); err != nil {
			return nil, fmt.Errorf("failed to scan function: %w", err)
		}
		functions = append(functions, f)
	}
	return functions, rows.Err()
}

// DeleteRun removes a run and, through cascading foreign keys, its reports.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := sq.Delete("runs").
		Where(sq.Eq{"id": runID}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

func scanRun(row sq.RowScanner) (*Run, error) {
	var run Run
	var started, finished string
	if err := row.Scan(&run.ID, &started, &finished, &run.Root, &run.FileCount, &run.ErrorCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	var err error
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("invalid started_at %q: %w", started, err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return nil, fmt.Errorf("invalid finished_at %q: %w", finished, err)
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// nullableString stores empty strings as NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

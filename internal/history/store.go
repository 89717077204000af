// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records tool runs in a SQLite database and exports them
// as YAML, JSON or an XLSX workbook.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperlens/pkg/types"
)

const (
	defaultLimit = 20
	maxLimit     = 1000
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Store manages the run history database.
type Store struct {
	db *sql.DB
}

// Query filters List. Text matches the output or the document reference
// as a case-insensitive substring. Zero values match everything.
type Query struct {
	Text  string
	Mode  types.Mode
	Limit int
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			document TEXT,
			source TEXT NOT NULL,
			no_content INTEGER NOT NULL DEFAULT 0,
			output TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_mode ON runs(mode)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run. A missing ID is generated and a zero CreatedAt is set
// to the current time.
func (s *Store) Record(ctx context.Context, run types.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, mode, document, source, no_content, output, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Mode), run.DocumentRef, string(run.Source), run.NoContent, run.Output,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id string) (types.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, mode, document, source, no_content, output, created_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Run{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return run, err
}

// Recent returns the newest runs first.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.Run, error) {
	return s.List(ctx, Query{Limit: limit})
}

// Search returns runs whose output or document contains text, newest first.
func (s *Store) Search(ctx context.Context, text string, limit int) ([]types.Run, error) {
	return s.List(ctx, Query{Text: text, Limit: limit})
}

// List returns the runs matching q, newest first. The limit defaults to 20
// and is capped at 1000.
func (s *Store) List(ctx context.Context, q Query) ([]types.Run, error) {
	var (
		where []string
		args  []any
	)
	if text := strings.TrimSpace(q.Text); text != "" {
		pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
		where = append(where, `(lower(output) LIKE ? ESCAPE '\' OR lower(document) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if q.Mode != "" {
		where = append(where, "mode = ?")
		args = append(args, string(q.Mode))
	}

	query := `SELECT id, mode, document, source, no_content, output, created_at FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, clampLimit(q.Limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (types.Run, error) {
	var (
		run       types.Run
		mode      string
		document  sql.NullString
		source    string
		createdAt string
	)
	if err := sc.Scan(&run.ID, &mode, &document, &source, &run.NoContent, &run.Output, &createdAt); err != nil {
		return types.Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return types.Run{}, fmt.Errorf("parsing created_at of run %s: %w", run.ID, err)
	}
	run.Mode = types.Mode(mode)
	run.DocumentRef = document.String
	run.Source = types.ResultSource(source)
	run.CreatedAt = t
	return run, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultLimit
	case limit > maxLimit:
		return maxLimit
	}
	return limit
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

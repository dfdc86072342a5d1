// Package history records task runs in a per-project SQLite database.
//
// Recording is best effort: a broken history store must never fail a run.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DBFileName is the history database file inside the project state directory
const DBFileName = "history.db"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	task        TEXT NOT NULL,
	args        TEXT NOT NULL DEFAULT '',
	exit_code   INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	started_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_task ON runs(task);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Run is one recorded task invocation
type Run struct {
	StartedAt time.Time
	Task      string
	Args      string
	ID        int64
	Duration  time.Duration
	ExitCode  int
}

// Store is the run-history database
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if necessary) the history store in stateDir
func Open(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(stateDir, DBFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to configure history database: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the store
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the store is reachable, for doctor
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Record inserts a completed run
func (s *Store) Record(task string, args map[string]string, exitCode int, duration time.Duration, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO runs (task, args, exit_code, duration_ms, started_at) VALUES (?, ?, ?, ?, ?)`,
		task, formatArgs(args), exitCode, duration.Milliseconds(), startedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first, optionally filtered by task
func (s *Store) List(task string, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, task, args, exit_code, duration_ms, started_at FROM runs`
	queryArgs := []any{}
	if task != "" {
		query += ` WHERE task = ?`
		queryArgs = append(queryArgs, task)
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ?`
	queryArgs = append(queryArgs, limit)

	rows, err := s.db.Query(query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []Run
	for rows.Next() {
		var r Run
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.Task, &r.Args, &r.ExitCode, &durationMs, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	return runs, nil
}

func formatArgs(args map[string]string) string {
	if len(args) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(args))
	for k, v := range args {
		if v == "" {
			continue
		}
		pairs = append(pairs, k+"="+v)
	}
	if len(pairs) == 0 {
		return ""
	}
	sort.Strings(pairs)
	return strings.Join(pairs, " ")
}

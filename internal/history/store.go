// Package history persists translation run outcomes to sqlite so batch
// progress over a large suite can be tracked across invocations.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Run is one batch invocation.
type Run struct {
	ID        string
	Started   time.Time
	Finished  time.Time
	Root      string
	Total     int
	Succeeded int
	Failed    int
}

// Outcome is one translated file within a run.
type Outcome struct {
	RunID        string
	CPPFile      string
	Success      bool
	SpecFile     string
	SkeletonFile string
	GuideFile    string
	Error        string
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts when watch mode records
	// runs while a batch is still writing.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id           TEXT PRIMARY KEY,
  started_utc  TEXT NOT NULL,
  finished_utc TEXT NOT NULL,
  root         TEXT NOT NULL,
  total        INTEGER NOT NULL,
  succeeded    INTEGER NOT NULL,
  failed       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS outcomes (
  run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  cpp_file      TEXT NOT NULL,
  success       INTEGER NOT NULL,
  spec_file     TEXT NOT NULL DEFAULT '',
  skeleton_file TEXT NOT NULL DEFAULT '',
  guide_file    TEXT NOT NULL DEFAULT '',
  error         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
`)
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// RecordRun stores a run and its per-file outcomes in one transaction.
func (s *Store) RecordRun(run Run, outcomes []Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		return fmt.Errorf("run id must not be empty")
	}
	if run.Started.IsZero() {
		run.Started = time.Now().UTC()
	}
	if run.Finished.IsZero() {
		run.Finished = time.Now().UTC()
	}

	return s.withRetry("record run", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.Exec(
			`INSERT INTO runs (id, started_utc, finished_utc, root, total, succeeded, failed)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.Started.UTC().Format(time.RFC3339Nano),
			run.Finished.UTC().Format(time.RFC3339Nano),
			run.Root,
			run.Total,
			run.Succeeded,
			run.Failed,
		); err != nil {
			return err
		}
		for _, o := range outcomes {
			success := 0
			if o.Success {
				success = 1
			}
			if _, err := tx.Exec(
				`INSERT INTO outcomes (run_id, cpp_file, success, spec_file, skeleton_file, guide_file, error)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				run.ID, o.CPPFile, success, o.SpecFile, o.SkeletonFile, o.GuideFile, o.Error,
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(
			`SELECT id, started_utc, finished_utc, root, total, succeeded, failed
			 FROM runs ORDER BY started_utc DESC LIMIT ?`, limit)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                   Run
			startedRaw, finishRaw string
		)
		if err := rows.Scan(&run.ID, &startedRaw, &finishRaw, &run.Root,
			&run.Total, &run.Succeeded, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if run.Started, err = time.Parse(time.RFC3339Nano, startedRaw); err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", startedRaw, err)
		}
		if run.Finished, err = time.Parse(time.RFC3339Nano, finishRaw); err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", finishRaw, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// Outcomes returns the per-file outcomes of one run.
func (s *Store) Outcomes(runID string) ([]Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load outcomes", func() error {
		var qErr error
		rows, qErr = s.db.Query(
			`SELECT run_id, cpp_file, success, spec_file, skeleton_file, guide_file, error
			 FROM outcomes WHERE run_id = ? ORDER BY cpp_file ASC`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var (
			o       Outcome
			success int
		)
		if err := rows.Scan(&o.RunID, &o.CPPFile, &success, &o.SpecFile,
			&o.SkeletonFile, &o.GuideFile, &o.Error); err != nil {
			return nil, fmt.Errorf("scan outcome row: %w", err)
		}
		o.Success = success != 0
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome rows: %w", err)
	}
	return outcomes, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

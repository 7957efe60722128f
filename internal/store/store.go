// Package store persists a log of pipeline runs to a SQLite database: one
// row per run, capturing its shape, config, worker count, maximum diameter,
// and total elapsed time (per-stage timings are not stored).
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// Run is one completed pipeline invocation's shape, config, and timing.
type Run struct {
	ID           string
	CreatedAt    time.Time
	Width        int
	Height       int
	Depth        int
	Threshold    uint8
	Inverse      bool
	MaskTrim     bool
	Workers      int
	MaxDiameter  float32
	TotalElapsed time.Duration
}

// Store wraps a SQLite database holding the run log.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) and opens the run-log database at path, applying
// WAL and synchronous-NORMAL pragmas tuned for frequent small writes.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			depth INTEGER NOT NULL,
			threshold INTEGER NOT NULL,
			inverse INTEGER NOT NULL,
			mask_trim INTEGER NOT NULL,
			workers INTEGER NOT NULL,
			max_diameter REAL NOT NULL,
			total_elapsed_ms INTEGER NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordRun inserts a new run, assigning it a fresh UUID, and returns the
// populated Run with its ID and timestamp filled in.
func (s *Store) RecordRun(r Run) (Run, error) {
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO runs (id, created_at, width, height, depth, threshold, inverse, mask_trim, workers, max_diameter, total_elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		// Fixed-width fractional seconds keep the text column sortable by
		// time, which RecentRuns' ORDER BY created_at relies on.
		r.ID, r.CreatedAt.Format("2006-01-02T15:04:05.000000000Z07:00"), r.Width, r.Height, r.Depth,
		r.Threshold, boolToInt(r.Inverse), boolToInt(r.MaskTrim), r.Workers,
		r.MaxDiameter, r.TotalElapsed.Milliseconds(),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return r, nil
}

// RunByID fetches a single recorded run.
func (s *Store) RunByID(id string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, width, height, depth, threshold, inverse, mask_trim, workers, max_diameter, total_elapsed_ms
		 FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// RecentRuns returns up to limit runs, most recent first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, width, height, depth, threshold, inverse, mask_trim, workers, max_diameter, total_elapsed_ms
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var createdAt string
	var inverse, maskTrim int
	var elapsedMS int64

	err := row.Scan(&r.ID, &createdAt, &r.Width, &r.Height, &r.Depth,
		&r.Threshold, &inverse, &maskTrim, &r.Workers, &r.MaxDiameter, &elapsedMS)
	if err != nil {
		if err == sql.ErrNoRows {
			return Run{}, fmt.Errorf("run not found")
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}
	r.Inverse = inverse != 0
	r.MaskTrim = maskTrim != 0
	r.TotalElapsed = time.Duration(elapsedMS) * time.Millisecond
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

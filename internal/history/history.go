package history

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// History records every generation attempt to a SQLite database.
type History struct {
	db *sql.DB
}

// Run is one recorded attempt.
type Run struct {
	TS           string
	Sample       string
	Seed         uint64
	Result       string // "success" or "contradiction"
	Observations int
	DurationMS   int64
	Output       string // result image path, empty on contradiction
}

// New opens (or creates) the SQLite database at dbPath and ensures the
// run_history table exists.
func New(dbPath string) (*History, error) {
	dsn := "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS run_history (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		ts           TEXT    NOT NULL,
		sample       TEXT    NOT NULL,
		seed         TEXT    NOT NULL,
		result       TEXT    NOT NULL,
		observations INTEGER NOT NULL,
		duration_ms  INTEGER NOT NULL,
		output       TEXT    NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create table: %w", err)
	}
	return &History{db: db}, nil
}

// Record inserts one row. It is safe to call concurrently. Seeds are stored
// as text because SQLite integers are signed 64-bit.
func (h *History) Record(r Run) error {
	ts := r.TS
	if ts == "" {
		ts = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := h.db.Exec(
		`INSERT INTO run_history (ts, sample, seed, result, observations, duration_ms, output)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ts, r.Sample, strconv.FormatUint(r.Seed, 10), r.Result, r.Observations, r.DurationMS, r.Output,
	)
	return err
}

// Recent returns up to limit attempts, newest first.
func (h *History) Recent(limit int) ([]Run, error) {
	rows, err := h.db.Query(
		`SELECT ts, sample, seed, result, observations, duration_ms, output
		 FROM run_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var seed string
		if err := rows.Scan(&r.TS, &r.Sample, &seed, &r.Result, &r.Observations, &r.DurationMS, &r.Output); err != nil {
			return nil, err
		}
		r.Seed, _ = strconv.ParseUint(seed, 10, 64)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database connection.
func (h *History) Close() error {
	return h.db.Close()
}

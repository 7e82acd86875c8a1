// Package history records API calls and discovery runs in SQLite so the CLI
// can report what it has been talking to. Recording is best-effort; a failed
// write never fails the call it describes.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Entry is one recorded API call.
type Entry struct {
	ID        string    `json:"id"`
	Service   string    `json:"service"`
	Target    string    `json:"target"`
	OK        bool      `json:"ok"`
	Detail    string    `json:"detail,omitempty"`
	LatencyMs int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// DiscoveryRun is one recorded discovery sweep.
type DiscoveryRun struct {
	ID         string    `json:"id"`
	Devices    []string  `json:"devices"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Summary aggregates calls per service.
type Summary struct {
	Service      string `json:"service"`
	Calls        int64  `json:"calls"`
	Failures     int64  `json:"failures"`
	AvgLatencyMs int64  `json:"avg_latency_ms"`
}

// Log stores history in a SQLite database.
type Log struct {
	db *sql.DB
}

const createTables = `
CREATE TABLE IF NOT EXISTS call_log (
	id TEXT PRIMARY KEY,
	service TEXT NOT NULL,
	target TEXT NOT NULL,
	ok INTEGER NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	latency_ms INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_call_log_service ON call_log(service, created_at);

CREATE TABLE IF NOT EXISTS discovery_runs (
	id TEXT PRIMARY KEY,
	devices TEXT NOT NULL,
	device_count INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Open creates a Log and runs auto-migration.
func Open(dbPath string) (*Log, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(createTables); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Log{db: db}, nil
}

// Record stores one call entry. A zero ID and CreatedAt are filled in.
func (l *Log) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO call_log (id, service, target, ok, detail, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Service, e.Target, boolInt(e.OK), e.Detail, e.LatencyMs, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record call: %w", err)
	}
	return nil
}

// RecordDiscovery stores one discovery run.
func (l *Log) RecordDiscovery(ctx context.Context, run DiscoveryRun) error {
	if run.ID == "" {
		run.ID = ulid.Make().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	devices, err := json.Marshal(run.Devices)
	if err != nil {
		return fmt.Errorf("encode devices: %w", err)
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO discovery_runs (id, devices, device_count, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, string(devices), len(run.Devices), run.DurationMs, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record discovery: %w", err)
	}
	return nil
}

// Recent returns the most recent call entries, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, service, target, ok, detail, latency_ms, created_at
		 FROM call_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ok int
		if err := rows.Scan(&e.ID, &e.Service, &e.Target, &ok, &e.Detail, &e.LatencyMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.OK = ok != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Summaries aggregates calls per service.
func (l *Log) Summaries(ctx context.Context) ([]Summary, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT service, COUNT(*), SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END), CAST(AVG(latency_ms) AS INTEGER)
		 FROM call_log GROUP BY service ORDER BY service`)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Service, &s.Calls, &s.Failures, &s.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Discoveries returns the most recent discovery runs, newest first.
func (l *Log) Discoveries(ctx context.Context, limit int) ([]DiscoveryRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, devices, duration_ms, created_at
		 FROM discovery_runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query discoveries: %w", err)
	}
	defer rows.Close()

	var runs []DiscoveryRun
	for rows.Next() {
		var run DiscoveryRun
		var devices string
		if err := rows.Scan(&run.ID, &devices, &run.DurationMs, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan discovery: %w", err)
		}
		if err := json.Unmarshal([]byte(devices), &run.Devices); err != nil {
			return nil, fmt.Errorf("decode devices: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close releases the database connection.
func (l *Log) Close() error {
	return l.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

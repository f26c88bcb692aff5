// Package history persists per-run validation summaries for watch mode, so
// an operator can see when a bundle went red without replaying old runs.
// Only the summary is stored; the in-process report stays transient.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/petal-labs/bundlecheck/report"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS validation_runs (
	run_id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	payload BLOB NOT NULL
);`

// RunSummary is the persisted shape of one validation run.
type RunSummary struct {
	RunID        string    `json:"run_id"`
	Started      time.Time `json:"started"`
	ElapsedMS    int64     `json:"elapsed_ms"`
	ToolCount    int       `json:"tool_count"`
	InvalidIDs   []string  `json:"invalid_ids,omitempty"`
	OverallValid bool      `json:"overall_valid"`
}

// Summarize reduces a report to its persisted summary.
func Summarize(rep report.Report) RunSummary {
	return RunSummary{
		RunID:        rep.RunID,
		Started:      rep.Started,
		ElapsedMS:    rep.Elapsed.Milliseconds(),
		ToolCount:    len(rep.Results),
		InvalidIDs:   rep.InvalidIDs(),
		OverallValid: rep.OverallValid,
	}
}

// Store is a SQLite-backed run-history store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at dsn and ensures the schema exists.
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("history: store dsn is required")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open store: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: set WAL mode: %w", err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record persists one run summary.
func (s *Store) Record(ctx context.Context, sum RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errors.New("history: store is nil")
	}
	if strings.TrimSpace(sum.RunID) == "" {
		return errors.New("history: run id is required")
	}

	payload, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("history: encode summary: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO validation_runs (run_id, started_at, payload)
VALUES (?, ?, ?)`, sum.RunID, sum.Started.UTC().Format(time.RFC3339Nano), payload)
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first, at most limit entries.
func (s *Store) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, errors.New("history: store is nil")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT payload
FROM validation_runs
ORDER BY started_at DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var sums []RunSummary
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		var sum RunSummary
		if err := json.Unmarshal(payload, &sum); err != nil {
			return nil, fmt.Errorf("history: decode run: %w", err)
		}
		sums = append(sums, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: run rows: %w", err)
	}
	return sums, nil
}

// Last returns the newest recorded run, if any.
func (s *Store) Last(ctx context.Context) (RunSummary, bool, error) {
	sums, err := s.List(ctx, 1)
	if err != nil {
		return RunSummary{}, false, err
	}
	if len(sums) == 0 {
		return RunSummary{}, false, nil
	}
	return sums[0], true, nil
}

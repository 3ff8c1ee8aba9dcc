// Package storage persists run outcomes, per-game catalog metadata, and
// session usage.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/forgelabs/gameforge/internal/orchestrator"
	_ "modernc.org/sqlite"
)

// RunRecord is one persisted run outcome, keyed by the design spec ID.
type RunRecord struct {
	SpecID    string
	Success   bool
	Fallback  bool
	Cancelled bool
	CostUnits float64
	Attempts  int
	UpdatedAt time.Time
	Result    *orchestrator.GenerationResult
}

// RunStore persists generation results in a local SQLite database. Each
// spec ID holds at most one row; persisting again overwrites it.
type RunStore struct {
	db *sql.DB
}

// OpenRunStore opens (and migrates) the run database at dbPath.
func OpenRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening run database: %w", err)
	}

	s := &RunStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *RunStore) Close() error {
	return s.db.Close()
}

func (s *RunStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		spec_id TEXT PRIMARY KEY,
		success INTEGER NOT NULL,
		fallback_used INTEGER NOT NULL,
		cancelled INTEGER NOT NULL,
		cost_units REAL NOT NULL,
		attempts INTEGER NOT NULL,
		result_json TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_success ON runs(success);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrating run database: %w", err)
	}
	return nil
}

// PersistRun stores the result under its spec ID, replacing any earlier
// run for the same spec.
func (s *RunStore) PersistRun(res *orchestrator.GenerationResult) error {
	if res == nil {
		return fmt.Errorf("cannot persist nil result")
	}
	if res.SpecID == "" {
		return fmt.Errorf("cannot persist result without a spec ID")
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (spec_id, success, fallback_used, cancelled, cost_units, attempts, result_json, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(spec_id) DO UPDATE SET
		   success = excluded.success,
		   fallback_used = excluded.fallback_used,
		   cancelled = excluded.cancelled,
		   cost_units = excluded.cost_units,
		   attempts = excluded.attempts,
		   result_json = excluded.result_json,
		   updated_at = excluded.updated_at`,
		res.SpecID, res.Success, res.FallbackUsed, res.Cancelled,
		res.TotalCostUnits, len(res.Attempts), string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("persisting run %s: %w", res.SpecID, err)
	}
	return nil
}

// GetRun returns the stored run for a spec ID, or (nil, nil) when absent.
func (s *RunStore) GetRun(specID string) (*RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT spec_id, success, fallback_used, cancelled, cost_units, attempts, result_json, updated_at
		 FROM runs WHERE spec_id = ?`, specID,
	)
	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// ListRuns returns all stored runs, most recently updated first.
func (s *RunStore) ListRuns() ([]*RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT spec_id, success, fallback_used, cancelled, cost_units, attempts, result_json, updated_at
		 FROM runs ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteRun removes a stored run. Deleting an absent spec ID is not an error.
func (s *RunStore) DeleteRun(specID string) error {
	_, err := s.db.Exec(`DELETE FROM runs WHERE spec_id = ?`, specID)
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", specID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var rec RunRecord
	var resultJSON string
	err := row.Scan(
		&rec.SpecID, &rec.Success, &rec.Fallback, &rec.Cancelled,
		&rec.CostUnits, &rec.Attempts, &resultJSON, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	var res orchestrator.GenerationResult
	if err := json.Unmarshal([]byte(resultJSON), &res); err != nil {
		return nil, fmt.Errorf("decoding stored run %s: %w", rec.SpecID, err)
	}
	rec.Result = &res
	return &rec, nil
}

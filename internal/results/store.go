// Package results persists Monte Carlo trial outcomes to a SQLite database,
// so long sweeps can be analyzed after the fact with ordinary SQL tooling.
package results

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	experiment TEXT NOT NULL,
	steps      INTEGER NOT NULL,
	trials     INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS trial_results (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	trial_id    TEXT NOT NULL,
	trial_index INTEGER NOT NULL,
	probe       TEXT NOT NULL,
	value       REAL NOT NULL,
	PRIMARY KEY (run_id, trial_index, probe)
);
CREATE INDEX IF NOT EXISTS idx_trial_results_run ON trial_results(run_id);
`

// Run describes one persisted Monte Carlo run.
type Run struct {
	ID         string
	Experiment string
	Steps      int
	Trials     int
	CreatedAt  time.Time
}

// TrialValue is one probed observation of one trial.
type TrialValue struct {
	TrialID    string
	TrialIndex int
	Probe      string
	Value      float64
}

// Store is a SQLite-backed result store.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) a result store at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening results db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing results schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists a run and its trial values in one transaction.
func (s *Store) SaveRun(run Run, values []TrialValue) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, experiment, steps, trials, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Experiment, run.Steps, run.Trials, run.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO trial_results (run_id, trial_id, trial_index, probe, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	defer stmt.Close()

	for _, v := range values {
		if _, err := stmt.Exec(run.ID, v.TrialID, v.TrialIndex, v.Probe, v.Value); err != nil {
			return fmt.Errorf("saving trial %d of run %s: %w", v.TrialIndex, run.ID, err)
		}
	}
	return tx.Commit()
}

// GetRun returns a persisted run by ID.
func (s *Store) GetRun(id string) (Run, error) {
	var run Run
	err := s.db.QueryRow(
		`SELECT id, experiment, steps, trials, created_at FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Experiment, &run.Steps, &run.Trials, &run.CreatedAt)
	if err != nil {
		return Run{}, fmt.Errorf("loading run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns all persisted runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, experiment, steps, trials, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Experiment, &run.Steps, &run.Trials, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Results returns the trial values of a run in trial order.
func (s *Store) Results(runID string) ([]TrialValue, error) {
	rows, err := s.db.Query(
		`SELECT trial_id, trial_index, probe, value FROM trial_results
		 WHERE run_id = ? ORDER BY trial_index, probe`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading results of run %s: %w", runID, err)
	}
	defer rows.Close()

	var values []TrialValue
	for rows.Next() {
		var v TrialValue
		if err := rows.Scan(&v.TrialID, &v.TrialIndex, &v.Probe, &v.Value); err != nil {
			return nil, fmt.Errorf("loading results of run %s: %w", runID, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

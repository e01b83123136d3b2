package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded scan.
type Run struct {
	RunID          string
	ModelID        string
	ModelPath      string
	StartedAt      time.Time
	Duration       time.Duration
	FloorsChecked  int
	FloorsExposed  int
	FloorsSelected int
	// ConfigJSON is the effective configuration snapshot.
	ConfigJSON string
	Version    string
	GitSHA     string
}

// RunVerdict is one exposed floor of a run, in classifier output order.
type RunVerdict struct {
	FloorID        string
	UncoveredRatio float64
	EdgeIndex      int
	Samples        int
	Covered        int
	Elevation      float64
	Selected       bool
}

// RecordRun stores run and its verdicts in one transaction. A RunID is
// generated when empty and written back into run.
func (db *DB) RecordRun(ctx context.Context, run *Run, verdicts []RunVerdict) error {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, model_id, model_path, started_at, duration_ns,
			floors_checked, floors_exposed, floors_selected,
			config_json, version, git_sha
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.ModelID, run.ModelPath, run.StartedAt.UnixNano(), int64(run.Duration),
		run.FloorsChecked, run.FloorsExposed, run.FloorsSelected,
		run.ConfigJSON, run.Version, run.GitSHA,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_verdicts (
			run_id, position, floor_id, uncovered_ratio, edge_index,
			samples, covered, elevation, selected
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare verdict insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range verdicts {
		if _, err := stmt.ExecContext(ctx,
			run.RunID, i, v.FloorID, v.UncoveredRatio, v.EdgeIndex,
			v.Samples, v.Covered, v.Elevation, v.Selected,
		); err != nil {
			return fmt.Errorf("failed to insert verdict %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

const runColumns = `run_id, model_id, model_path, started_at, duration_ns,
	floors_checked, floors_exposed, floors_selected, config_json, version, git_sha`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		r          Run
		startedAt  int64
		durationNs int64
	)
	err := row.Scan(
		&r.RunID, &r.ModelID, &r.ModelPath, &startedAt, &durationNs,
		&r.FloorsChecked, &r.FloorsExposed, &r.FloorsSelected,
		&r.ConfigJSON, &r.Version, &r.GitSHA,
	)
	if err != nil {
		return Run{}, err
	}
	r.StartedAt = time.Unix(0, startedAt)
	r.Duration = time.Duration(durationNs)
	return r, nil
}

// GetRun returns the run with the given id.
func (db *DB) GetRun(ctx context.Context, runID string) (Run, error) {
	row := db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first. limit <= 0 means no limit.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListVerdicts returns the verdicts of a run in classifier output order.
func (db *DB) ListVerdicts(ctx context.Context, runID string) ([]RunVerdict, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT floor_id, uncovered_ratio, edge_index, samples, covered, elevation, selected
		FROM run_verdicts WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list verdicts: %w", err)
	}
	defer rows.Close()

	var out []RunVerdict
	for rows.Next() {
		var v RunVerdict
		if err := rows.Scan(&v.FloorID, &v.UncoveredRatio, &v.EdgeIndex,
			&v.Samples, &v.Covered, &v.Elevation, &v.Selected); err != nil {
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

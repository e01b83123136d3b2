package db

import (
	"context"
	"fmt"
	"time"
)

// HighlightOverride is the visual override stored per element.
type HighlightOverride struct {
	R, G, B      uint8
	Transparency int
	FillPattern  string
}

// Highlight is one stored element override.
type Highlight struct {
	ElementID string
	Override  HighlightOverride
	RunID     string
	AppliedAt time.Time
}

// ApplyHighlights writes o for every element in ids in one transaction.
// Any failure rolls back the whole batch, so a model is never left
// partially highlighted. Existing overrides for the same elements are
// replaced.
func (db *DB) ApplyHighlights(ctx context.Context, modelID, runID string, ids []string, o HighlightOverride) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO highlight_overrides (
			model_id, element_id, color_r, color_g, color_b,
			transparency, fill_pattern, run_id, applied_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (model_id, element_id) DO UPDATE SET
			color_r = excluded.color_r,
			color_g = excluded.color_g,
			color_b = excluded.color_b,
			transparency = excluded.transparency,
			fill_pattern = excluded.fill_pattern,
			run_id = excluded.run_id,
			applied_at = excluded.applied_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare highlight insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixNano()
	var run interface{}
	if runID != "" {
		run = runID
	}
	for i, id := range ids {
		if id == "" {
			return fmt.Errorf("empty element id at position %d", i)
		}
		if _, err := stmt.ExecContext(ctx,
			modelID, id, int(o.R), int(o.G), int(o.B),
			o.Transparency, o.FillPattern, run, now,
		); err != nil {
			return fmt.Errorf("failed to highlight %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit highlights: %w", err)
	}
	return nil
}

// ClearHighlights removes every override for modelID and returns the
// number of elements reset.
func (db *DB) ClearHighlights(ctx context.Context, modelID string) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM highlight_overrides WHERE model_id = ?`, modelID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear highlights: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM selections WHERE model_id = ?`, modelID); err != nil {
		return 0, fmt.Errorf("failed to clear selection: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit clear: %w", err)
	}
	return n, nil
}

// Highlights returns the stored overrides for modelID ordered by element id.
func (db *DB) Highlights(ctx context.Context, modelID string) ([]Highlight, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT element_id, color_r, color_g, color_b, transparency, fill_pattern,
			COALESCE(run_id, ''), applied_at
		FROM highlight_overrides WHERE model_id = ? ORDER BY element_id`, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlights: %w", err)
	}
	defer rows.Close()

	var out []Highlight
	for rows.Next() {
		var (
			h         Highlight
			r, g, b   int
			appliedAt int64
		)
		if err := rows.Scan(&h.ElementID, &r, &g, &b, &h.Override.Transparency,
			&h.Override.FillPattern, &h.RunID, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan highlight: %w", err)
		}
		h.Override.R, h.Override.G, h.Override.B = uint8(r), uint8(g), uint8(b)
		h.AppliedAt = time.Unix(0, appliedAt)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetSelection replaces the active selection of modelID with ids, in order.
func (db *DB) SetSelection(ctx context.Context, modelID string, ids []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM selections WHERE model_id = ?`, modelID); err != nil {
		return fmt.Errorf("failed to reset selection: %w", err)
	}
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO selections (model_id, position, element_id) VALUES (?, ?, ?)`,
			modelID, i, id); err != nil {
			return fmt.Errorf("failed to select %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit selection: %w", err)
	}
	return nil
}

// Selection returns the active selection of modelID in order.
func (db *DB) Selection(ctx context.Context, modelID string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT element_id FROM selections WHERE model_id = ? ORDER BY position`, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

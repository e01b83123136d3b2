package main

import (
	"context"

	"github.com/banshee-data/edge-sentinel/internal/db"
	"github.com/banshee-data/edge-sentinel/internal/monitoring"
	"github.com/banshee-data/edge-sentinel/internal/report"
)

// dbHost stores highlights and the active selection of one model in the
// database, standing in for the modelling host.
type dbHost struct {
	db      *db.DB
	modelID string
	runID   string
}

func (h *dbHost) Highlight(ctx context.Context, ids []string, o report.Override) error {
	return h.db.ApplyHighlights(ctx, h.modelID, h.runID, ids, db.HighlightOverride{
		R:            o.Color.R,
		G:            o.Color.G,
		B:            o.Color.B,
		Transparency: o.Transparency,
		FillPattern:  o.FillPattern,
	})
}

func (h *dbHost) Select(ctx context.Context, ids []string) error {
	return h.db.SetSelection(ctx, h.modelID, ids)
}

// logHost only logs what would be highlighted. scan uses it with --dry-run.
type logHost struct{}

func (logHost) Highlight(_ context.Context, ids []string, o report.Override) error {
	monitoring.Logf("would highlight %d floors with rgb(%d,%d,%d) transparency=%d",
		len(ids), o.Color.R, o.Color.G, o.Color.B, o.Transparency)
	return nil
}

func (logHost) Select(_ context.Context, ids []string) error {
	monitoring.Logf("would select %d floors: %v", len(ids), ids)
	return nil
}

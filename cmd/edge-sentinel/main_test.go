package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/edge-sentinel/internal/db"
	"github.com/banshee-data/edge-sentinel/internal/exposure"
	"github.com/banshee-data/edge-sentinel/internal/monitoring"
)

var buildingModel = filepath.Join("..", "..", "internal", "model", "testdata", "building.geojson")

func quiet(t *testing.T) {
	t.Helper()
	orig := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() {
		monitoring.SetLogger(orig)
		monitoring.SetVerbose(false)
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestScan_RecordsRunAndHighlights(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "edge.db")
	htmlPath := filepath.Join(dir, "report.html")
	plotDir := filepath.Join(dir, "plots")
	metricsPath := filepath.Join(dir, "metrics.prom")

	out, err := execute(t, "scan", buildingModel,
		"--db", dbPath,
		"--html", htmlPath,
		"--plot", plotDir,
		"--metrics-out", metricsPath,
	)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Total floors checked: 3")
	assert.Contains(t, out, "Exposed floors detected: 1")
	assert.Contains(t, out, "Selected 1 out of 1")

	store, err := db.NewDB(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	sel, err := store.Selection(ctx, "building")
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, sel)

	hl, err := store.Highlights(ctx, "building")
	require.NoError(t, err)
	require.Len(t, hl, 1)
	assert.Equal(t, uint8(255), hl[0].Override.R)
	assert.Equal(t, 60, hl[0].Override.Transparency)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, hl[0].RunID, runs[0].RunID)
	assert.Equal(t, 1, runs[0].FloorsSelected)

	verdicts, err := store.ListVerdicts(ctx, runs[0].RunID)
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.Equal(t, 33, verdicts[0].Samples)
	assert.Equal(t, 3, verdicts[0].Covered)
	assert.True(t, verdicts[0].Selected)

	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<html")

	_, err = os.Stat(filepath.Join(plotDir, "floor-7.png"))
	assert.NoError(t, err)

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "edge_sentinel_floors_checked_total")
}

func TestScan_DryRunLeavesNoDatabase(t *testing.T) {
	quiet(t)
	dbPath := filepath.Join(t.TempDir(), "edge.db")

	out, err := execute(t, "scan", buildingModel, "--db", dbPath, "--dry-run")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Exposed floors detected: 1")

	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err), "dry run must not create the database")
}

func TestScan_MaxSelectionZero(t *testing.T) {
	quiet(t)
	out, err := execute(t, "scan", buildingModel, "--dry-run", "--max-selection", "0")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Selected 0 out of 1")
}

func TestScan_Errors(t *testing.T) {
	quiet(t)
	_, err := execute(t, "scan", filepath.Join(t.TempDir(), "missing.geojson"), "--dry-run")
	assert.Error(t, err)

	_, err = execute(t, "scan", buildingModel, "--dry-run", "--max-uncovered", "1.5")
	assert.ErrorContains(t, err, "max_uncovered_percentage")

	_, err = execute(t, "scan", buildingModel, "--dry-run", "--units", "cubits")
	assert.ErrorContains(t, err, "units must be one of")

	_, err = execute(t, "scan")
	assert.Error(t, err)
}

func TestScanOptions_FlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\nbuffer_distance: 0.3\nsegment_length: 0.5\n"), 0o644))

	o := &scanOptions{}
	cmd := scanCommand(&globalOptions{}, o)
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--workers", "4", "--worst-edge"}))

	cfg, err := o.tuning(cmd)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.GetWorkers())
	assert.Equal(t, 0.3, cfg.GetBufferDistance())
	assert.Equal(t, 0.5, cfg.GetSegmentLength())
	assert.Equal(t, "worst", cfg.GetAggregation())
	assert.Equal(t, exposure.DefaultMinFloorHeight, cfg.GetMinFloorHeight())
	assert.Nil(t, cfg.MinFloorHeight, "unset flags must not overwrite the file")
}

func TestClear(t *testing.T) {
	quiet(t)
	dbPath := filepath.Join(t.TempDir(), "edge.db")
	out, err := execute(t, "scan", buildingModel, "--db", dbPath)
	require.NoError(t, err, out)

	out, err = execute(t, "clear", "--db", dbPath, "--model", "building")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 1 highlights on building")

	_, err = execute(t, "clear", "--db", dbPath)
	assert.ErrorContains(t, err, "--model is required")
}

func TestRuns(t *testing.T) {
	quiet(t)
	dbPath := filepath.Join(t.TempDir(), "edge.db")

	out, err := execute(t, "runs", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")

	_, err = execute(t, "scan", buildingModel, "--db", dbPath, "--model-id", "tower")
	require.NoError(t, err)

	store, err := db.NewDB(dbPath)
	require.NoError(t, err)
	runs, err := store.ListRuns(context.Background(), 1)
	store.Close()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	out, err = execute(t, "runs", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, runs[0].RunID)
	assert.Contains(t, out, "tower")

	out, err = execute(t, "runs", "show", runs[0].RunID, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Model:    tower")
	assert.Contains(t, out, "90.91%")

	_, err = execute(t, "runs", "show", "nope", "--db", dbPath)
	assert.ErrorIs(t, err, db.ErrRunNotFound)
}

func TestMigrate(t *testing.T) {
	quiet(t)
	dbPath := filepath.Join(t.TempDir(), "edge.db")

	out, err := execute(t, "migrate", "status", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version 0 of 2, 2 pending")

	out, err = execute(t, "migrate", "up", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version 2 of 2, 0 pending")

	out, err = execute(t, "migrate", "down", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version 1 of 2")

	out, err = execute(t, "migrate", "version", "2", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version 2 of 2")

	out, err = execute(t, "migrate", "force", "1", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version 1 of 2")

	_, err = execute(t, "migrate", "version", "x", "--db", dbPath)
	assert.ErrorContains(t, err, "invalid version")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "edge-sentinel dev")
}

func TestPlotFileName(t *testing.T) {
	assert.Equal(t, "floor-7.png", plotFileName("7"))
	assert.Equal(t, "floor-L2_east.png", plotFileName("L2/east"))
}

func TestModelIDFor(t *testing.T) {
	assert.Equal(t, "building", modelIDFor("/models/building.geojson"))
	assert.Equal(t, "tower.v2", modelIDFor("tower.v2.json"))
}

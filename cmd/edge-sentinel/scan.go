package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/banshee-data/edge-sentinel/internal/config"
	"github.com/banshee-data/edge-sentinel/internal/db"
	"github.com/banshee-data/edge-sentinel/internal/exposure"
	"github.com/banshee-data/edge-sentinel/internal/model"
	"github.com/banshee-data/edge-sentinel/internal/monitoring"
	"github.com/banshee-data/edge-sentinel/internal/report"
	"github.com/banshee-data/edge-sentinel/internal/version"
)

type scanOptions struct {
	configPath string
	modelID    string
	dryRun     bool

	units          string
	workers        int
	minFloorHeight float64
	bufferDistance float64
	segmentLength  float64
	maxUncovered   float64
	maxSelection   int
	worstEdge      bool

	simplify float64
	strict   bool

	htmlPath   string
	plotDir    string
	metricsOut string
}

func newScanCmd(g *globalOptions) *cobra.Command {
	return scanCommand(g, &scanOptions{})
}

func scanCommand(g *globalOptions, o *scanOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan MODEL.geojson",
		Short: "Classify every floor of a model and highlight the exposed ones",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runScan(ctx, cmd, g, o, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "tuning config file (.json, .yaml or .yml)")
	f.StringVar(&o.modelID, "model-id", "", "model identifier (default: model file name)")
	f.BoolVar(&o.dryRun, "dry-run", false, "log highlights instead of writing them to the database")

	f.StringVar(&o.units, "units", "", "model length unit: m, mm or ft (default: the file's units member)")
	f.IntVar(&o.workers, "workers", 1, "floors evaluated concurrently")
	f.Float64Var(&o.minFloorHeight, "min-floor-height", exposure.DefaultMinFloorHeight, "lowest floor elevation considered (m)")
	f.Float64Var(&o.bufferDistance, "buffer-distance", exposure.DefaultBufferDistance, "barrier buffer on every axis (m)")
	f.Float64Var(&o.segmentLength, "segment-length", exposure.DefaultSegmentLength, "spacing between edge samples (m)")
	f.Float64Var(&o.maxUncovered, "max-uncovered", exposure.DefaultMaxUncoveredPercentage, "uncovered ratio an edge must exceed, 0..1")
	f.IntVar(&o.maxSelection, "max-selection", exposure.DefaultMaxSelection, "cap on floors placed in the selection")
	f.BoolVar(&o.worstEdge, "worst-edge", false, "evaluate every edge and report the worst instead of the first exceeding one")

	f.Float64Var(&o.simplify, "simplify", 0, "Douglas-Peucker tolerance for floor outlines (m), 0 disables")
	f.BoolVar(&o.strict, "strict", false, "fail on unknown categories and unsupported geometry")

	f.StringVar(&o.htmlPath, "html", "", "write an HTML chart report to this file")
	f.StringVar(&o.plotDir, "plot", "", "write a plan-view PNG per exposed floor into this directory")
	f.StringVar(&o.metricsOut, "metrics-out", "", "write Prometheus metrics in text format to this file")
	return cmd
}

// tuning merges the config file with any flag the user set explicitly.
// Flags win over the file; unset flags leave file values alone.
func (o *scanOptions) tuning(cmd *cobra.Command) (*config.TuningConfig, error) {
	cfg := config.EmptyTuningConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadTuningConfig(o.configPath); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("units") {
		cfg.Units = &o.units
	}
	if f.Changed("workers") {
		cfg.Workers = &o.workers
	}
	if f.Changed("min-floor-height") {
		cfg.MinFloorHeight = &o.minFloorHeight
	}
	if f.Changed("buffer-distance") {
		cfg.BufferDistance = &o.bufferDistance
	}
	if f.Changed("segment-length") {
		cfg.SegmentLength = &o.segmentLength
	}
	if f.Changed("max-uncovered") {
		cfg.MaxUncoveredPercentage = &o.maxUncovered
	}
	if f.Changed("max-selection") {
		cfg.MaxSelection = &o.maxSelection
	}
	if f.Changed("worst-edge") {
		agg := exposure.AggregateFirst.String()
		if o.worstEdge {
			agg = exposure.AggregateWorst.String()
		}
		cfg.Aggregation = &agg
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func overrideFrom(cfg *config.TuningConfig) report.Override {
	c := cfg.GetHighlightColor()
	return report.Override{
		Color:        color.RGBA{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: 255},
		Transparency: cfg.GetHighlightTransparency(),
		FillPattern:  report.FillSolid,
	}
}

func modelIDFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func runScan(ctx context.Context, cmd *cobra.Command, g *globalOptions, o *scanOptions, modelPath string) error {
	tuning, err := o.tuning(cmd)
	if err != nil {
		return err
	}
	ecfg, err := tuning.ExposureConfig()
	if err != nil {
		return err
	}

	// An explicit unit from flag or file overrides the collection's member.
	var unit string
	if tuning.Units != nil {
		unit = *tuning.Units
	}
	doc, err := model.LoadGeoJSON(modelPath, model.Options{
		Units:             unit,
		SimplifyTolerance: o.simplify,
		Strict:            o.strict,
	})
	if err != nil {
		return err
	}
	modelID := o.modelID
	if modelID == "" {
		modelID = modelIDFor(modelPath)
	}
	monitoring.Logf("scanning %s: %d floors, %d barriers, %d ignored features",
		modelID, len(doc.Floors()), len(doc.Barriers()), doc.Ignored)

	started := time.Now()
	res, err := exposure.ClassifyContext(ctx, doc.Floors(), doc.Barriers(), ecfg)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	rep := report.New(modelID, res, func(id string) (float64, bool) {
		f, ok := doc.Floor(id)
		if !ok {
			return 0, false
		}
		return f.PlanArea(), true
	})
	override := overrideFrom(tuning)

	if o.dryRun {
		if _, err := report.Dispatch(ctx, rep, logHost{}, logHost{}, override, ecfg.MaxSelection); err != nil {
			return err
		}
	} else {
		store, err := db.NewDB(g.dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		runID := uuid.NewString()
		host := &dbHost{db: store, modelID: modelID, runID: runID}
		if _, err := report.Dispatch(ctx, rep, host, host, override, ecfg.MaxSelection); err != nil {
			return err
		}
		if err := recordRun(ctx, store, runID, modelID, modelPath, started, tuning, res, rep); err != nil {
			return err
		}
		monitoring.Logf("recorded run %s", runID)
	}

	if err := report.WriteSummary(cmd.OutOrStdout(), rep); err != nil {
		return err
	}
	if o.htmlPath != "" {
		if err := writeHTML(o.htmlPath, rep, res, override); err != nil {
			return err
		}
	}
	if o.plotDir != "" {
		if err := writePlans(o.plotDir, doc, rep, ecfg); err != nil {
			return err
		}
	}
	if o.metricsOut != "" {
		if err := prometheus.WriteToTextfile(o.metricsOut, prometheus.DefaultGatherer); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

func recordRun(ctx context.Context, store *db.DB, runID, modelID, modelPath string, started time.Time,
	tuning *config.TuningConfig, res exposure.Result, rep *report.Report) error {
	cfgJSON, err := json.Marshal(tuning)
	if err != nil {
		return fmt.Errorf("failed to encode config snapshot: %w", err)
	}
	verdicts := make([]db.RunVerdict, len(res.Verdicts))
	for i, v := range res.Verdicts {
		verdicts[i] = db.RunVerdict{
			FloorID:        v.FloorID,
			UncoveredRatio: v.UncoveredRatio,
			EdgeIndex:      v.EdgeIndex,
			Samples:        v.Edge.Samples,
			Covered:        v.Edge.Covered,
			Elevation:      v.Elevation,
			Selected:       rep.Entries[i].Selected,
		}
	}
	run := &db.Run{
		RunID:          runID,
		ModelID:        modelID,
		ModelPath:      modelPath,
		StartedAt:      started,
		Duration:       res.Duration,
		FloorsChecked:  res.Diagnostics.FloorsChecked,
		FloorsExposed:  len(res.Verdicts),
		FloorsSelected: rep.SelectedCount,
		ConfigJSON:     string(cfgJSON),
		Version:        version.Version,
		GitSHA:         version.GitSHA,
	}
	return store.RecordRun(ctx, run, verdicts)
}

func writeHTML(path string, rep *report.Report, res exposure.Result, o report.Override) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create HTML report: %w", err)
	}
	if err := report.WriteHTML(f, rep, res.Diagnostics.EdgeUncovered, o); err != nil {
		f.Close()
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return f.Close()
}

// writePlans renders one plan view per exposed floor, named after the
// floor identifier.
func writePlans(dir string, doc *model.Document, rep *report.Report, cfg exposure.Config) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}
	idx := exposure.NewIndex(doc.Barriers(), cfg)
	barriers := doc.BarrierFootprints()
	for _, e := range rep.Entries {
		f, ok := doc.Floor(e.FloorID)
		if !ok {
			continue
		}
		samples, err := exposure.TraceFloor(f, idx, cfg)
		if err != nil {
			monitoring.Logf("plot %s: %v", e.FloorID, err)
			continue
		}
		p := report.Plan{
			Title:     fmt.Sprintf("%s (%.1f%% uncovered)", e.FloorID, e.UncoveredPercent),
			Footprint: f.Footprint,
			Barriers:  barriers,
			Samples:   samples,
		}
		path := filepath.Join(dir, plotFileName(e.FloorID))
		if err := report.WritePlanPNG(path, p); err != nil {
			return err
		}
	}
	return nil
}

func plotFileName(floorID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, floorID)
	return "floor-" + safe + ".png"
}

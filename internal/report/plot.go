package report

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/edge-sentinel/internal/exposure"
)

// Plan is the plan-view content of one floor.
type Plan struct {
	Title     string
	Footprint orb.MultiPolygon
	Barriers  []orb.Bound
	Samples   []exposure.SamplePoint
}

var (
	coveredColor   = color.RGBA{R: 46, G: 160, B: 67, A: 255}
	uncoveredColor = color.RGBA{R: 255, G: 50, B: 50, A: 255}
	barrierColor   = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

func newPlanPlot(p Plan) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = p.Title
	pl.X.Label.Text = "X (m)"
	pl.Y.Label.Text = "Y (m)"
	pl.Add(plotter.NewGrid())

	for _, poly := range p.Footprint {
		for _, ring := range poly {
			l, err := plotter.NewLine(ringXYs(ring))
			if err != nil {
				return nil, fmt.Errorf("floor outline: %w", err)
			}
			l.Color = color.Black
			l.Width = vg.Points(1)
			pl.Add(l)
		}
	}

	for _, b := range p.Barriers {
		l, err := plotter.NewLine(ringXYs(b.ToRing()))
		if err != nil {
			return nil, fmt.Errorf("barrier outline: %w", err)
		}
		l.Color = barrierColor
		l.Width = vg.Points(1.5)
		pl.Add(l)
	}

	covered := make(plotter.XYs, 0, len(p.Samples))
	uncovered := make(plotter.XYs, 0, len(p.Samples))
	for _, s := range p.Samples {
		if !finite(s.Point.X) || !finite(s.Point.Y) {
			continue
		}
		xy := plotter.XY{X: s.Point.X, Y: s.Point.Y}
		if s.Covered {
			covered = append(covered, xy)
		} else {
			uncovered = append(uncovered, xy)
		}
	}
	for _, series := range []struct {
		name  string
		pts   plotter.XYs
		color color.Color
	}{
		{"covered", covered, coveredColor},
		{"uncovered", uncovered, uncoveredColor},
	} {
		if len(series.pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(series.pts)
		if err != nil {
			return nil, fmt.Errorf("%s samples: %w", series.name, err)
		}
		sc.GlyphStyle.Color = series.color
		sc.GlyphStyle.Radius = vg.Points(2)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		pl.Add(sc)
		pl.Legend.Add(series.name, sc)
	}

	pl.Legend.Top = true
	pl.Legend.Left = false
	pl.Legend.XOffs = -10
	pl.Legend.YOffs = -10
	return pl, nil
}

// WritePlan renders p in the given format ("png", "svg", "pdf").
func WritePlan(w io.Writer, p Plan, format string) error {
	pl, err := newPlanPlot(p)
	if err != nil {
		return err
	}
	wt, err := pl.WriterTo(8*vg.Inch, 8*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("failed to create %s writer: %w", format, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// WritePlanPNG renders p to path. The format follows the file extension.
func WritePlanPNG(path string, p Plan) error {
	pl, err := newPlanPlot(p)
	if err != nil {
		return err
	}
	if err := pl.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

func ringXYs(r orb.Ring) plotter.XYs {
	xys := make(plotter.XYs, len(r))
	for i, pt := range r {
		xys[i] = plotter.XY{X: pt.X(), Y: pt.Y()}
	}
	return xys
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

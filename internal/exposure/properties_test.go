package exposure

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/banshee-data/edge-sentinel/internal/geom"
	"github.com/banshee-data/edge-sentinel/internal/testutil"
)

func pointGen(lo, hi float64) *rapid.Generator[geom.Point3D] {
	return rapid.Custom(func(t *rapid.T) geom.Point3D {
		return geom.Pt(
			rapid.Float64Range(lo, hi).Draw(t, "x"),
			rapid.Float64Range(lo, hi).Draw(t, "y"),
			rapid.Float64Range(lo, hi).Draw(t, "z"),
		)
	})
}

func barrierGen() *rapid.Generator[Barrier] {
	return rapid.Custom(func(t *rapid.T) Barrier {
		a := pointGen(-20, 20).Draw(t, "a")
		b := pointGen(-20, 20).Draw(t, "b")
		if rapid.IntRange(0, 9).Draw(t, "missing") == 0 {
			return &testutil.Barrier{BarrierID: "missing"}
		}
		return testutil.BoxBarrier("b", a, b)
	})
}

func curveGen() *rapid.Generator[geom.Curve] {
	return rapid.Custom(func(t *rapid.T) geom.Curve {
		switch rapid.IntRange(0, 3).Draw(t, "kind") {
		case 0:
			return geom.NewLine(pointGen(-50, 50).Draw(t, "from"), pointGen(-50, 50).Draw(t, "to"))
		case 1:
			p := pointGen(-50, 50).Draw(t, "p")
			return geom.NewLine(p, p)
		case 2:
			return geom.Arc{
				Center:     pointGen(-50, 50).Draw(t, "c"),
				Radius:     rapid.Float64Range(-1, 10).Draw(t, "r"),
				StartAngle: rapid.Float64Range(-math.Pi, math.Pi).Draw(t, "start"),
				Sweep:      rapid.Float64Range(-2*math.Pi, 2*math.Pi).Draw(t, "sweep"),
			}
		default:
			return testutil.BrokenCurve{Err: geom.ErrNonFinite, MidOK: rapid.Bool().Draw(t, "midOK")}
		}
	})
}

// Sampling never returns an empty sequence, and a healthy curve yields
// exactly max(1, floor(length/segment)) points.
func TestSampleNonEmptyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := curveGen().Draw(t, "curve")
		seg := rapid.Float64Range(0.05, 5).Draw(t, "segment")

		pts := Sample(c, seg)
		if len(pts) < 1 {
			t.Fatalf("Sample returned no points")
		}
		n, err := c.Length()
		if err != nil {
			if len(pts) != 1 {
				t.Fatalf("failing curve returned %d points, want 1", len(pts))
			}
			return
		}
		want := int(math.Max(1, math.Floor(n/seg)))
		if len(pts) != want {
			t.Fatalf("Sample returned %d points for length %g / %g, want %d", len(pts), n, seg, want)
		}
	})
}

// Coverage and uncovered ratios are complementary and within [0, 1].
func TestCoverageRatioRangeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := curveGen().Draw(t, "curve")
		barriers := rapid.SliceOfN(barrierGen(), 0, 8).Draw(t, "barriers")
		cfg := DefaultConfig()
		cfg.BufferDistance = rapid.Float64Range(0, 3).Draw(t, "buffer")

		r := EvaluateEdge(c, NewLinearIndex(barriers, cfg.BufferDistance), cfg)
		cov, unc := r.CoverageRatio(), r.UncoveredRatio()
		if cov < 0 || cov > 1 {
			t.Fatalf("coverage ratio %g out of range", cov)
		}
		if math.Abs(cov+unc-1) > 1e-12 {
			t.Fatalf("coverage %g + uncovered %g != 1", cov, unc)
		}
		if r.Samples < 1 || r.Covered > r.Samples {
			t.Fatalf("invalid counts %+v", r)
		}
	})
}

// A larger buffer never reduces the number of covered points.
func TestMonotonicBufferProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		points := rapid.SliceOfN(pointGen(-25, 25), 1, 40).Draw(t, "points")
		barriers := rapid.SliceOfN(barrierGen(), 0, 8).Draw(t, "barriers")
		small := rapid.Float64Range(0, 2).Draw(t, "small")
		large := small + rapid.Float64Range(0, 2).Draw(t, "delta")

		count := func(buffer float64) int {
			idx := NewLinearIndex(barriers, buffer)
			n := 0
			for _, p := range points {
				if idx.IsCovered(p) {
					n++
				}
			}
			return n
		}
		if a, b := count(small), count(large); b < a {
			t.Fatalf("buffer %g covered %d points, buffer %g covered %d", small, a, large, b)
		}
	})
}

// The R-tree and linear indexes answer identically, including for points
// on the buffered boundary.
func TestIndexEquivalenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		barriers := rapid.SliceOfN(barrierGen(), 0, 30).Draw(t, "barriers")
		buffer := rapid.Float64Range(0, 1).Draw(t, "buffer")
		lin := NewLinearIndex(barriers, buffer)
		rt := NewRTreeIndex(barriers, buffer)

		queries := rapid.SliceOfN(pointGen(-25, 25), 1, 30).Draw(t, "queries")
		// corners of every expanded volume
		for _, v := range lin.Volumes() {
			queries = append(queries, v.Min, v.Max)
		}
		for _, p := range queries {
			if lin.IsCovered(p) != rt.IsCovered(p) {
				t.Fatalf("indexes disagree at %v: linear=%v rtree=%v", p, lin.IsCovered(p), rt.IsCovered(p))
			}
			if lin.IsCovered(p) != IsCovered(p, barriers, buffer) {
				t.Fatalf("LinearIndex disagrees with IsCovered at %v", p)
			}
		}
	})
}

// A floor below the minimum height never appears in the output.
func TestElevationFilterProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := DefaultConfig()
		z := rapid.Float64Range(-100, cfg.MinFloorHeight-1e-6).Draw(t, "z")
		w := rapid.Float64Range(0.1, 30).Draw(t, "w")
		d := rapid.Float64Range(0.1, 30).Draw(t, "d")
		f := testutil.RectFloor("low", 0, 0, w, d, z)

		if got := Classify(floorsOf(f), nil, cfg); len(got) != 0 {
			t.Fatalf("floor at z=%g reported exposed: %+v", z, got)
		}
	})
}

// First-edge aggregation records the first triggering edge regardless of
// later edges.
func TestShortCircuitProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l1 := rapid.Float64Range(0.3, 20).Draw(t, "l1")
		l2 := rapid.Float64Range(0.3, 20).Draw(t, "l2")
		e1 := geom.NewLine(geom.Pt(0, 0, 7), geom.Pt(l1, 0, 7))
		e2 := geom.NewLine(geom.Pt(0, 50, 7), geom.Pt(l2, 50, 7))
		f := &testutil.Floor{
			FloorID:   "f",
			HasVolume: true,
			Volume:    geom.NewBoundingVolume(geom.Pt(0, 0, 7), geom.Pt(20, 50, 7)),
			Curves:    []geom.Curve{e1, e2},
		}
		cfg := DefaultConfig()
		got := Classify(floorsOf(f), nil, cfg)
		if len(got) != 1 {
			t.Fatalf("got %d verdicts, want 1", len(got))
		}
		want := EvaluateEdge(e1, NewLinearIndex(nil, 0), cfg)
		if got[0].EdgeIndex != 0 || got[0].UncoveredRatio != want.UncoveredRatio() {
			t.Fatalf("verdict %+v does not match first edge %+v", got[0], want)
		}
	})
}

// Re-running the classifier on identical input yields identical output.
func TestIdempotenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(t, "floors")
		floors := make([]Floor, n)
		for i := range floors {
			floors[i] = testutil.RectFloor("f", float64(i)*15, 0,
				rapid.Float64Range(0.5, 10).Draw(t, "w"),
				rapid.Float64Range(0.5, 10).Draw(t, "d"),
				rapid.Float64Range(0, 20).Draw(t, "z"))
		}
		barriers := rapid.SliceOfN(barrierGen(), 0, 10).Draw(t, "barriers")
		cfg := DefaultConfig()
		cfg.Workers = rapid.IntRange(1, 4).Draw(t, "workers")

		first, err := ClassifyContext(context.Background(), floors, barriers, cfg)
		if err != nil {
			t.Fatalf("first pass: %v", err)
		}
		second, err := ClassifyContext(context.Background(), floors, barriers, cfg)
		if err != nil {
			t.Fatalf("second pass: %v", err)
		}
		if diff := cmp.Diff(first.Verdicts, second.Verdicts); diff != "" {
			t.Fatalf("re-run differs:\n%s", diff)
		}
	})
}

package exposure

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/edge-sentinel/internal/monitoring"
)

// Diagnostics aggregates per-floor statistics for one classification pass.
type Diagnostics struct {
	FloorsChecked  int
	FloorsExposed  int
	Skipped        map[SkipReason]int
	EdgesEvaluated int
	SamplesTested  int
	// EdgeUncovered holds the uncovered ratio of every evaluated edge in
	// floor order, for Summarize.
	EdgeUncovered []float64
	// Errors holds one *FloorError per floor whose host extraction failed.
	Errors []error
}

// Result is the output of ClassifyContext.
type Result struct {
	// Verdicts lists exposed floors in input order.
	Verdicts    []Verdict
	Diagnostics Diagnostics
	Duration    time.Duration
}

// ExposedIDs returns the floor identifiers of r.Verdicts in order.
func (r Result) ExposedIDs() []string {
	ids := make([]string, len(r.Verdicts))
	for i, v := range r.Verdicts {
		ids[i] = v.FloorID
	}
	return ids
}

type floorOutcome struct {
	done      bool
	verdict   *Verdict
	skip      SkipReason
	edges     int
	samples   int
	uncovered []float64
	err       error
}

// Classify returns the exposed floors in input order. It is the
// sequential, context-free form of ClassifyContext.
func Classify(floors []Floor, barriers []Barrier, cfg Config) []Verdict {
	cfg.Workers = 1
	res, _ := ClassifyContext(context.Background(), floors, barriers, cfg)
	return res.Verdicts
}

// ClassifyContext classifies floors against barriers. With cfg.Workers > 1
// floors are evaluated concurrently; the output is identical to the
// sequential order. ctx is checked between floors. On cancellation the
// returned Result holds only fully classified floors, together with the
// context error.
func ClassifyContext(ctx context.Context, floors []Floor, barriers []Barrier, cfg Config) (Result, error) {
	start := time.Now()
	idx := NewIndex(barriers, cfg)
	outcomes := make([]floorOutcome, len(floors))

	var runErr error
	if cfg.Workers <= 1 {
		for i, f := range floors {
			if err := ctx.Err(); err != nil {
				runErr = err
				break
			}
			outcomes[i] = classifyFloor(f, idx, cfg)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Workers)
		for i, f := range floors {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				outcomes[i] = classifyFloor(f, idx, cfg)
				return nil
			})
		}
		runErr = g.Wait()
		if runErr == nil {
			runErr = ctx.Err()
		}
	}

	res := Result{Diagnostics: Diagnostics{Skipped: make(map[SkipReason]int)}}
	d := &res.Diagnostics
	for _, o := range outcomes {
		if !o.done {
			continue
		}
		d.FloorsChecked++
		d.EdgesEvaluated += o.edges
		d.SamplesTested += o.samples
		d.EdgeUncovered = append(d.EdgeUncovered, o.uncovered...)
		if o.err != nil {
			d.Errors = append(d.Errors, o.err)
			monitoring.Logf("skipping floor: %v", o.err)
		}
		if o.verdict == nil {
			d.Skipped[o.skip]++
			continue
		}
		d.FloorsExposed++
		res.Verdicts = append(res.Verdicts, *o.verdict)
		monitoring.Logf("Floor ID %s Uncovered Percentage: %.2f%%", o.verdict.FloorID, o.verdict.UncoveredPercent())
	}
	res.Duration = time.Since(start)
	recordPass(d, res.Duration)
	return res, runErr
}

// classifyFloor never panics; a panicking host adapter is reported as a
// FloorError for that floor alone.
func classifyFloor(f Floor, idx Index, cfg Config) (out floorOutcome) {
	out.done = true
	if f == nil {
		out.skip = SkipNoVolume
		return out
	}
	defer func() {
		if r := recover(); r != nil {
			out = floorOutcome{
				done: true,
				skip: SkipExtractionError,
				err:  &FloorError{FloorID: safeID(f), Err: fmt.Errorf("host panic: %v", r)},
			}
		}
	}()

	bv, ok := f.BoundingVolume()
	if !ok || !bv.Valid() {
		out.skip = SkipNoVolume
		return out
	}
	if bv.Min.Z < cfg.MinFloorHeight {
		out.skip = SkipBelowHeight
		return out
	}

	curves, err := f.BoundaryLoops()
	if err != nil {
		out.skip = SkipExtractionError
		out.err = &FloorError{FloorID: f.ID(), Err: err}
		return out
	}
	if len(curves) == 0 {
		out.skip = SkipNoEdges
		return out
	}

	for i, c := range curves {
		r := EvaluateEdge(c, idx, cfg)
		out.edges++
		out.samples += r.Samples
		u := r.UncoveredRatio()
		out.uncovered = append(out.uncovered, u)
		monitoring.Debugf("floor %s edge %d: %d/%d covered", f.ID(), i, r.Covered, r.Samples)

		if u <= cfg.MaxUncoveredPercentage {
			continue
		}
		if out.verdict == nil || u > out.verdict.UncoveredRatio {
			out.verdict = &Verdict{
				FloorID:        f.ID(),
				Exposed:        true,
				UncoveredRatio: u,
				EdgeIndex:      i,
				Edge:           r,
				Elevation:      bv.Min.Z,
			}
		}
		if cfg.Aggregation == AggregateFirst {
			break
		}
	}

	if out.verdict == nil {
		out.skip = SkipCovered
		return out
	}
	out.verdict.EdgesEvaluated = out.edges
	return out
}

func safeID(f Floor) (id string) {
	defer func() {
		if recover() != nil {
			id = "<unknown>"
		}
	}()
	return f.ID()
}

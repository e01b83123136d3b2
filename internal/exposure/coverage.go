package exposure

import (
	"github.com/banshee-data/edge-sentinel/internal/geom"
)

// EdgeCoverageResult counts how many samples of one boundary curve fall
// inside a buffered barrier volume.
type EdgeCoverageResult struct {
	Samples int
	Covered int
}

// CoverageRatio returns Covered/Samples, or 0 when there are no samples.
func (r EdgeCoverageResult) CoverageRatio() float64 {
	if r.Samples <= 0 {
		return 0
	}
	return float64(r.Covered) / float64(r.Samples)
}

// UncoveredRatio returns 1 - CoverageRatio.
func (r EdgeCoverageResult) UncoveredRatio() float64 {
	return 1 - r.CoverageRatio()
}

// SamplePoint is one edge sample and its coverage outcome.
type SamplePoint struct {
	Point   geom.Point3D
	Covered bool
	Edge    int
}

// EvaluateEdge samples c at cfg.SegmentLength and tests each sample
// against idx.
func EvaluateEdge(c geom.Curve, idx Index, cfg Config) EdgeCoverageResult {
	pts := Sample(c, cfg.SegmentLength)
	res := EdgeCoverageResult{Samples: len(pts)}
	for _, p := range pts {
		if idx.IsCovered(p) {
			res.Covered++
		}
	}
	return res
}

// TraceFloor returns every sample of every boundary curve of f with its
// coverage outcome, ignoring early exit. The report plots use it.
func TraceFloor(f Floor, idx Index, cfg Config) ([]SamplePoint, error) {
	curves, err := f.BoundaryLoops()
	if err != nil {
		return nil, &FloorError{FloorID: f.ID(), Err: err}
	}
	var out []SamplePoint
	for i, c := range curves {
		for _, p := range Sample(c, cfg.SegmentLength) {
			out = append(out, SamplePoint{Point: p, Covered: idx.IsCovered(p), Edge: i})
		}
	}
	return out, nil
}

package exposure

import (
	"fmt"
	"math"

	"github.com/banshee-data/edge-sentinel/internal/geom"
)

// maxSamplesPerCurve bounds the work for a single pathological curve.
// Curves longer than maxSamplesPerCurve*segmentLength are sampled coarser.
const maxSamplesPerCurve = 1 << 20

// Sample returns points spaced along c at roughly segmentLength.
//
// The count is max(1, floor(length/segmentLength)) and the first point is
// at the curve's start parameter; the end point is not repeated. If the
// length or any evaluation fails, Sample returns exactly one point, the
// curve midpoint. The result is never empty.
func Sample(c geom.Curve, segmentLength float64) []geom.Point3D {
	pts, err := sampleUniform(c, segmentLength)
	if err == nil {
		return pts
	}
	return []geom.Point3D{fallbackPoint(c)}
}

func sampleUniform(c geom.Curve, segmentLength float64) ([]geom.Point3D, error) {
	if c == nil {
		return nil, fmt.Errorf("nil curve: %w", geom.ErrDegenerate)
	}
	if !(segmentLength > 0) || math.IsInf(segmentLength, 0) {
		return nil, fmt.Errorf("segment length %g: %w", segmentLength, geom.ErrDegenerate)
	}
	length, err := c.Length()
	if err != nil {
		return nil, err
	}
	if math.IsNaN(length) || math.IsInf(length, 0) || length < 0 {
		return nil, fmt.Errorf("curve length %g: %w", length, geom.ErrNonFinite)
	}

	n := 1
	if ratio := length / segmentLength; ratio >= 1 {
		if ratio > maxSamplesPerCurve {
			n = maxSamplesPerCurve
		} else {
			n = int(math.Floor(ratio))
		}
	}

	step := length / float64(n)
	start := c.StartParameter()
	pts := make([]geom.Point3D, 0, n)
	for i := 0; i < n; i++ {
		p, err := c.Evaluate(start + float64(i)*step)
		if err != nil {
			return nil, err
		}
		if !geom.IsFinite(p) {
			return nil, fmt.Errorf("sample %d: %w", i, geom.ErrNonFinite)
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// fallbackPoint evaluates the midpoint, then the start point. A curve that
// cannot produce either yields a NaN point, which no barrier can cover.
func fallbackPoint(c geom.Curve) geom.Point3D {
	if c == nil {
		return nanPoint()
	}
	if p, err := c.EvaluateNormalized(0.5); err == nil && geom.IsFinite(p) {
		return p
	}
	if p, err := c.Evaluate(c.StartParameter()); err == nil && geom.IsFinite(p) {
		return p
	}
	return nanPoint()
}

func nanPoint() geom.Point3D {
	return geom.Pt(math.NaN(), math.NaN(), math.NaN())
}

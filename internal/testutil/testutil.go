// Package testutil provides shared test fixtures: in-memory floors,
// barriers, and curves that satisfy the exposure host interfaces.
//
// This package centralises common test helpers to reduce code duplication
// across test files.
package testutil

import (
	"sync/atomic"
	"testing"

	"github.com/banshee-data/edge-sentinel/internal/geom"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Floor is an in-memory floor element.
type Floor struct {
	FloorID   string
	Volume    geom.BoundingVolume
	HasVolume bool
	Curves    []geom.Curve
	Err       error
}

func (f *Floor) ID() string { return f.FloorID }

func (f *Floor) BoundingVolume() (geom.BoundingVolume, bool) {
	return f.Volume, f.HasVolume
}

func (f *Floor) BoundaryLoops() ([]geom.Curve, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Curves, nil
}

// Barrier is an in-memory barrier element.
type Barrier struct {
	BarrierID string
	Volume    geom.BoundingVolume
	HasVolume bool
}

func (b *Barrier) ID() string { return b.BarrierID }

func (b *Barrier) BoundingVolume() (geom.BoundingVolume, bool) {
	return b.Volume, b.HasVolume
}

// RectFloor returns a w x d floor at elevation z with its corner at (x, y).
// Its four edges run counter-clockwise starting along +X.
func RectFloor(id string, x, y, w, d, z float64) *Floor {
	c := []geom.Point3D{
		geom.Pt(x, y, z),
		geom.Pt(x+w, y, z),
		geom.Pt(x+w, y+d, z),
		geom.Pt(x, y+d, z),
	}
	curves := make([]geom.Curve, 4)
	for i := range c {
		curves[i] = geom.NewLine(c[i], c[(i+1)%4])
	}
	return &Floor{
		FloorID:   id,
		Volume:    geom.NewBoundingVolume(c[0], c[2]),
		HasVolume: true,
		Curves:    curves,
	}
}

// LineFloor returns a floor at elevation z whose only edge runs along +X
// from the origin for length metres.
func LineFloor(id string, length, z float64) *Floor {
	a, b := geom.Pt(0, 0, z), geom.Pt(length, 0, z)
	return &Floor{
		FloorID:   id,
		Volume:    geom.NewBoundingVolume(a, b),
		HasVolume: true,
		Curves:    []geom.Curve{geom.NewLine(a, b)},
	}
}

// BoxBarrier returns a barrier spanning min..max.
func BoxBarrier(id string, min, max geom.Point3D) *Barrier {
	return &Barrier{BarrierID: id, Volume: geom.NewBoundingVolume(min, max), HasVolume: true}
}

// WallAlongX returns a 0.2 m thick, 1.1 m high barrier that runs along the
// X axis at y from x0 to x1, starting at elevation z.
func WallAlongX(id string, x0, x1, y, z float64) *Barrier {
	return BoxBarrier(id, geom.Pt(x0, y-0.1, z), geom.Pt(x1, y+0.1, z+1.1))
}

// CountingCurve wraps a curve and counts Length calls.
type CountingCurve struct {
	geom.Curve
	calls atomic.Int64
}

// NewCountingCurve wraps c.
func NewCountingCurve(c geom.Curve) *CountingCurve {
	return &CountingCurve{Curve: c}
}

func (c *CountingCurve) Length() (float64, error) {
	c.calls.Add(1)
	return c.Curve.Length()
}

// Calls returns the number of Length calls so far.
func (c *CountingCurve) Calls() int { return int(c.calls.Load()) }

// BrokenCurve fails every operation except EvaluateNormalized(0.5),
// which returns Mid when MidOK is set.
type BrokenCurve struct {
	Err   error
	Mid   geom.Point3D
	MidOK bool
}

func (c BrokenCurve) Length() (float64, error) { return 0, c.Err }
func (c BrokenCurve) StartParameter() float64  { return 0 }
func (c BrokenCurve) EndParameter() float64    { return 0 }

func (c BrokenCurve) Evaluate(float64) (geom.Point3D, error) {
	return geom.Point3D{}, c.Err
}

func (c BrokenCurve) EvaluateNormalized(t float64) (geom.Point3D, error) {
	if c.MidOK && t == 0.5 {
		return c.Mid, nil
	}
	return geom.Point3D{}, c.Err
}

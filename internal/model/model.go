// Package model adapts a GeoJSON building model into the floor and barrier
// elements the exposure classifier consumes.
//
// Each feature carries a category in its properties. Floors are Polygon or
// MultiPolygon slabs; every ring becomes a boundary loop of straight edges
// at the slab top. Barriers (walls, railings, curtain-wall panels) are
// LineString, MultiLineString, Polygon or MultiPolygon footprints extruded
// from their elevation by their height. All lengths are converted to metres.
package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/banshee-data/edge-sentinel/internal/exposure"
	"github.com/banshee-data/edge-sentinel/internal/geom"
)

var (
	// ErrUnknownCategory is returned for features whose category is not
	// one of the recognised element categories.
	ErrUnknownCategory = errors.New("unknown element category")
	// ErrUnsupportedGeometry is returned when a feature's geometry type
	// cannot represent its category.
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
)

// Category is the element category of a feature.
type Category string

const (
	CategoryFloor        Category = "floor"
	CategoryWall         Category = "wall"
	CategoryRailing      Category = "railing"
	CategoryCurtainPanel Category = "curtain_panel"
)

// BarrierCategories are the categories queried for protective elements.
var BarrierCategories = []Category{CategoryWall, CategoryRailing, CategoryCurtainPanel}

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryFloor, CategoryWall, CategoryRailing, CategoryCurtainPanel:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// IsBarrier reports whether c is a barrier category.
func (c Category) IsBarrier() bool {
	for _, b := range BarrierCategories {
		if c == b {
			return true
		}
	}
	return false
}

// Floor is a slab element. Its footprint is stored in metres.
type Floor struct {
	id        string
	Elevation float64
	Thickness float64
	Footprint orb.MultiPolygon
}

// ID returns the element identifier.
func (f *Floor) ID() string { return f.id }

// Top is the elevation of the slab's upper face, where edges are sampled.
func (f *Floor) Top() float64 { return f.Elevation + f.Thickness }

// BoundingVolume returns the footprint bound extruded from Elevation to
// Top. ok is false for an empty footprint.
func (f *Floor) BoundingVolume() (geom.BoundingVolume, bool) {
	if !hasPoints(f.Footprint) {
		return geom.BoundingVolume{}, false
	}
	b := f.Footprint.Bound()
	return geom.NewBoundingVolume(
		geom.Pt(b.Min.X(), b.Min.Y(), f.Elevation),
		geom.Pt(b.Max.X(), b.Max.Y(), f.Top()),
	), true
}

// BoundaryLoops returns one straight edge per ring segment at slab top,
// outer rings and holes alike, in ring order. Zero-length segments are
// dropped and open rings are closed.
func (f *Floor) BoundaryLoops() ([]geom.Curve, error) {
	z := f.Top()
	var curves []geom.Curve
	for _, poly := range f.Footprint {
		for _, ring := range poly {
			curves = append(curves, ringEdges(ring, z)...)
		}
	}
	return curves, nil
}

func hasPoints(mp orb.MultiPolygon) bool {
	for _, poly := range mp {
		for _, ring := range poly {
			if len(ring) > 0 {
				return true
			}
		}
	}
	return false
}

func ringEdges(ring orb.Ring, z float64) []geom.Curve {
	n := len(ring)
	if n < 2 {
		return nil
	}
	if !ring.Closed() {
		n++
	}
	out := make([]geom.Curve, 0, n-1)
	for i := 0; i+1 < n; i++ {
		a, b := ring[i], ring[(i+1)%len(ring)]
		if a.Equal(b) {
			continue
		}
		out = append(out, geom.NewLine(geom.Pt(a.X(), a.Y(), z), geom.Pt(b.X(), b.Y(), z)))
	}
	return out
}

// PlanArea returns the footprint area in square metres, holes excluded.
func (f *Floor) PlanArea() float64 {
	return math.Abs(planar.Area(f.Footprint))
}

// PlanPerimeter returns the total ring length in metres.
func (f *Floor) PlanPerimeter() float64 {
	return planar.Length(f.Footprint)
}

// Barrier is a vertical protective element.
type Barrier struct {
	id        string
	Category  Category
	Elevation float64
	Height    float64
	Thickness float64
	// Footprint is the plan bound of the element's geometry before the
	// thickness pad.
	Footprint orb.Bound
}

// ID returns the element identifier.
func (b *Barrier) ID() string { return b.id }

// BoundingVolume pads the plan footprint by half the thickness and
// extrudes it from Elevation by Height.
func (b *Barrier) BoundingVolume() (geom.BoundingVolume, bool) {
	pb := b.Footprint.Pad(b.Thickness / 2)
	bv := geom.NewBoundingVolume(
		geom.Pt(pb.Min.X(), pb.Min.Y(), b.Elevation),
		geom.Pt(pb.Max.X(), pb.Max.Y(), b.Elevation+b.Height),
	)
	return bv, bv.Valid()
}

// Document is a loaded building model.
type Document struct {
	// Units is the unit the source coordinates were expressed in.
	Units    string
	floors   []*Floor
	barriers []*Barrier
	byID     map[string]*Floor
	// Ignored counts features dropped for an unknown category or an
	// unsupported geometry.
	Ignored int
}

// Floors returns every floor element, in document order.
func (d *Document) Floors() []exposure.Floor {
	out := make([]exposure.Floor, len(d.floors))
	for i, f := range d.floors {
		out[i] = f
	}
	return out
}

// Barriers returns every wall, railing and curtain-wall panel, in
// document order.
func (d *Document) Barriers() []exposure.Barrier {
	out := make([]exposure.Barrier, len(d.barriers))
	for i, b := range d.barriers {
		out[i] = b
	}
	return out
}

// Floor looks up a floor by identifier.
func (d *Document) Floor(id string) (*Floor, bool) {
	f, ok := d.byID[id]
	return f, ok
}

// BarrierFootprints returns the padded plan bound of every barrier.
func (d *Document) BarrierFootprints() []orb.Bound {
	out := make([]orb.Bound, 0, len(d.barriers))
	for _, b := range d.barriers {
		out = append(out, b.Footprint.Pad(b.Thickness/2))
	}
	return out
}

// FloorFootprints returns every floor footprint keyed by identifier.
func (d *Document) FloorFootprints() map[string]orb.MultiPolygon {
	out := make(map[string]orb.MultiPolygon, len(d.floors))
	for _, f := range d.floors {
		out[f.id] = f.Footprint
	}
	return out
}

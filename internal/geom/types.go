package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point3D is a position in model space (metres).
type Point3D = r3.Vec

// Pt is shorthand for building a Point3D.
func Pt(x, y, z float64) Point3D {
	return Point3D{X: x, Y: y, Z: z}
}

// IsFinite reports whether every coordinate of p is a finite number.
func IsFinite(p Point3D) bool {
	return isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// BoundingVolume is an axis-aligned box with Min <= Max componentwise.
// Values are never mutated in place; Expand and Union return new boxes.
type BoundingVolume struct {
	Min Point3D
	Max Point3D
}

// NewBoundingVolume returns the box spanned by two corners in any order.
func NewBoundingVolume(a, b Point3D) BoundingVolume {
	return BoundingVolume{
		Min: Pt(math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)),
		Max: Pt(math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)),
	}
}

// Valid reports whether the box has finite corners with Min <= Max.
func (bv BoundingVolume) Valid() bool {
	if !IsFinite(bv.Min) || !IsFinite(bv.Max) {
		return false
	}
	return bv.Min.X <= bv.Max.X && bv.Min.Y <= bv.Max.Y && bv.Min.Z <= bv.Max.Z
}

// Expand offsets Min and Max outward by d on all three axes.
func (bv BoundingVolume) Expand(d float64) BoundingVolume {
	off := Pt(d, d, d)
	return BoundingVolume{
		Min: r3.Sub(bv.Min, off),
		Max: r3.Add(bv.Max, off),
	}
}

// Contains reports whether p lies inside the box, boundaries included.
func (bv BoundingVolume) Contains(p Point3D) bool {
	return bv.Min.X <= p.X && p.X <= bv.Max.X &&
		bv.Min.Y <= p.Y && p.Y <= bv.Max.Y &&
		bv.Min.Z <= p.Z && p.Z <= bv.Max.Z
}

// Union returns the smallest box containing both bv and o.
func (bv BoundingVolume) Union(o BoundingVolume) BoundingVolume {
	return BoundingVolume{
		Min: Pt(math.Min(bv.Min.X, o.Min.X), math.Min(bv.Min.Y, o.Min.Y), math.Min(bv.Min.Z, o.Min.Z)),
		Max: Pt(math.Max(bv.Max.X, o.Max.X), math.Max(bv.Max.Y, o.Max.Y), math.Max(bv.Max.Z, o.Max.Z)),
	}
}

// Size returns the extent along each axis.
func (bv BoundingVolume) Size() Point3D {
	return r3.Sub(bv.Max, bv.Min)
}

// Center returns the centre of the box.
func (bv BoundingVolume) Center() Point3D {
	return r3.Scale(0.5, r3.Add(bv.Min, bv.Max))
}

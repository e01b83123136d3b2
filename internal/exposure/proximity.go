package exposure

import (
	"github.com/dhconnelly/rtreego"

	"github.com/banshee-data/edge-sentinel/internal/geom"
)

// Index answers whether a point lies inside the buffered volume of any
// barrier it was built from. Implementations must agree exactly; they
// differ only in cost.
type Index interface {
	IsCovered(p geom.Point3D) bool
	// Len returns the number of barrier volumes indexed.
	Len() int
}

// IsCovered reports whether p lies within bufferDistance of the bounding
// volume of any barrier, boundaries inclusive. Barriers without a usable
// volume are skipped.
func IsCovered(p geom.Point3D, barriers []Barrier, bufferDistance float64) bool {
	for _, b := range barriers {
		bv, ok := barrierVolume(b)
		if !ok {
			continue
		}
		if bv.Expand(bufferDistance).Contains(p) {
			return true
		}
	}
	return false
}

// NewIndex builds the index used by a classification pass: a linear scan
// for small barrier sets and an R-tree once len(barriers) reaches
// cfg.RTreeThreshold. A threshold of 0 always selects the R-tree.
func NewIndex(barriers []Barrier, cfg Config) Index {
	if len(barriers) >= cfg.RTreeThreshold {
		return NewRTreeIndex(barriers, cfg.BufferDistance)
	}
	return NewLinearIndex(barriers, cfg.BufferDistance)
}

func barrierVolume(b Barrier) (geom.BoundingVolume, bool) {
	if b == nil {
		return geom.BoundingVolume{}, false
	}
	bv, ok := b.BoundingVolume()
	if !ok || !bv.Valid() {
		return geom.BoundingVolume{}, false
	}
	return bv, true
}

func expandedVolumes(barriers []Barrier, bufferDistance float64) []geom.BoundingVolume {
	vols := make([]geom.BoundingVolume, 0, len(barriers))
	for _, b := range barriers {
		bv, ok := barrierVolume(b)
		if !ok {
			continue
		}
		vols = append(vols, bv.Expand(bufferDistance))
	}
	return vols
}

// LinearIndex scans every expanded volume and stops at the first hit.
type LinearIndex struct {
	volumes []geom.BoundingVolume
}

// NewLinearIndex expands each barrier volume once up front.
func NewLinearIndex(barriers []Barrier, bufferDistance float64) *LinearIndex {
	return &LinearIndex{volumes: expandedVolumes(barriers, bufferDistance)}
}

// IsCovered implements Index.
func (li *LinearIndex) IsCovered(p geom.Point3D) bool {
	for _, v := range li.volumes {
		if v.Contains(p) {
			return true
		}
	}
	return false
}

// Len implements Index.
func (li *LinearIndex) Len() int { return len(li.volumes) }

// Volumes returns the expanded volumes in barrier order.
func (li *LinearIndex) Volumes() []geom.BoundingVolume {
	out := make([]geom.BoundingVolume, len(li.volumes))
	copy(out, li.volumes)
	return out
}

// rtreePad widens stored rectangles and query boxes so that rtreego's
// strict overlap test still returns volumes the point merely touches.
// Candidates are re-checked with the inclusive Contains.
const rtreePad = 1e-6

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
)

type indexedVolume struct {
	vol  geom.BoundingVolume
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (iv *indexedVolume) Bounds() rtreego.Rect { return iv.rect }

// RTreeIndex stores expanded barrier volumes in a 3D R-tree.
type RTreeIndex struct {
	tree *rtreego.Rtree
	n    int
}

// NewRTreeIndex builds an R-tree over the expanded barrier volumes.
func NewRTreeIndex(barriers []Barrier, bufferDistance float64) *RTreeIndex {
	tree := rtreego.NewTree(3, rtreeMinChildren, rtreeMaxChildren)
	n := 0
	for _, v := range expandedVolumes(barriers, bufferDistance) {
		// Negative buffers can invert a thin box; such a volume covers nothing.
		if !v.Valid() {
			continue
		}
		rect, err := rtreego.NewRectFromPoints(
			rtreego.Point{v.Min.X - rtreePad, v.Min.Y - rtreePad, v.Min.Z - rtreePad},
			rtreego.Point{v.Max.X + rtreePad, v.Max.Y + rtreePad, v.Max.Z + rtreePad},
		)
		if err != nil {
			continue
		}
		tree.Insert(&indexedVolume{vol: v, rect: rect})
		n++
	}
	return &RTreeIndex{tree: tree, n: n}
}

// IsCovered implements Index.
func (ri *RTreeIndex) IsCovered(p geom.Point3D) bool {
	if ri.n == 0 || !geom.IsFinite(p) {
		return false
	}
	query := rtreego.Point{p.X, p.Y, p.Z}.ToRect(rtreePad)
	for _, s := range ri.tree.SearchIntersect(query) {
		if iv, ok := s.(*indexedVolume); ok && iv.vol.Contains(p) {
			return true
		}
	}
	return false
}

// Len implements Index.
func (ri *RTreeIndex) Len() int { return ri.n }

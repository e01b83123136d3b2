package exposure

import (
	"fmt"

	"github.com/banshee-data/edge-sentinel/internal/geom"
)

// HasBoundingVolume is implemented by host elements that can report their
// spatial extent. ok is false when the host has no box for the element.
type HasBoundingVolume interface {
	BoundingVolume() (bv geom.BoundingVolume, ok bool)
}

// HasBoundaryLoops is implemented by host surfaces that can return the
// curves of their top-face perimeter(s), in loop order.
type HasBoundaryLoops interface {
	BoundaryLoops() ([]geom.Curve, error)
}

// Floor is a horizontal slab candidate.
type Floor interface {
	ID() string
	HasBoundingVolume
	HasBoundaryLoops
}

// Barrier is a vertical protective element (wall, railing, panel).
type Barrier interface {
	ID() string
	HasBoundingVolume
}

// Verdict is the classification of one exposed floor.
type Verdict struct {
	FloorID string
	Exposed bool
	// UncoveredRatio is the uncovered ratio in [0, 1] of the triggering
	// edge (AggregateFirst) or of the worst edge (AggregateWorst).
	UncoveredRatio float64
	// EdgeIndex is the position of that edge in BoundaryLoops order.
	EdgeIndex int
	Edge      EdgeCoverageResult
	// EdgesEvaluated counts edges sampled before the verdict was reached.
	EdgesEvaluated int
	Elevation      float64
}

// UncoveredPercent returns UncoveredRatio scaled to 0-100.
func (v Verdict) UncoveredPercent() float64 {
	return v.UncoveredRatio * 100
}

// SkipReason explains why a floor produced no verdict.
type SkipReason string

const (
	SkipNoVolume        SkipReason = "no_bounding_volume"
	SkipBelowHeight     SkipReason = "below_min_height"
	SkipNoEdges         SkipReason = "no_edges"
	SkipExtractionError SkipReason = "extraction_error"
	SkipCovered         SkipReason = "covered"
)

// FloorError wraps a host failure raised while classifying one floor.
type FloorError struct {
	FloorID string
	Err     error
}

func (e *FloorError) Error() string {
	return fmt.Sprintf("floor %s: %v", e.FloorID, e.Err)
}

func (e *FloorError) Unwrap() error { return e.Err }

package exposure

import (
	"fmt"
	"math"
)

// Defaults for Config.
const (
	DefaultMinFloorHeight         = 6.0
	DefaultMaxSelection           = 50
	DefaultBufferDistance         = 0.3
	DefaultSegmentLength          = 0.3
	DefaultMinCoverPercentage     = 0.3
	DefaultMaxUncoveredPercentage = 0.7
	DefaultRTreeThreshold         = 64
)

// Aggregation selects how per-edge coverage is folded into a floor verdict.
type Aggregation int

const (
	// AggregateFirst stops at the first edge over the threshold and records
	// that edge's uncovered ratio.
	AggregateFirst Aggregation = iota
	// AggregateWorst evaluates every edge and records the worst one.
	AggregateWorst
)

// String implements fmt.Stringer.
func (a Aggregation) String() string {
	switch a {
	case AggregateFirst:
		return "first"
	case AggregateWorst:
		return "worst"
	default:
		return fmt.Sprintf("aggregation(%d)", int(a))
	}
}

// ParseAggregation parses "first" or "worst".
func ParseAggregation(s string) (Aggregation, error) {
	switch s {
	case "", "first":
		return AggregateFirst, nil
	case "worst":
		return AggregateWorst, nil
	}
	return AggregateFirst, fmt.Errorf("unknown aggregation %q (want first or worst)", s)
}

// Config is passed by value into every entry point and never mutated.
type Config struct {
	// MinFloorHeight excludes floors whose bounding volume starts below it.
	MinFloorHeight float64
	// MaxSelection caps the number of exposed floors placed in the active selection.
	MaxSelection int
	// BufferDistance expands every barrier volume on all axes.
	BufferDistance float64
	// SegmentLength is the target spacing between edge samples.
	SegmentLength float64
	// MaxUncoveredPercentage is the uncovered ratio an edge must exceed to
	// mark its floor exposed.
	MaxUncoveredPercentage float64
	// MinCoverPercentage is carried for configuration compatibility only.
	// Classification never reads it.
	MinCoverPercentage float64

	Aggregation Aggregation
	// Workers > 1 evaluates floors concurrently.
	Workers int
	// RTreeThreshold is the barrier count at which NewIndex switches from a
	// linear scan to an R-tree.
	RTreeThreshold int
}

// DefaultConfig returns the reference parameters.
func DefaultConfig() Config {
	return Config{
		MinFloorHeight:         DefaultMinFloorHeight,
		MaxSelection:           DefaultMaxSelection,
		BufferDistance:         DefaultBufferDistance,
		SegmentLength:          DefaultSegmentLength,
		MaxUncoveredPercentage: DefaultMaxUncoveredPercentage,
		MinCoverPercentage:     DefaultMinCoverPercentage,
		Aggregation:            AggregateFirst,
		Workers:                1,
		RTreeThreshold:         DefaultRTreeThreshold,
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if math.IsNaN(c.MinFloorHeight) || math.IsInf(c.MinFloorHeight, 0) {
		return fmt.Errorf("min_floor_height must be finite, got %f", c.MinFloorHeight)
	}
	if c.MaxSelection < 0 {
		return fmt.Errorf("max_selection must be non-negative, got %d", c.MaxSelection)
	}
	if !(c.BufferDistance >= 0) || math.IsInf(c.BufferDistance, 0) {
		return fmt.Errorf("buffer_distance must be a finite non-negative length, got %f", c.BufferDistance)
	}
	if !(c.SegmentLength > 0) || math.IsInf(c.SegmentLength, 0) {
		return fmt.Errorf("segment_length must be positive, got %f", c.SegmentLength)
	}
	if !(c.MaxUncoveredPercentage >= 0 && c.MaxUncoveredPercentage <= 1) {
		return fmt.Errorf("max_uncovered_percentage must be between 0 and 1, got %f", c.MaxUncoveredPercentage)
	}
	if !(c.MinCoverPercentage >= 0 && c.MinCoverPercentage <= 1) {
		return fmt.Errorf("min_cover_percentage must be between 0 and 1, got %f", c.MinCoverPercentage)
	}
	if c.Aggregation != AggregateFirst && c.Aggregation != AggregateWorst {
		return fmt.Errorf("invalid aggregation %v", c.Aggregation)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.RTreeThreshold < 0 {
		return fmt.Errorf("rtree_threshold must be non-negative, got %d", c.RTreeThreshold)
	}
	return nil
}

package exposure

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of per-edge uncovered ratios in a pass.
type Summary struct {
	Edges             int
	FullyCoveredEdges int
	MeanUncovered     float64
	StdDevUncovered   float64
	MedianUncovered   float64
	MaxUncovered      float64
}

// Summarize computes coverage statistics over d.EdgeUncovered. With
// AggregateFirst only edges evaluated before each early exit are counted.
func Summarize(d Diagnostics) Summary {
	if len(d.EdgeUncovered) == 0 {
		return Summary{}
	}
	xs := make([]float64, len(d.EdgeUncovered))
	copy(xs, d.EdgeUncovered)
	sort.Float64s(xs)

	s := Summary{Edges: len(xs)}
	s.MeanUncovered, s.StdDevUncovered = stat.MeanStdDev(xs, nil)
	if len(xs) < 2 {
		s.StdDevUncovered = 0
	}
	s.MedianUncovered = stat.Quantile(0.5, stat.Empirical, xs, nil)
	s.MaxUncovered = floats.Max(xs)
	for _, x := range xs {
		if x == 0 {
			s.FullyCoveredEdges++
		}
	}
	return s
}

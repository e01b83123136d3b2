package exposure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/edge-sentinel/internal/geom"
	"github.com/banshee-data/edge-sentinel/internal/testutil"
)

func TestEdgeCoverageResult_Ratios(t *testing.T) {
	tests := []struct {
		name          string
		r             EdgeCoverageResult
		wantCoverage  float64
		wantUncovered float64
	}{
		{"none covered", EdgeCoverageResult{Samples: 13}, 0, 1},
		{"all covered", EdgeCoverageResult{Samples: 13, Covered: 13}, 1, 0},
		{"half", EdgeCoverageResult{Samples: 4, Covered: 2}, 0.5, 0.5},
		{"no samples guarded", EdgeCoverageResult{}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCoverage, tt.r.CoverageRatio())
			assert.Equal(t, tt.wantUncovered, tt.r.UncoveredRatio())
		})
	}
}

func TestEvaluateEdge(t *testing.T) {
	edge := geom.NewLine(geom.Pt(0, 0, 6), geom.Pt(4, 0, 6))
	cfg := DefaultConfig()

	none := EvaluateEdge(edge, NewLinearIndex(nil, cfg.BufferDistance), cfg)
	assert.Equal(t, EdgeCoverageResult{Samples: 13}, none)

	half := testutil.WallAlongX("half", 0, 1.7, 0, 6)
	r := EvaluateEdge(edge, NewLinearIndex(barriersOf(half), cfg.BufferDistance), cfg)
	// samples at 4i/13; covered while x <= 2.0
	assert.Equal(t, 13, r.Samples)
	assert.Equal(t, 7, r.Covered)
}

func TestTraceFloor(t *testing.T) {
	f := testutil.RectFloor("F", 0, 0, 3, 3, 6)
	cfg := DefaultConfig()
	idx := NewLinearIndex(barriersOf(testutil.WallAlongX("s", 0, 3, 0, 6)), cfg.BufferDistance)

	pts, err := TraceFloor(f, idx, cfg)
	require.NoError(t, err)
	require.Len(t, pts, 40)
	for _, sp := range pts {
		if sp.Edge == 0 && !sp.Covered {
			t.Errorf("sample %v on guarded edge reported uncovered", sp.Point)
		}
		if sp.Edge == 2 && sp.Covered {
			t.Errorf("sample %v on open edge reported covered", sp.Point)
		}
	}

	f.Err = errors.New("boom")
	_, err = TraceFloor(f, idx, cfg)
	var fe *FloorError
	assert.ErrorAs(t, err, &fe)
}

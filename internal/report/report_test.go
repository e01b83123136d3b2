package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/edge-sentinel/internal/exposure"
	"github.com/banshee-data/edge-sentinel/internal/geom"
)

type recorder struct {
	highlighted  []string
	override     Override
	selected     []string
	calls        int
	highlightErr error
}

func (r *recorder) Highlight(_ context.Context, ids []string, o Override) error {
	r.calls++
	if r.highlightErr != nil {
		return r.highlightErr
	}
	r.highlighted = append([]string(nil), ids...)
	r.override = o
	return nil
}

func (r *recorder) Select(_ context.Context, ids []string) error {
	r.calls++
	r.selected = append([]string(nil), ids...)
	return nil
}

func exposedResult(n int) exposure.Result {
	res := exposure.Result{Diagnostics: exposure.Diagnostics{FloorsChecked: n}}
	for i := 0; i < n; i++ {
		res.Verdicts = append(res.Verdicts, exposure.Verdict{
			FloorID:        fmt.Sprintf("F%02d", i),
			Exposed:        true,
			UncoveredRatio: 1,
			Elevation:      6 + float64(i)*3,
		})
	}
	return res
}

// Sixty exposed floors: all are highlighted, only the first fifty selected.
func TestDispatch_TruncatesSelection(t *testing.T) {
	r := New("tower", exposedResult(60), nil)
	rec := &recorder{}

	selected, err := Dispatch(context.Background(), r, rec, rec, DefaultOverride(), 50)
	require.NoError(t, err)

	assert.Len(t, rec.highlighted, 60)
	require.Len(t, selected, 50)
	assert.Equal(t, "F00", selected[0])
	assert.Equal(t, "F49", selected[49])
	assert.Equal(t, selected, rec.selected)
	assert.Equal(t, 50, r.SelectedCount)
	assert.True(t, r.Entries[49].Selected)
	assert.False(t, r.Entries[50].Selected)
	assert.Equal(t, selected, r.SelectedIDs())
}

func TestDispatch_NoExposedFloors(t *testing.T) {
	r := New("tower", exposure.Result{}, nil)
	rec := &recorder{}
	selected, err := Dispatch(context.Background(), r, rec, rec, DefaultOverride(), 50)
	require.NoError(t, err)
	assert.Empty(t, selected)
	assert.Equal(t, 0, rec.calls)
}

func TestDispatch_HighlightFailureSkipsSelection(t *testing.T) {
	r := New("tower", exposedResult(3), nil)
	rec := &recorder{highlightErr: errors.New("transaction rolled back")}
	_, err := Dispatch(context.Background(), r, rec, rec, DefaultOverride(), 50)
	require.Error(t, err)
	assert.Nil(t, rec.selected)
	assert.Equal(t, 0, r.SelectedCount)
}

func TestDefaultOverride(t *testing.T) {
	o := DefaultOverride()
	assert.Equal(t, uint8(255), o.Color.R)
	assert.Equal(t, uint8(50), o.Color.G)
	assert.Equal(t, uint8(50), o.Color.B)
	assert.Equal(t, 60, o.Transparency)
	assert.Equal(t, FillSolid, o.FillPattern)
}

func TestSelect(t *testing.T) {
	ids := []string{"a", "b", "c"}
	assert.Equal(t, []string{"a", "b"}, Select(ids, 2))
	assert.Equal(t, ids, Select(ids, 10))
	assert.Nil(t, Select(ids, 0))

	out := Select(ids, 3)
	out[0] = "z"
	assert.Equal(t, "a", ids[0], "Select must not alias its input")
}

func TestNew_Areas(t *testing.T) {
	areas := func(id string) (float64, bool) {
		if id == "F01" {
			return 120.5, true
		}
		return 0, false
	}
	r := New("tower", exposedResult(2), areas)
	assert.Equal(t, 0.0, r.Entries[0].PlanArea)
	assert.Equal(t, 120.5, r.Entries[1].PlanArea)
	assert.Equal(t, 100.0, r.Entries[0].UncoveredPercent)
}

func TestWriteSummary(t *testing.T) {
	res := exposedResult(2)
	res.Diagnostics.FloorsChecked = 5
	res.Diagnostics.Skipped = map[exposure.SkipReason]int{exposure.SkipBelowHeight: 2, exposure.SkipCovered: 1}
	res.Diagnostics.EdgeUncovered = []float64{0, 1, 1}
	res.Diagnostics.Errors = []error{&exposure.FloorError{FloorID: "X", Err: errors.New("boom")}}
	res.Duration = 1500 * time.Millisecond

	r := New("tower", res, nil)
	rec := &recorder{}
	_, err := Dispatch(context.Background(), r, rec, rec, DefaultOverride(), 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, r))
	out := buf.String()

	for _, want := range []string{
		"F00", "100.00%",
		"Total floors checked: 5",
		"Exposed floors detected: 2",
		"Selected 1 out of 2",
		"Skipped: below_min_height=2 covered=1",
		"Edges evaluated: 3",
		"Error: floor X: boom",
		"Runtime: 1.500 seconds",
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteSummary_NoneExposed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, New("tower", exposure.Result{}, nil)))
	assert.Contains(t, buf.String(), "No exposed floors found")
	assert.NotContains(t, buf.String(), "FLOOR")
}

func TestWriteHTML(t *testing.T) {
	r := New("tower", exposedResult(3), nil)
	rec := &recorder{}
	_, err := Dispatch(context.Background(), r, rec, rec, DefaultOverride(), 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, r, []float64{0, 0.5, 1}, DefaultOverride()))
	out := buf.String()
	assert.True(t, strings.Contains(out, "<html"), "not an HTML page")
	assert.Contains(t, out, "F02")
	assert.Contains(t, out, "Edge coverage")
}

func TestEdgeHistogramBins(t *testing.T) {
	bar := edgeHistogram([]float64{0, 0.05, 0.95, 1, 1.2, -0.1})
	require.NotNil(t, bar)
	require.Len(t, bar.MultiSeries, 1)
}

func TestWritePlan(t *testing.T) {
	p := Plan{
		Title:     "L3",
		Footprint: orb.MultiPolygon{{{{0, 0}, {4, 0}, {4, 3}, {0, 3}, {0, 0}}}},
		Barriers:  []orb.Bound{{Min: orb.Point{0, -0.1}, Max: orb.Point{4, 0.1}}},
		Samples: []exposure.SamplePoint{
			{Point: geom.Pt(0, 0, 6), Covered: true},
			{Point: geom.Pt(4, 3, 6), Covered: false},
			{Point: geom.Pt(math.NaN(), math.NaN(), math.NaN())},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePlan(&buf, p, "png"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), "output is not a PNG")

	path := filepath.Join(t.TempDir(), "plan.png")
	require.NoError(t, WritePlanPNG(path, p))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestWritePlan_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlan(&buf, Plan{Title: "empty"}, "svg"))
	assert.Contains(t, buf.String(), "<svg")
}

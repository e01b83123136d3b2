// Package report turns a classification pass into operator output: the
// console summary, HTML and PNG charts, and the highlight and selection
// dispatch against a host.
package report

import (
	"time"

	"github.com/banshee-data/edge-sentinel/internal/exposure"
)

// Entry is one exposed floor.
type Entry struct {
	FloorID          string
	UncoveredPercent float64
	EdgeIndex        int
	Elevation        float64
	// PlanArea is the floor's plan area in square metres, 0 when unknown.
	PlanArea float64
	Selected bool
}

// Report is the ordered list of exposed floors of one pass.
type Report struct {
	ModelID       string
	Entries       []Entry
	FloorsChecked int
	Skipped       map[exposure.SkipReason]int
	Errors        []error
	Summary       exposure.Summary
	Duration      time.Duration
	SelectedCount int
}

// AreaFunc looks up a floor's plan area.
type AreaFunc func(floorID string) (float64, bool)

// New builds a report from a classifier result. areas may be nil.
func New(modelID string, res exposure.Result, areas AreaFunc) *Report {
	r := &Report{
		ModelID:       modelID,
		Entries:       make([]Entry, 0, len(res.Verdicts)),
		FloorsChecked: res.Diagnostics.FloorsChecked,
		Skipped:       res.Diagnostics.Skipped,
		Errors:        res.Diagnostics.Errors,
		Summary:       exposure.Summarize(res.Diagnostics),
		Duration:      res.Duration,
	}
	for _, v := range res.Verdicts {
		e := Entry{
			FloorID:          v.FloorID,
			UncoveredPercent: v.UncoveredPercent(),
			EdgeIndex:        v.EdgeIndex,
			Elevation:        v.Elevation,
		}
		if areas != nil {
			if a, ok := areas(v.FloorID); ok {
				e.PlanArea = a
			}
		}
		r.Entries = append(r.Entries, e)
	}
	return r
}

// ExposedIDs returns the exposed floor identifiers in report order.
func (r *Report) ExposedIDs() []string {
	ids := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		ids[i] = e.FloorID
	}
	return ids
}

// SelectedIDs returns the identifiers marked selected by Dispatch.
func (r *Report) SelectedIDs() []string {
	var ids []string
	for _, e := range r.Entries {
		if e.Selected {
			ids = append(ids, e.FloorID)
		}
	}
	return ids
}

package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/banshee-data/edge-sentinel/internal/exposure"
)

// WriteSummary prints the console summary of r.
func WriteSummary(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(r.Entries) > 0 {
		fmt.Fprintln(tw, "FLOOR\tUNCOVERED\tEDGE\tELEVATION\tAREA\tSELECTED")
		for _, e := range r.Entries {
			area := "-"
			if e.PlanArea > 0 {
				area = fmt.Sprintf("%.1f m²", e.PlanArea)
			}
			fmt.Fprintf(tw, "%s\t%.2f%%\t%d\t%.2f m\t%s\t%v\n",
				e.FloorID, e.UncoveredPercent, e.EdgeIndex, e.Elevation, area, e.Selected)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total floors checked: %d\n", r.FloorsChecked)
	fmt.Fprintf(w, "Exposed floors detected: %d\n", len(r.Entries))
	if len(r.Entries) > 0 {
		fmt.Fprintf(w, "Selected %d out of %d\n", r.SelectedCount, len(r.Entries))
	} else {
		fmt.Fprintln(w, "No exposed floors found")
	}

	if len(r.Skipped) > 0 {
		reasons := make([]exposure.SkipReason, 0, len(r.Skipped))
		for k := range r.Skipped {
			reasons = append(reasons, k)
		}
		sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
		fmt.Fprint(w, "Skipped:")
		for _, k := range reasons {
			fmt.Fprintf(w, " %s=%d", k, r.Skipped[k])
		}
		fmt.Fprintln(w)
	}
	if s := r.Summary; s.Edges > 0 {
		fmt.Fprintf(w, "Edges evaluated: %d (fully covered %d, mean uncovered %.1f%%, median %.1f%%, max %.1f%%)\n",
			s.Edges, s.FullyCoveredEdges, s.MeanUncovered*100, s.MedianUncovered*100, s.MaxUncovered*100)
	}
	for _, err := range r.Errors {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	_, err := fmt.Fprintf(w, "Runtime: %.3f seconds\n", r.Duration.Seconds())
	return err
}

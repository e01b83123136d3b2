package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTML renders a bar chart of the uncovered percentage of every
// exposed floor, with selected floors drawn in the override colour and
// the rest in grey, followed by a histogram of per-edge uncovered ratios.
func WriteHTML(w io.Writer, r *Report, edgeUncovered []float64, o Override) error {
	x := make([]string, len(r.Entries))
	y := make([]opts.BarData, len(r.Entries))
	hl := fmt.Sprintf("rgba(%d,%d,%d,%.2f)", o.Color.R, o.Color.G, o.Color.B, 1-float64(o.Transparency)/100)
	for i, e := range r.Entries {
		x[i] = e.FloorID
		c := "#9e9e9e"
		if e.Selected {
			c = hl
		}
		y[i] = opts.BarData{
			Name:      e.FloorID,
			Value:     math.Round(e.UncoveredPercent*100) / 100,
			ItemStyle: &opts.ItemStyle{Color: c},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Exposed floors", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Exposed floors: %s", r.ModelID),
			Subtitle: fmt.Sprintf("checked=%d exposed=%d selected=%d", r.FloorsChecked, len(r.Entries), r.SelectedCount),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Floor", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Uncovered (%)", Min: 0, Max: 100}),
	)
	bar.SetXAxis(x).
		AddSeries("uncovered", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.PageTitle = "Edge exposure report"
	page.AddCharts(bar)

	if len(edgeUncovered) > 0 {
		page.AddCharts(edgeHistogram(edgeUncovered))
	}
	return page.Render(w)
}

// edgeHistogram buckets per-edge uncovered ratios into ten bins.
func edgeHistogram(ratios []float64) *charts.Bar {
	const bins = 10
	counts := make([]int, bins)
	for _, v := range ratios {
		b := int(v * bins)
		if b >= bins {
			b = bins - 1
		}
		if b < 0 {
			b = 0
		}
		counts[b]++
	}
	x := make([]string, bins)
	y := make([]opts.BarData, bins)
	for i := range counts {
		x[i] = fmt.Sprintf("%d-%d%%", i*100/bins, (i+1)*100/bins)
		y[i] = opts.BarData{Value: counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Edge coverage", Subtitle: fmt.Sprintf("edges=%d", len(ratios))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Uncovered"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Edges"}),
	)
	bar.SetXAxis(x).AddSeries("edges", y)
	return bar
}

package exposure

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	floorsCheckedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_sentinel_floors_checked_total",
		Help: "Floors examined by the exposure classifier",
	})

	floorsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edge_sentinel_floors_skipped_total",
		Help: "Floors that produced no exposed verdict, by reason",
	}, []string{"reason"})

	floorsExposedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_sentinel_floors_exposed_total",
		Help: "Floors classified as exposed",
	})

	edgesEvaluatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_sentinel_edges_evaluated_total",
		Help: "Boundary curves sampled and tested for coverage",
	})

	samplesTestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_sentinel_samples_tested_total",
		Help: "Edge sample points tested against the barrier index",
	})

	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "edge_sentinel_pass_duration_seconds",
		Help:    "Wall time of one classification pass",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	})
)

func recordPass(d *Diagnostics, elapsed time.Duration) {
	floorsCheckedTotal.Add(float64(d.FloorsChecked))
	floorsExposedTotal.Add(float64(d.FloorsExposed))
	edgesEvaluatedTotal.Add(float64(d.EdgesEvaluated))
	samplesTestedTotal.Add(float64(d.SamplesTested))
	for reason, n := range d.Skipped {
		floorsSkippedTotal.WithLabelValues(string(reason)).Add(float64(n))
	}
	passDuration.Observe(elapsed.Seconds())
}

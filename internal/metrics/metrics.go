package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the
// telemetry pipeline.
type Metrics struct {
	SnapshotReloads  *prometheus.CounterVec // labels: outcome={success,error}
	SnapshotAge      prometheus.Gauge
	ReloadDuration   prometheus.Histogram
	ViewRecomputes   *prometheus.CounterVec // labels: view
	ExportsGenerated *prometheus.CounterVec // labels: mode={arrival,delay}
}

// New creates the pipeline metrics on the given registerer. Pass a
// fresh registry in tests to avoid duplicate registration panics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SnapshotReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netpulse",
			Name:      "snapshot_reloads_total",
			Help:      "Source table reloads by outcome.",
		}, []string{"outcome"}),
		SnapshotAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "netpulse",
			Name:      "snapshot_age_seconds",
			Help:      "Age of the cached telemetry snapshot.",
		}),
		ReloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "netpulse",
			Name:      "snapshot_reload_duration_seconds",
			Help:      "Duration of a full load-and-normalize cycle for both tables.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		ViewRecomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netpulse",
			Name:      "view_recomputes_total",
			Help:      "Pipeline recomputations by view.",
		}, []string{"view"}),
		ExportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netpulse",
			Name:      "exports_generated_total",
			Help:      "Colored spreadsheet exports by mode.",
		}, []string{"mode"}),
	}

	reg.MustRegister(
		m.SnapshotReloads,
		m.SnapshotAge,
		m.ReloadDuration,
		m.ViewRecomputes,
		m.ExportsGenerated,
	)
	return m
}

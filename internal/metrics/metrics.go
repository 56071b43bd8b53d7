// Package metrics exposes Prometheus collectors for the reconciliation
// engine: pass outcomes by tier, per-source adapter failures, and the size
// and build time of the current topology.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	Passes          *prometheus.CounterVec
	AdapterFailures *prometheus.CounterVec
	Devices         prometheus.Gauge
	Links           prometheus.Gauge
	PassDuration    prometheus.Histogram
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lanmap",
			Name:      "passes_total",
			Help:      "Reconciliation passes by resulting tier.",
		}, []string{"tier"}),
		AdapterFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lanmap",
			Name:      "adapter_failures_total",
			Help:      "Source adapter fetch failures by source and kind.",
		}, []string{"source", "kind"}),
		Devices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lanmap",
			Name:      "topology_devices",
			Help:      "Device count in the most recent topology graph.",
		}),
		Links: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lanmap",
			Name:      "topology_links",
			Help:      "Link count in the most recent topology graph.",
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lanmap",
			Name:      "pass_duration_seconds",
			Help:      "Wall time of a full fetch-merge-build pass.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}

	reg.MustRegister(m.Passes, m.AdapterFailures, m.Devices, m.Links, m.PassDuration)
	return m
}

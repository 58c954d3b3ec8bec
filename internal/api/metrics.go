package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the instrumentation for the scan surface
type Metrics struct {
	ScansTotal   *prometheus.CounterVec
	ScanDuration prometheus.Histogram
	ScanFailures prometheus.Counter
}

// NewMetrics registers the API metrics on the given registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ScansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riskengine",
			Name:      "scans_total",
			Help:      "Completed scans by resulting risk level.",
		}, []string{"level"}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "riskengine",
			Name:      "scan_duration_seconds",
			Help:      "End-to-end scan latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		ScanFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "riskengine",
			Name:      "scan_failures_total",
			Help:      "Scans that could not produce an assessment.",
		}),
	}
}

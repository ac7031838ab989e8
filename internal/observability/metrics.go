package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	FetchRequests   *prometheus.CounterVec   // labels: source={usgs,tmd}, outcome={success,error}
	FetchDuration   *prometheus.HistogramVec // labels: source={usgs,tmd}
	RecordsIngested *prometheus.CounterVec   // labels: source={usgs,tmd}
	PollCycles      *prometheus.CounterVec   // labels: source={usgs,tmd}, outcome={success,error}
	RiskAssessments *prometheus.CounterVec   // labels: outcome={ok,degraded}
}

// NewMetrics creates and registers all collectors with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.RecordsIngested,
		m.PollCycles,
		m.RiskAssessments,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across test packages.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "fetch_requests_total",
			Help:      "Upstream API requests by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quakewatch",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"source"}),
		RecordsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "records_ingested_total",
			Help:      "New canonical earthquake records stored, by source.",
		}, []string{"source"}),
		PollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "poll_cycles_total",
			Help:      "Completed poll cycles by source and outcome.",
		}, []string{"source", "outcome"}),
		RiskAssessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakewatch",
			Name:      "risk_assessments_total",
			Help:      "Risk assessments served, by outcome.",
		}, []string{"outcome"}),
	}
}

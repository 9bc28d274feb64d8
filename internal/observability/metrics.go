package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "zyra"

// Metrics holds the Prometheus counters, histograms, and gauges for the incident service.
type Metrics struct {
	ReportsTotal     *prometheus.CounterVec // labels: outcome={ledger,local,rejected}
	SeverityScore    prometheus.Histogram
	ResourceRequests *prometheus.CounterVec // labels: type

	// Ledger metrics.
	LedgerCalls        *prometheus.CounterVec   // labels: method, outcome={success,error}
	LedgerCallDuration *prometheus.HistogramVec // labels: method
	LedgerFallbacks    *prometheus.CounterVec   // labels: operation
	LedgerEnabled      prometheus.Gauge
	DecodeFailures     prometheus.Counter

	EventsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

func newMetrics() *Metrics {
	return &Metrics{
		ReportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Incident reports by outcome.",
		}, []string{"outcome"}),
		SeverityScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "severity_score",
			Help:      "Severity score assigned to submitted incidents.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		ResourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_requests_total",
			Help:      "Resource requests raised by type.",
		}, []string{"type"}),
		LedgerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_calls_total",
			Help:      "Ledger canister calls by method and outcome.",
		}, []string{"method", "outcome"}),
		LedgerCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_call_duration_seconds",
			Help:      "Ledger canister call duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method"}),
		LedgerFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_fallbacks_total",
			Help:      "Operations served from the local store because the ledger was unavailable.",
		}, []string{"operation"}),
		LedgerEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_enabled",
			Help:      "1 when the ledger is configured, 0 when running local-only.",
		}),
		DecodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_failures_total",
			Help:      "Ledger responses whose top-level shape could not be recognized.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Incident events published to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ReportsTotal,
		m.SeverityScore,
		m.ResourceRequests,
		m.LedgerCalls,
		m.LedgerCallDuration,
		m.LedgerFallbacks,
		m.LedgerEnabled,
		m.DecodeFailures,
		m.EventsPublished,
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}

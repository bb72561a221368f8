// Package metrics exposes Prometheus collectors for ledger mutations,
// advisor calls, summary exports and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"finfamily/internal/ledger"
)

const namespace = "finfamily"

type Metrics struct {
	mutationsTotal    *prometheus.CounterVec
	mutationDuration  *prometheus.HistogramVec
	rollbacksTotal    *prometheus.CounterVec
	advisorRequests   *prometheus.CounterVec
	advisorDuration   prometheus.Histogram
	exportsTotal      *prometheus.CounterVec
	eventsPublished   *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	summaryCacheItems prometheus.Gauge
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer to
// expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		mutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_mutations_total",
				Help:      "Total number of ledger mutations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		mutationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_mutation_duration_seconds",
				Help:      "Ledger mutation duration including the backend round trip",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		rollbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_rollbacks_total",
				Help:      "Total number of optimistic updates reverted after a backend failure",
			},
			[]string{"operation"},
		),
		advisorRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "advisor_requests_total",
				Help:      "Total number of advisor requests by outcome",
			},
			[]string{"outcome"},
		),
		advisorDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "advisor_request_duration_seconds",
				Help:      "Advisor request duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
			},
		),
		exportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "summary_exports_total",
				Help:      "Total number of monthly summary exports",
			},
			[]string{"trigger", "status"},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_events_published_total",
				Help:      "Total number of ledger events handed to the broker",
			},
			[]string{"kind", "status"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		summaryCacheItems: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "summary_cache_items",
				Help:      "Current number of cached monthly summaries",
			},
		),
	}
}

// ObserveMutation implements ledger.Observer.
func (m *Metrics) ObserveMutation(op string, outcome ledger.Outcome, elapsed time.Duration) {
	m.mutationsTotal.WithLabelValues(op, string(outcome)).Inc()
	m.mutationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	if outcome == ledger.OutcomeRolledBack {
		m.rollbacksTotal.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) ObserveAdvisorCall(outcome string, elapsed time.Duration) {
	m.advisorRequests.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		m.advisorDuration.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) ObserveExport(trigger string, err error) {
	m.exportsTotal.WithLabelValues(trigger, status(err)).Inc()
}

func (m *Metrics) ObservePublish(kind string, err error) {
	m.eventsPublished.WithLabelValues(kind, status(err)).Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, route string, code int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) SetSummaryCacheItems(n int) {
	m.summaryCacheItems.Set(float64(n))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

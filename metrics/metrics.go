// Package metrics holds the Prometheus collectors of the service.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fxcross"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	LookupComplete = "complete"
	LookupRefetch  = "refetch"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SourceFetchesTotal      *prometheus.CounterVec
	SourceObservationsTotal prometheus.Counter

	CacheLookupsTotal        *prometheus.CounterVec
	NonTradingInferredTotal  prometheus.Counter
	CrossRatesGeneratedTotal prometheus.Counter
	GenerateDuration         prometheus.Histogram
}

// New creates the service collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		SourceFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_fetches_total",
				Help:      "Total number of upstream rate source fetches",
			},
			[]string{"outcome"},
		),

		SourceObservationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_observations_total",
				Help:      "Total number of observations received from the rate source",
			},
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Per-currency cache coverage lookups",
			},
			[]string{"result"},
		),

		NonTradingInferredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "non_trading_days_inferred_total",
				Help:      "Total number of inferred non-trading days submitted to the cache",
			},
		),

		CrossRatesGeneratedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cross_rates_generated_total",
				Help:      "Total number of generated cross rate rows",
			},
		),

		GenerateDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generate_duration_seconds",
				Help:      "Cross rate generation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

func (m *Metrics) ObserveFetch(err error, observations int) {
	if m == nil {
		return
	}

	if err != nil {
		m.SourceFetchesTotal.WithLabelValues(OutcomeFailure).Inc()

		return
	}

	m.SourceFetchesTotal.WithLabelValues(OutcomeSuccess).Inc()
	m.SourceObservationsTotal.Add(float64(observations))
}

func (m *Metrics) ObserveLookup(complete, refetch int) {
	if m == nil {
		return
	}

	m.CacheLookupsTotal.WithLabelValues(LookupComplete).Add(float64(complete))
	m.CacheLookupsTotal.WithLabelValues(LookupRefetch).Add(float64(refetch))
}

func (m *Metrics) ObserveNonTrading(days int) {
	if m == nil {
		return
	}

	m.NonTradingInferredTotal.Add(float64(days))
}

func (m *Metrics) ObserveGenerate(rows int, took time.Duration) {
	if m == nil {
		return
	}

	m.CrossRatesGeneratedTotal.Add(float64(rows))
	m.GenerateDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveHTTP(path, method string, status int, took time.Duration) {
	if m == nil {
		return
	}

	m.HTTPRequestDuration.WithLabelValues(path, method).Observe(took.Seconds())
	m.HTTPRequestsTotal.WithLabelValues(path, method, statusClass(status)).Inc()
}

// statusClass collapses a status code into its class (2xx, 4xx...)
func statusClass(status int) string {
	return string(rune('0'+status/100)) + "xx"
}

package metrics

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveFetch(nil, 10)
		m.ObserveLookup(1, 1)
		m.ObserveNonTrading(2)
		m.ObserveGenerate(5, time.Second)
		m.ObserveHTTP("/health", http.MethodGet, http.StatusOK, time.Millisecond)
	})
}

func TestMetrics_Observe(t *testing.T) {
	t.Parallel()

	t.Run("fetches", func(t *testing.T) {
		t.Parallel()

		m := New(prometheus.NewRegistry())

		m.ObserveFetch(nil, 3)
		m.ObserveFetch(nil, 2)
		m.ObserveFetch(errors.New("boom"), 0)

		assert.Equal(t, 2.0, testutil.ToFloat64(m.SourceFetchesTotal.WithLabelValues(OutcomeSuccess)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceFetchesTotal.WithLabelValues(OutcomeFailure)))
		assert.Equal(t, 5.0, testutil.ToFloat64(m.SourceObservationsTotal))
	})

	t.Run("lookups", func(t *testing.T) {
		t.Parallel()

		m := New(prometheus.NewRegistry())

		m.ObserveLookup(2, 1)

		assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues(LookupComplete)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues(LookupRefetch)))
	})

	t.Run("http status class", func(t *testing.T) {
		t.Parallel()

		m := New(prometheus.NewRegistry())

		m.ObserveHTTP("/v1/exchanges", http.MethodGet, http.StatusForbidden, time.Millisecond)

		assert.Equal(
			t,
			1.0,
			testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/v1/exchanges", http.MethodGet, "4xx")),
		)
	})
}

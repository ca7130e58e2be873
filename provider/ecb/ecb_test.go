package ecb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxcross/crossrate"
	"github.com/sig-0/fxcross/provider/currencies"
	"github.com/sig-0/fxcross/storage/types"
)

const sampleCSV = `KEY,FREQ,CURRENCY,CURRENCY_DENOM,EXR_TYPE,EXR_SUFFIX,TIME_PERIOD,OBS_VALUE
EXR.D.PLN.EUR.SP00.A,D,PLN,EUR,SP00,A,2020-11-13,4.4985
EXR.D.PLN.EUR.SP00.A,D,PLN,EUR,SP00,A,2020-11-16,4.4775
EXR.D.USD.EUR.SP00.A,D,USD,EUR,SP00,A,2020-11-13,1.1805
EXR.D.USD.EUR.SP00.A,D,USD,EUR,SP00,A,2020-11-16,1.1863
`

func day(t *testing.T, raw string) civil.Date {
	t.Helper()

	d, err := civil.ParseDate(raw)
	require.NoError(t, err)

	return d
}

func TestSource_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("no currencies", func(t *testing.T) {
		t.Parallel()

		var called atomic.Bool

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called.Store(true)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		observations, err := NewSource(srv.URL, time.Second*5).Fetch(
			context.Background(),
			nil,
			day(t, "2020-11-13"),
			day(t, "2020-11-16"),
		)

		require.NoError(t, err)
		assert.Empty(t, observations)
		assert.False(t, called.Load())
	})

	t.Run("batched request", func(t *testing.T) {
		t.Parallel()

		requests := make(chan *http.Request, 1)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests <- r

			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte(sampleCSV))
		}))
		defer srv.Close()

		observations, err := NewSource(srv.URL+"/", time.Second*5).Fetch(
			context.Background(),
			[]types.Currency{currencies.USD, currencies.PLN},
			day(t, "2020-11-13"),
			day(t, "2020-11-16"),
		)
		require.NoError(t, err)

		captured := <-requests

		assert.Equal(t, "/service/data/EXR/D.USD+PLN.EUR.SP00.A", captured.URL.Path)
		assert.Equal(t, "2020-11-13", captured.URL.Query().Get("startPeriod"))
		assert.Equal(t, "2020-11-16", captured.URL.Query().Get("endPeriod"))
		assert.Equal(t, "dataonly", captured.URL.Query().Get("detail"))
		assert.Equal(t, "text/csv", captured.Header.Get("Accept"))

		require.Len(t, observations, 4)

		assert.Equal(t, currencies.PLN, observations[1].Currency)
		assert.Equal(t, day(t, "2020-11-16"), observations[1].Date)
		assert.Equal(t, "4.4775", observations[1].Rate.String())
	})

	t.Run("no results", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "No results found", http.StatusNotFound)
		}))
		defer srv.Close()

		observations, err := NewSource(srv.URL, time.Second*5).Fetch(
			context.Background(),
			[]types.Currency{currencies.USD},
			day(t, "2020-12-25"),
			day(t, "2020-12-25"),
		)

		require.NoError(t, err)
		assert.Empty(t, observations)
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewSource(srv.URL, time.Second*5).Fetch(
			context.Background(),
			[]types.Currency{currencies.USD},
			day(t, "2020-11-13"),
			day(t, "2020-11-16"),
		)

		assert.ErrorIs(t, err, crossrate.ErrSourceUnavailable)
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewSource(url, time.Second*5).Fetch(
			context.Background(),
			[]types.Currency{currencies.USD},
			day(t, "2020-11-13"),
			day(t, "2020-11-16"),
		)

		assert.ErrorIs(t, err, crossrate.ErrSourceUnavailable)
	})

	t.Run("malformed value", func(t *testing.T) {
		t.Parallel()

		body := strings.Replace(sampleCSV, "1.1863", "n/a", 1)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		defer srv.Close()

		observations, err := NewSource(srv.URL, time.Second*5).Fetch(
			context.Background(),
			[]types.Currency{currencies.USD, currencies.PLN},
			day(t, "2020-11-13"),
			day(t, "2020-11-16"),
		)

		assert.ErrorIs(t, err, crossrate.ErrMalformedResponse)
		assert.Nil(t, observations)
	})
}

func TestSource_ParseObservations(t *testing.T) {
	t.Parallel()

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()

		observations, err := parseObservations(nil)

		require.NoError(t, err)
		assert.Empty(t, observations)
	})

	t.Run("unexpected header", func(t *testing.T) {
		t.Parallel()

		body := "KEY,CURRENCY,TIME_PERIOD,OBS_VALUE\nEXR,USD,2020-11-16,1.1863\n"

		observations, err := parseObservations([]byte(body))

		require.NoError(t, err)
		assert.Empty(t, observations)
	})

	t.Run("byte order mark", func(t *testing.T) {
		t.Parallel()

		observations, err := parseObservations([]byte("\ufeff" + sampleCSV))

		require.NoError(t, err)
		assert.Len(t, observations, 4)
	})

	t.Run("incomplete records skipped", func(t *testing.T) {
		t.Parallel()

		body := csvHeader + "\n" +
			"EXR.D.USD.EUR.SP00.A,D,,EUR,SP00,A,2020-11-13,1.1805\n" +
			"EXR.D.USD.EUR.SP00.A,D,USD,EUR,SP00,A,,1.1805\n" +
			"EXR.D.USD.EUR.SP00.A,D,USD,EUR,SP00,A,2020-11-13,\n" +
			"EXR.D.USD.EUR.SP00.A,D,USD\n" +
			"EXR.D.USD.EUR.SP00.A,D,USD,EUR,SP00,A,2020-11-16,1.1863\n"

		observations, err := parseObservations([]byte(body))
		require.NoError(t, err)

		require.Len(t, observations, 1)
		assert.Equal(t, day(t, "2020-11-16"), observations[0].Date)
	})

	t.Run("comma decimal separator", func(t *testing.T) {
		t.Parallel()

		body := csvHeader + "\n" +
			`EXR.D.JPY.EUR.SP00.A,D,JPY,EUR,SP00,A,2020-11-16,"123,45"` + "\n"

		observations, err := parseObservations([]byte(body))
		require.NoError(t, err)

		require.Len(t, observations, 1)
		assert.Equal(t, "123.45", observations[0].Rate.String())
	})

	t.Run("invalid period", func(t *testing.T) {
		t.Parallel()

		body := csvHeader + "\n" +
			"EXR.D.USD.EUR.SP00.A,D,USD,EUR,SP00,A,2020-W46,1.1863\n"

		_, err := parseObservations([]byte(body))

		assert.ErrorIs(t, err, crossrate.ErrMalformedResponse)
	})

	t.Run("non-positive value", func(t *testing.T) {
		t.Parallel()

		body := csvHeader + "\n" +
			"EXR.D.USD.EUR.SP00.A,D,USD,EUR,SP00,A,2020-11-16,0\n"

		_, err := parseObservations([]byte(body))

		assert.ErrorIs(t, err, crossrate.ErrMalformedResponse)
	})

	t.Run("broken quoting", func(t *testing.T) {
		t.Parallel()

		body := csvHeader + "\n" +
			`EXR.D.USD.EUR.SP00.A,D,USD,EUR,SP00,A,2020-11-16,"1.18` + "\n"

		_, err := parseObservations([]byte(body))

		assert.ErrorIs(t, err, crossrate.ErrMalformedResponse)
	})
}

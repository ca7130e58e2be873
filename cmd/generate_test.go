package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxcross/storage/types"
)

func TestGenerate_ParsePairs(t *testing.T) {
	t.Parallel()

	t.Run("valid pairs", func(t *testing.T) {
		t.Parallel()

		pairs, err := parsePairs("USD-PLN, JPY-CNY")
		require.NoError(t, err)

		assert.Equal(t, []types.Pair{
			{From: "USD", To: "PLN"},
			{From: "JPY", To: "CNY"},
		}, pairs)
	})

	t.Run("invalid pairs", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{
			"",
			"USD",
			"USD-PLN-JPY",
			"USDX-PLN",
			"U1D-PLN",
			"usd-PLN",
			"USD-P N",
			"USD-PLN,",
		} {
			_, err := parsePairs(raw)
			assert.ErrorIs(t, err, errInvalidPair, raw)
		}
	})
}

func TestGenerate_Exec(t *testing.T) {
	t.Parallel()

	body := strings.Join([]string{
		"KEY,FREQ,CURRENCY,CURRENCY_DENOM,EXR_TYPE,EXR_SUFFIX,TIME_PERIOD,OBS_VALUE",
		"EXR.D.PLN.EUR.SP00.A,D,PLN,EUR,SP00,A,2020-11-13,4.4935",
		"EXR.D.PLN.EUR.SP00.A,D,PLN,EUR,SP00,A,2020-11-16,4.4775",
		"EXR.D.USD.EUR.SP00.A,D,USD,EUR,SP00,A,2020-11-13,1.1831",
		"EXR.D.USD.EUR.SP00.A,D,USD,EUR,SP00,A,2020-11-16,1.1852",
	}, "\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")

		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	var out bytes.Buffer

	cmd := newGenerateCmd(&out)

	require.NoError(t, cmd.ParseAndRun(context.Background(), []string{
		"-pairs", "USD-PLN",
		"-start", "2020-11-16",
		"-end", "2020-11-16",
		"-source-url", srv.URL,
	}))

	var rows []map[string]any

	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 1)

	assert.Equal(t, "2020-11-16", rows[0]["date"])
	assert.Equal(t, "USD", rows[0]["currency_from"])
	assert.Equal(t, "PLN", rows[0]["currency_to"])
	assert.Equal(t, "3.7778", rows[0]["exchange_rate"])
}

package redis

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxcross/provider/currencies"
	"github.com/sig-0/fxcross/storage/types"
)

func TestStorage_Keys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fxcross:obs:PLN", observationsKey(currencies.PLN))
	assert.Equal(t, "fxcross:obs:PLN:dates", datesKey(currencies.PLN))
}

func TestStorage_Score(t *testing.T) {
	t.Parallel()

	var (
		friday = civil.Date{Year: 2020, Month: time.November, Day: 13}
		monday = civil.Date{Year: 2020, Month: time.November, Day: 16}
	)

	assert.Zero(t, score(epoch))
	assert.Equal(t, float64(3), score(monday)-score(friday))

	window := dateRange(friday, monday)

	assert.Equal(t, "18579", window.Min)
	assert.Equal(t, "18582", window.Max)
}

func TestStorage_ParseObservations(t *testing.T) {
	t.Parallel()

	t.Run("valid entries", func(t *testing.T) {
		t.Parallel()

		observations, err := parseObservations(
			currencies.USD,
			[]string{"2020-11-13", "2020-11-16"},
			[]any{"1.1832", nil},
		)
		require.NoError(t, err)
		require.Len(t, observations, 1)

		assert.Equal(t, currencies.USD, observations[0].Currency)
		assert.Equal(t, civil.Date{Year: 2020, Month: time.November, Day: 13}, observations[0].Date)
		assert.Equal(t, "1.1832", observations[0].Rate.String())
	})

	t.Run("invalid rate", func(t *testing.T) {
		t.Parallel()

		_, err := parseObservations(currencies.USD, []string{"2020-11-13"}, []any{"abc"})
		assert.ErrorIs(t, err, errInvalidEntry)
	})

	t.Run("invalid date", func(t *testing.T) {
		t.Parallel()

		_, err := parseObservations(currencies.USD, []string{"13/11/2020"}, []any{"1.1"})
		assert.ErrorIs(t, err, errInvalidEntry)
	})

	t.Run("length mismatch", func(t *testing.T) {
		t.Parallel()

		_, err := parseObservations(currencies.USD, []string{"2020-11-13"}, nil)
		assert.ErrorIs(t, err, errInvalidEntry)
	})
}

func TestStorage_ParseDates(t *testing.T) {
	t.Parallel()

	dates, err := parseDates([]string{"2020-12-25", "2021-01-01"})
	require.NoError(t, err)

	assert.Equal(t, []civil.Date{
		{Year: 2020, Month: time.December, Day: 25},
		{Year: 2021, Month: time.January, Day: 1},
	}, dates)

	_, err = parseDates([]string{"xmas"})
	assert.ErrorIs(t, err, errInvalidEntry)
}

func TestStorage_Unreachable(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() {
		_ = client.Close()
	})

	var (
		s   = NewStorage(client)
		ctx = context.Background()
		day = civil.Date{Year: 2020, Month: time.November, Day: 16}
	)

	_, err := s.CompleteObservations(ctx, []types.Currency{currencies.USD}, day, day)
	assert.ErrorContains(t, err, "unable to fetch cached dates")

	assert.ErrorContains(
		t,
		s.SaveNonTradingDays(ctx, []civil.Date{day}),
		"unable to save non-trading days",
	)

	_, err = s.HasAPIKey(ctx, "digest")
	assert.ErrorContains(t, err, "unable to look up API key")

	// Empty writes never reach the server
	assert.NoError(t, s.SaveObservations(ctx, nil))
	assert.NoError(t, s.SaveNonTradingDays(ctx, nil))
}

package ecb

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/fxcross/provider/currencies"
	"github.com/sig-0/fxcross/storage/types"
)

type fetchDelegate func(context.Context, []types.Currency, civil.Date, civil.Date) ([]*types.Observation, error)

type mockSource struct {
	fetchFn fetchDelegate
}

func (m *mockSource) Fetch(
	ctx context.Context,
	currencies []types.Currency,
	from, to civil.Date,
) ([]*types.Observation, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, currencies, from, to)
	}

	return nil, nil
}

func TestFeed_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("lookback window ending today", func(t *testing.T) {
		t.Parallel()

		var (
			capturedCurrencies []types.Currency
			capturedFrom       civil.Date
			capturedTo         civil.Date

			wanted = []types.Currency{currencies.USD, currencies.GBP}
		)

		source := &mockSource{
			fetchFn: func(
				_ context.Context,
				currencies []types.Currency,
				from, to civil.Date,
			) ([]*types.Observation, error) {
				capturedCurrencies = currencies
				capturedFrom = from
				capturedTo = to

				return nil, nil
			},
		}

		feed := NewFeed(source, wanted, time.Hour)
		feed.now = func() time.Time {
			return time.Date(2020, time.November, 16, 17, 0, 0, 0, time.UTC)
		}

		_, err := feed.Fetch(context.Background())
		require.NoError(t, err)

		assert.Equal(t, wanted, capturedCurrencies)
		assert.Equal(t, day(t, "2020-11-11"), capturedFrom)
		assert.Equal(t, day(t, "2020-11-16"), capturedTo)
	})

	t.Run("source error", func(t *testing.T) {
		t.Parallel()

		fetchErr := errors.New("boom")

		source := &mockSource{
			fetchFn: func(_ context.Context, _ []types.Currency, _, _ civil.Date) ([]*types.Observation, error) {
				return nil, fetchErr
			},
		}

		_, err := NewFeed(source, []types.Currency{currencies.USD}, time.Hour).Fetch(context.Background())

		assert.ErrorIs(t, err, fetchErr)
	})

	t.Run("metadata", func(t *testing.T) {
		t.Parallel()

		feed := NewFeed(&mockSource{}, nil, time.Hour*6)

		assert.Equal(t, "ECB", feed.Name())
		assert.Equal(t, time.Hour*6, feed.Interval())
	})
}

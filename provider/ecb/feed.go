package ecb

import (
	"context"
	"time"

	"cloud.google.com/go/civil"

	"github.com/sig-0/fxcross/calendar"
	"github.com/sig-0/fxcross/crossrate"
	"github.com/sig-0/fxcross/storage/types"
)

// Feed periodically prefetches the recent reference rates of a fixed
// set of currencies, so queries over recent dates are served from the cache
type Feed struct {
	source     crossrate.Source
	now        func() time.Time
	currencies []types.Currency
	interval   time.Duration
	lookback   int
}

// NewFeed creates a new prefetch feed over the given source
func NewFeed(
	source crossrate.Source,
	currencies []types.Currency,
	interval time.Duration,
) *Feed {
	return &Feed{
		source:     source,
		currencies: currencies,
		interval:   interval,
		lookback:   crossrate.DefaultLookback,
		now:        time.Now,
	}
}

func (f *Feed) Name() string {
	return "ECB"
}

func (f *Feed) Interval() time.Duration {
	return f.interval
}

// Fetch fetches the lookback window ending today
func (f *Feed) Fetch(ctx context.Context) ([]*types.Observation, error) {
	today := civil.DateOf(f.now().UTC())

	return f.source.Fetch(
		ctx,
		f.currencies,
		calendar.SubtractBusinessDays(today, f.lookback),
		today,
	)
}

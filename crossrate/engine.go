package crossrate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/sig-0/fxcross/calendar"
	"github.com/sig-0/fxcross/metrics"
	"github.com/sig-0/fxcross/provider/currencies"
	"github.com/sig-0/fxcross/storage/types"
)

const (
	// DefaultLookback is the number of business days loaded before the range start
	DefaultLookback = 3

	// ratePrecision is the number of decimal places of a cross rate
	ratePrecision = 4
)

// Source is an upstream provider of reference rate observations
type Source interface {
	// Fetch fetches the observations of the given currencies for [from, to],
	// using a single upstream request
	Fetch(ctx context.Context, currencies []types.Currency, from, to civil.Date) ([]*types.Observation, error)
}

// Cache is the rate cache the engine reads through
type Cache interface {
	CompleteObservations(
		ctx context.Context,
		currencies []types.Currency,
		from, to civil.Date,
	) (map[types.Currency][]*types.Observation, error)
	SaveObservations(context.Context, []*types.Observation) error
	SaveNonTradingDays(context.Context, []civil.Date) error
}

// Engine generates day-by-day cross rates out of cached reference rates,
// falling back to the source for currencies the cache does not fully cover
type Engine struct {
	source Source
	cache  Cache

	logger  *slog.Logger
	metrics *metrics.Metrics

	reference         types.Currency
	lookback          int
	nonTradingTimeout time.Duration

	pending sync.WaitGroup
}

// New creates a new cross rate engine
func New(source Source, cache Cache, opts ...Option) *Engine {
	e := &Engine{
		source:            source,
		cache:             cache,
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		reference:         currencies.EUR,
		lookback:          DefaultLookback,
		nonTradingTimeout: time.Second * 10,
	}

	// Apply the options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Generate returns the cross rates of the given pairs for every day in [start, end].
// Rows are ordered by date, and by the order of the pairs within a date.
// Days for which either leg has no applicable rate are omitted.
//
// Weekdays before now without any observation are recorded in the cache
// as non-trading days, in the background
func (e *Engine) Generate(
	ctx context.Context,
	pairs []types.Pair,
	start, end civil.Date,
	now time.Time,
) ([]*types.CrossRate, error) {
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	began := time.Now()

	wanted := e.currenciesOf(pairs)
	if len(wanted) == 0 {
		return nil, nil
	}

	windowStart := calendar.SubtractBusinessDays(start, e.lookback)

	observations, err := e.loadObservations(ctx, wanted, windowStart, end)
	if err != nil {
		return nil, err
	}

	// Phase one: build the timeline and collect the inferred non-trading days
	tl := e.buildTimeline(observations, windowStart, end, civil.DateOf(now))

	if len(tl.nonTrading) > 0 {
		e.submitNonTradingDays(tl.nonTrading)
	}

	// Phase two: emit the requested rows
	rates := tl.crossRates(pairs, start)

	e.metrics.ObserveGenerate(len(rates), time.Since(began))

	return rates, nil
}

// Wait blocks until all background non-trading day submissions are done
func (e *Engine) Wait() {
	e.pending.Wait()
}

// currenciesOf returns the distinct non-reference currencies of the pairs,
// in first-seen order
func (e *Engine) currenciesOf(pairs []types.Pair) []types.Currency {
	var (
		seen = make(map[types.Currency]struct{}, len(pairs)*2)
		out  = make([]types.Currency, 0, len(pairs)*2)
	)

	for _, p := range pairs {
		for _, c := range []types.Currency{p.From, p.To} {
			if c == e.reference {
				continue
			}

			if _, ok := seen[c]; ok {
				continue
			}

			seen[c] = struct{}{}
			out = append(out, c)
		}
	}

	return out
}

// loadObservations reads the window from the cache, and refetches it
// for every currency the cache does not fully cover
func (e *Engine) loadObservations(
	ctx context.Context,
	wanted []types.Currency,
	from, to civil.Date,
) ([]*types.Observation, error) {
	cached, err := e.cache.CompleteObservations(ctx, wanted, from, to)
	if err != nil {
		return nil, fmt.Errorf("unable to query rate cache, %w", err)
	}

	var (
		out     = make([]*types.Observation, 0)
		missing = make([]types.Currency, 0, len(wanted))
	)

	for _, c := range wanted {
		obs, ok := cached[c]
		if !ok {
			missing = append(missing, c)

			continue
		}

		out = append(out, obs...)
	}

	e.metrics.ObserveLookup(len(wanted)-len(missing), len(missing))

	if len(missing) == 0 {
		return out, nil
	}

	e.logger.Debug(
		"fetching uncached currencies",
		"currencies", missing,
		"from", from.String(),
		"to", to.String(),
	)

	fetched, err := e.source.Fetch(ctx, missing, from, to)
	e.metrics.ObserveFetch(err, len(fetched))

	if err != nil {
		return nil, fmt.Errorf("unable to fetch rates, %w", err)
	}

	if err = e.cache.SaveObservations(ctx, fetched); err != nil {
		return nil, fmt.Errorf("%w, %w", ErrCacheWrite, err)
	}

	return append(out, fetched...), nil
}

// submitNonTradingDays stores the inferred days without blocking the caller.
// Failures are only logged
func (e *Engine) submitNonTradingDays(days []civil.Date) {
	e.metrics.ObserveNonTrading(len(days))
	e.pending.Add(1)

	go func() {
		defer e.pending.Done()

		ctx, cancelFn := context.WithTimeout(context.Background(), e.nonTradingTimeout)
		defer cancelFn()

		if err := e.cache.SaveNonTradingDays(ctx, days); err != nil {
			e.logger.Warn(
				"unable to save non-trading days",
				"count", len(days),
				"err", err,
			)

			return
		}

		e.logger.Debug(
			"saved non-trading days",
			"count", len(days),
		)
	}()
}

// timeline is the per-date view of a generation window
type timeline struct {
	// rates holds, per date with at least one observation, the rate of every
	// observed currency, including the reference currency
	rates map[civil.Date]map[types.Currency]decimal.Decimal

	// applicable maps each walked date to the latest observed date at or before it
	applicable map[civil.Date]civil.Date

	// nonTrading holds weekdays in the past without a single observation
	nonTrading []civil.Date

	from, to civil.Date
}

func (e *Engine) buildTimeline(
	observations []*types.Observation,
	from, to civil.Date,
	today civil.Date,
) *timeline {
	tl := &timeline{
		rates:      make(map[civil.Date]map[types.Currency]decimal.Decimal),
		applicable: make(map[civil.Date]civil.Date),
		from:       from,
		to:         to,
	}

	for _, o := range observations {
		byCurrency, ok := tl.rates[o.Date]
		if !ok {
			byCurrency = map[types.Currency]decimal.Decimal{
				e.reference: decimal.NewFromInt(1),
			}

			tl.rates[o.Date] = byCurrency
		}

		byCurrency[o.Currency] = o.Rate
	}

	var (
		current civil.Date
		seeded  bool
	)

	for d := from; !d.After(to); d = d.AddDays(1) {
		if _, ok := tl.rates[d]; ok {
			current = d
			seeded = true
		} else if !calendar.IsWeekend(d) && d.Before(today) {
			tl.nonTrading = append(tl.nonTrading, d)
		}

		if seeded {
			tl.applicable[d] = current
		}
	}

	return tl
}

// crossRates emits the rows of the given pairs for every date in [start, to]
func (tl *timeline) crossRates(pairs []types.Pair, start civil.Date) []*types.CrossRate {
	out := make([]*types.CrossRate, 0)

	for d := start; !d.After(tl.to); d = d.AddDays(1) {
		applicable, ok := tl.applicable[d]
		if !ok {
			continue
		}

		byCurrency := tl.rates[applicable]

		for _, p := range pairs {
			from, fromOK := byCurrency[p.From]
			to, toOK := byCurrency[p.To]

			if !fromOK || !toOK || !from.IsPositive() {
				continue
			}

			out = append(out, &types.CrossRate{
				Date: d,
				From: p.From,
				To:   p.To,
				Rate: to.DivRound(from, ratePrecision),
			})
		}
	}

	return out
}

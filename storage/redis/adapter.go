// Package redis implements the rate cache and key store on top of Redis.
//
// Layout:
//
//	fxcross:obs:{CUR}        hash   date -> rate
//	fxcross:obs:{CUR}:dates  zset   date, scored by days since the Unix epoch
//	fxcross:nontrading       zset   date, scored the same way
//	fxcross:currencies       set    known currency codes
//	fxcross:apikeys          hash   key digest -> creation time (RFC 3339)
package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/sig-0/fxcross/storage"
	"github.com/sig-0/fxcross/storage/types"
)

const (
	keyPrefix     = "fxcross"
	nonTradingKey = keyPrefix + ":nontrading"
	currenciesKey = keyPrefix + ":currencies"
	apiKeysKey    = keyPrefix + ":apikeys"
)

var (
	epoch = civil.Date{Year: 1970, Month: time.January, Day: 1}

	errInvalidEntry = errors.New("invalid cache entry")
)

type Storage struct {
	client redis.UniversalClient
}

func NewStorage(client redis.UniversalClient) *Storage {
	return &Storage{
		client: client,
	}
}

func (s *Storage) CompleteObservations(
	ctx context.Context,
	currencies []types.Currency,
	from, to civil.Date,
) (map[types.Currency][]*types.Observation, error) {
	window := dateRange(from, to)

	// Resolve the cached dates of every currency in one round trip
	var (
		dateCmds      = make([]*redis.StringSliceCmd, len(currencies))
		nonTradingCmd *redis.StringSliceCmd
	)

	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, c := range currencies {
			dateCmds[i] = pipe.ZRangeByScore(ctx, datesKey(c), window)
		}

		nonTradingCmd = pipe.ZRangeByScore(ctx, nonTradingKey, window)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to fetch cached dates: %w", err)
	}

	nonTrading, err := parseDates(nonTradingCmd.Val())
	if err != nil {
		return nil, err
	}

	// Load the rates of the cached dates
	rateCmds := make([]*redis.SliceCmd, len(currencies))

	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, c := range currencies {
			dates := dateCmds[i].Val()
			if len(dates) == 0 {
				continue
			}

			rateCmds[i] = pipe.HMGet(ctx, observationsKey(c), dates...)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to fetch cached rates: %w", err)
	}

	observations := make([]*types.Observation, 0)

	for i, c := range currencies {
		if rateCmds[i] == nil {
			continue
		}

		parsed, parseErr := parseObservations(c, dateCmds[i].Val(), rateCmds[i].Val())
		if parseErr != nil {
			return nil, parseErr
		}

		observations = append(observations, parsed...)
	}

	return storage.FilterComplete(currencies, from, to, nonTrading, observations), nil
}

func (s *Storage) SaveObservations(ctx context.Context, observations []*types.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, o := range observations {
			date := o.Date.String()

			pipe.HSetNX(ctx, observationsKey(o.Currency), date, o.Rate.String())
			pipe.ZAddNX(ctx, datesKey(o.Currency), redis.Z{
				Score:  score(o.Date),
				Member: date,
			})
			pipe.SAdd(ctx, currenciesKey, o.Currency.String())
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to save observations: %w", err)
	}

	return nil
}

func (s *Storage) SaveNonTradingDays(ctx context.Context, dates []civil.Date) error {
	if len(dates) == 0 {
		return nil
	}

	members := make([]redis.Z, 0, len(dates))
	for _, d := range dates {
		members = append(members, redis.Z{
			Score:  score(d),
			Member: d.String(),
		})
	}

	if err := s.client.ZAddNX(ctx, nonTradingKey, members...).Err(); err != nil {
		return fmt.Errorf("unable to save non-trading days: %w", err)
	}

	return nil
}

func (s *Storage) ListCurrencies(ctx context.Context) ([]types.Currency, error) {
	codes, err := s.client.SMembers(ctx, currenciesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("unable to fetch currencies: %w", err)
	}

	if len(codes) == 0 {
		return nil, nil //nolint:nilnil // valid case
	}

	slices.Sort(codes)

	out := make([]types.Currency, 0, len(codes))
	for _, code := range codes {
		out = append(out, types.Currency(code))
	}

	return out, nil
}

func (s *Storage) SaveAPIKey(ctx context.Context, k *types.APIKey) error {
	err := s.client.HSet(ctx, apiKeysKey, k.Hash, k.CreatedAt.UTC().Format(time.RFC3339)).Err()
	if err != nil {
		return fmt.Errorf("unable to save API key: %w", err)
	}

	return nil
}

func (s *Storage) DeleteAPIKey(ctx context.Context, hash string) (bool, error) {
	removed, err := s.client.HDel(ctx, apiKeysKey, hash).Result()
	if err != nil {
		return false, fmt.Errorf("unable to delete API key: %w", err)
	}

	return removed > 0, nil
}

func (s *Storage) HasAPIKey(ctx context.Context, hash string) (bool, error) {
	exists, err := s.client.HExists(ctx, apiKeysKey, hash).Result()
	if err != nil {
		return false, fmt.Errorf("unable to look up API key: %w", err)
	}

	return exists, nil
}

// observationsKey returns the rate hash key of the currency
func observationsKey(c types.Currency) string {
	return keyPrefix + ":obs:" + c.String()
}

// datesKey returns the date index key of the currency
func datesKey(c types.Currency) string {
	return observationsKey(c) + ":dates"
}

// score returns the sorted set score of the date
func score(d civil.Date) float64 {
	return float64(d.DaysSince(epoch))
}

// dateRange returns the inclusive score range of [from, to]
func dateRange(from, to civil.Date) *redis.ZRangeBy {
	return &redis.ZRangeBy{
		Min: strconv.FormatFloat(score(from), 'f', 0, 64),
		Max: strconv.FormatFloat(score(to), 'f', 0, 64),
	}
}

// parseDates parses the stored date members
func parseDates(members []string) ([]civil.Date, error) {
	dates := make([]civil.Date, 0, len(members))

	for _, m := range members {
		d, err := civil.ParseDate(m)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q", errInvalidEntry, m)
		}

		dates = append(dates, d)
	}

	return dates, nil
}

// parseObservations pairs up the cached dates with their HMGET rate values.
// Dates without a stored rate are skipped
func parseObservations(
	c types.Currency,
	dates []string,
	rates []any,
) ([]*types.Observation, error) {
	if len(dates) != len(rates) {
		return nil, fmt.Errorf("%w: %d dates, %d rates", errInvalidEntry, len(dates), len(rates))
	}

	out := make([]*types.Observation, 0, len(dates))

	for i, raw := range rates {
		value, ok := raw.(string)
		if !ok {
			continue
		}

		date, err := civil.ParseDate(dates[i])
		if err != nil {
			return nil, fmt.Errorf("%w: date %q", errInvalidEntry, dates[i])
		}

		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("%w: rate %q", errInvalidEntry, value)
		}

		out = append(out, &types.Observation{
			Date:     date,
			Currency: c,
			Rate:     rate,
		})
	}

	return out, nil
}

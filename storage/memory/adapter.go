package memory

import (
	"context"
	"sort"
	"sync"

	"cloud.google.com/go/civil"

	"github.com/sig-0/fxcross/storage"
	"github.com/sig-0/fxcross/storage/types"
)

type key struct {
	currency string
	date     civil.Date
}

type Storage struct {
	observations map[key]types.Observation
	nonTrading   map[civil.Date]struct{}
	apiKeys      map[string]types.APIKey

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		observations: make(map[key]types.Observation),
		nonTrading:   make(map[civil.Date]struct{}),
		apiKeys:      make(map[string]types.APIKey),
	}
}

func (s *Storage) CompleteObservations(
	_ context.Context,
	currencies []types.Currency,
	from, to civil.Date,
) (map[types.Currency][]*types.Observation, error) {
	wanted := make(map[string]struct{}, len(currencies))
	for _, c := range currencies {
		wanted[c.String()] = struct{}{}
	}

	s.mu.RLock()

	var (
		inRange    []*types.Observation
		nonTrading []civil.Date
	)

	for k, v := range s.observations {
		if _, ok := wanted[k.currency]; !ok {
			continue
		}

		if k.date.Before(from) || k.date.After(to) {
			continue
		}

		cp := v
		inRange = append(inRange, &cp)
	}

	for d := range s.nonTrading {
		if d.Before(from) || d.After(to) {
			continue
		}

		nonTrading = append(nonTrading, d)
	}

	s.mu.RUnlock()

	return storage.FilterComplete(currencies, from, to, nonTrading, inRange), nil
}

func (s *Storage) SaveObservations(_ context.Context, observations []*types.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range observations {
		k := key{
			currency: o.Currency.String(),
			date:     o.Date,
		}

		if _, exists := s.observations[k]; exists {
			continue // first write wins
		}

		s.observations[k] = *o
	}

	return nil
}

func (s *Storage) SaveNonTradingDays(_ context.Context, dates []civil.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range dates {
		s.nonTrading[d] = struct{}{}
	}

	return nil
}

// NonTradingDays returns the known non-trading days, in ascending order
func (s *Storage) NonTradingDays() []civil.Date {
	s.mu.RLock()

	out := make([]civil.Date, 0, len(s.nonTrading))
	for d := range s.nonTrading {
		out = append(out, d)
	}

	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Before(out[j])
	})

	return out
}

func (s *Storage) ListCurrencies(_ context.Context) ([]types.Currency, error) {
	s.mu.RLock()

	seen := make(map[string]struct{})

	for k := range s.observations {
		seen[k.currency] = struct{}{}
	}

	s.mu.RUnlock()

	out := make([]types.Currency, 0, len(seen))

	for v := range seen {
		out = append(out, types.Currency(v))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})

	return out, nil
}

func (s *Storage) SaveAPIKey(_ context.Context, k *types.APIKey) error {
	s.mu.Lock()
	s.apiKeys[k.Hash] = *k
	s.mu.Unlock()

	return nil
}

func (s *Storage) DeleteAPIKey(_ context.Context, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.apiKeys[hash]; !ok {
		return false, nil
	}

	delete(s.apiKeys, hash)

	return true, nil
}

func (s *Storage) HasAPIKey(_ context.Context, hash string) (bool, error) {
	s.mu.RLock()
	_, ok := s.apiKeys[hash]
	s.mu.RUnlock()

	return ok, nil
}

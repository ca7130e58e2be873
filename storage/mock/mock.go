package mock

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/sig-0/fxcross/storage/types"
)

type (
	CompleteObservationsDelegate func(
		context.Context,
		[]types.Currency,
		civil.Date,
		civil.Date,
	) (map[types.Currency][]*types.Observation, error)
	SaveObservationsDelegate   func(context.Context, []*types.Observation) error
	SaveNonTradingDaysDelegate func(context.Context, []civil.Date) error
	ListCurrenciesDelegate     func(context.Context) ([]types.Currency, error)

	SaveAPIKeyDelegate   func(context.Context, *types.APIKey) error
	DeleteAPIKeyDelegate func(context.Context, string) (bool, error)
	HasAPIKeyDelegate    func(context.Context, string) (bool, error)
)

type Storage struct {
	CompleteObservationsFn CompleteObservationsDelegate
	SaveObservationsFn     SaveObservationsDelegate
	SaveNonTradingDaysFn   SaveNonTradingDaysDelegate
	ListCurrenciesFn       ListCurrenciesDelegate
}

func (m *Storage) CompleteObservations(
	ctx context.Context,
	currencies []types.Currency,
	from, to civil.Date,
) (map[types.Currency][]*types.Observation, error) {
	if m.CompleteObservationsFn != nil {
		return m.CompleteObservationsFn(ctx, currencies, from, to)
	}

	return nil, nil
}

func (m *Storage) SaveObservations(ctx context.Context, observations []*types.Observation) error {
	if m.SaveObservationsFn != nil {
		return m.SaveObservationsFn(ctx, observations)
	}

	return nil
}

func (m *Storage) SaveNonTradingDays(ctx context.Context, dates []civil.Date) error {
	if m.SaveNonTradingDaysFn != nil {
		return m.SaveNonTradingDaysFn(ctx, dates)
	}

	return nil
}

func (m *Storage) ListCurrencies(ctx context.Context) ([]types.Currency, error) {
	if m.ListCurrenciesFn != nil {
		return m.ListCurrenciesFn(ctx)
	}

	return nil, nil
}

type KeyStorage struct {
	SaveAPIKeyFn   SaveAPIKeyDelegate
	DeleteAPIKeyFn DeleteAPIKeyDelegate
	HasAPIKeyFn    HasAPIKeyDelegate
}

func (m *KeyStorage) SaveAPIKey(ctx context.Context, k *types.APIKey) error {
	if m.SaveAPIKeyFn != nil {
		return m.SaveAPIKeyFn(ctx, k)
	}

	return nil
}

func (m *KeyStorage) DeleteAPIKey(ctx context.Context, hash string) (bool, error) {
	if m.DeleteAPIKeyFn != nil {
		return m.DeleteAPIKeyFn(ctx, hash)
	}

	return false, nil
}

func (m *KeyStorage) HasAPIKey(ctx context.Context, hash string) (bool, error) {
	if m.HasAPIKeyFn != nil {
		return m.HasAPIKeyFn(ctx, hash)
	}

	return false, nil
}

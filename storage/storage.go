package storage

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/sig-0/fxcross/storage/types"
)

// Storage is an abstraction over the reference rate cache
type Storage interface {
	// CompleteObservations returns the observations in [from, to] of every currency
	// whose coverage of the range is complete. Partially covered currencies are omitted
	CompleteObservations(
		ctx context.Context,
		currencies []types.Currency,
		from, to civil.Date,
	) (map[types.Currency][]*types.Observation, error)

	// SaveObservations saves the given observations, skipping (currency, date) keys
	// that are already present
	SaveObservations(context.Context, []*types.Observation) error

	// SaveNonTradingDays marks the given dates as non-trading, skipping known ones
	SaveNonTradingDays(context.Context, []civil.Date) error

	// ListCurrencies lists all currencies present in the cache
	ListCurrencies(context.Context) ([]types.Currency, error)
}

// KeyStorage is an abstraction over issued API keys
type KeyStorage interface {
	// SaveAPIKey saves the given API key record
	SaveAPIKey(context.Context, *types.APIKey) error

	// DeleteAPIKey removes the key with the given digest, if present
	DeleteAPIKey(ctx context.Context, hash string) (bool, error)

	// HasAPIKey checks if a key with the given digest exists
	HasAPIKey(ctx context.Context, hash string) (bool, error)
}

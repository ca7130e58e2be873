package crossrate

import (
	"context"

	"cloud.google.com/go/civil"

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

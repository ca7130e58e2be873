package server

import (
	"context"
	"time"

	"cloud.google.com/go/civil"

	"github.com/sig-0/fxcross/storage/types"
)

type (
	generateDelegate func(
		context.Context,
		[]types.Pair,
		civil.Date,
		civil.Date,
		time.Time,
	) ([]*types.CrossRate, error)
	validDelegate func(context.Context, string) (bool, error)
)

type mockGenerator struct {
	generateFn generateDelegate
}

func (m *mockGenerator) Generate(
	ctx context.Context,
	pairs []types.Pair,
	start, end civil.Date,
	now time.Time,
) ([]*types.CrossRate, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, pairs, start, end, now)
	}

	return nil, nil
}

type mockKeys struct {
	validFn validDelegate
}

func (m *mockKeys) Valid(ctx context.Context, key string) (bool, error) {
	if m.validFn != nil {
		return m.validFn(ctx, key)
	}

	return false, nil
}

package ingest

import (
	"context"
	"time"

	"github.com/sig-0/fxcross/storage/types"
)

// Provider is a single periodic reference rate feed
type Provider interface {
	// Name returns the human-readable name of the provider
	Name() string

	// Interval returns the interval at which the provider should be called
	Interval() time.Duration

	// Fetch is the provider's main fetch job, yielding reference rate observations
	Fetch(context.Context) ([]*types.Observation, error)
}

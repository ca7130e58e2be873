package crossrate

import (
	"log/slog"
	"time"

	"github.com/sig-0/fxcross/metrics"
	"github.com/sig-0/fxcross/storage/types"
)

type Option func(e *Engine)

// WithLogger specifies the logger for the engine
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics specifies the metrics collectors for the engine
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithReference specifies the currency all cached rates are quoted against.
// Defaults to EUR
func WithReference(c types.Currency) Option {
	return func(e *Engine) {
		e.reference = c
	}
}

// WithLookback specifies how many business days before the range start
// are loaded to seed the forward fill. Defaults to 3
func WithLookback(n int) Option {
	return func(e *Engine) {
		e.lookback = n
	}
}

// WithNonTradingTimeout specifies the deadline of a background
// non-trading day submission. Defaults to 10s
func WithNonTradingTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.nonTradingTimeout = d
	}
}

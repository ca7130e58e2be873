package server

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sig-0/fxcross/metrics"
	"github.com/sig-0/fxcross/server/config"
)

type Option func(s *Server)

// WithLogger specifies the logger for the server
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithConfig specifies the config for the server
func WithConfig(c *config.Config) Option {
	return func(s *Server) {
		s.config = c
	}
}

// WithKeys specifies the API key validator for the exchange endpoints
func WithKeys(k KeyValidator) Option {
	return func(s *Server) {
		s.keys = k
	}
}

// WithMetrics specifies the request collectors, and the gatherer
// exposed on /metrics
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithClock specifies the time source used to resolve "today"
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

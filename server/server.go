package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/fxcross/metrics"
	"github.com/sig-0/fxcross/server/config"
	"github.com/sig-0/fxcross/storage"
	"github.com/sig-0/fxcross/storage/types"
)

// RoutesFn is a callback that receives a router for registering routes
type RoutesFn func(router chi.Router)

// Generator produces the cross rates of currency pairs over a date range
type Generator interface {
	Generate(
		ctx context.Context,
		pairs []types.Pair,
		start, end civil.Date,
		now time.Time,
	) ([]*types.CrossRate, error)
}

// KeyValidator checks API keys
type KeyValidator interface {
	Valid(ctx context.Context, key string) (bool, error)
}

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var errMissingKeyValidator = errors.New("auth is enabled, but no key validator is set")

type Server struct {
	logger *slog.Logger
	config *config.Config

	storage   storage.Storage
	generator Generator
	keys      KeyValidator

	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	now func() time.Time

	mux *chi.Mux
}

// New creates a new server instance
func New(storage storage.Storage, generator Generator, opts ...Option) (*Server, error) {
	s := &Server{
		logger:    noopLogger,
		storage:   storage,
		generator: generator,
		config:    config.DefaultConfig(),
		now:       time.Now,
		mux:       chi.NewMux(),
	}

	// Apply the options
	for _, opt := range opts {
		opt(s)
	}

	// Validate the configuration
	if err := config.ValidateConfig(s.config); err != nil {
		return nil, fmt.Errorf("invalid configuration, %w", err)
	}

	authEnabled := s.config.Auth != nil && s.config.Auth.Enabled
	if authEnabled && s.keys == nil {
		return nil, errMissingKeyValidator
	}

	// Set up the CORS middleware
	if s.config.CORSConfig != nil {
		corsMiddleware := cors.New(cors.Options{
			AllowedOrigins: s.config.CORSConfig.AllowedOrigins,
			AllowedMethods: s.config.CORSConfig.AllowedMethods,
			AllowedHeaders: s.config.CORSConfig.AllowedHeaders,
		})

		s.mux.Use(corsMiddleware.Handler)
	}

	s.mux.Use(httplog.RequestLogger(s.logger, &httplog.Options{
		Level:         slog.LevelInfo,
		Schema:        httplog.SchemaOTEL,
		RecoverPanics: true,
		Skip: func(r *http.Request, respStatus int) bool {
			return respStatus == 404 || respStatus == 405 || r.URL.Path == "/health"
		},
	}))

	s.mux.Use(s.instrument)

	// Register the health check handler
	s.mux.Get("/health", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	// Register the docs
	s.mux.Get("/openapi.yaml", s.OpenAPI)
	s.mux.Get("/docs", s.Redoc)

	// Register the metrics exporter
	if s.gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// Register the API
	throttle, err := s.throttle()
	if err != nil {
		return nil, fmt.Errorf("unable to set up throttling, %w", err)
	}

	s.mux.Route("/v1", func(r chi.Router) {
		if throttle != nil {
			r.Use(throttle)
		}

		r.Get("/currencies", s.Currencies)

		r.Group(func(r chi.Router) {
			if authEnabled {
				r.Use(s.authenticate)
			}

			r.Get("/exchanges", s.Exchanges)
		})
	})

	return s, nil
}

// Routes calls fn with the server mux so callers can add endpoints
func (s *Server) Routes(fn RoutesFn) {
	if fn == nil {
		return
	}

	fn(s.mux)
}

// ServeHTTP serves the request using the server mux
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Serve serves the fxcross service
func (s *Server) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.mux,
		ReadHeaderTimeout: 60 * time.Second,
	}

	group, gCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer s.logger.Info("server shut down")

		ln, err := net.Listen("tcp", server.Addr)
		if err != nil {
			return err
		}

		s.logger.Info(
			fmt.Sprintf(
				"server started at %s",
				ln.Addr().String(),
			),
		)

		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	group.Go(func() error {
		<-gCtx.Done()

		s.logger.Info("server to be shutdown")

		wsCtx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()

		return server.Shutdown(wsCtx)
	})

	return group.Wait()
}

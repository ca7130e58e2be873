package server

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ulule/limiter/v3"
	limiterMemory "github.com/ulule/limiter/v3/drivers/store/memory"
)

const (
	apiKeyHeader = "X-API-Key"
	apiKeyParam  = "api_key"
)

var (
	errInvalidAPIKey    = errors.New("invalid API key")
	errUnableToAuth     = errors.New("unable to validate API key")
	errTooManyRequests  = errors.New("too many requests")
	errUnableToThrottle = errors.New("unable to check request limit")
)

// instrument records the request count and latency per route pattern
func (s *Server) instrument(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			ww    = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			began = time.Now()
		)

		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		s.metrics.ObserveHTTP(path, r.Method, status, time.Since(began))
	})
}

// authenticate rejects requests without a valid API key
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := apiKeyFromRequest(r)

		valid, err := s.keys.Valid(r.Context(), key)
		if err != nil {
			s.logger.Error(
				"unable to validate API key",
				"err", err,
			)

			writeError(w, http.StatusInternalServerError, errUnableToAuth)

			return
		}

		if !valid {
			writeError(w, http.StatusForbidden, errInvalidAPIKey)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// throttle creates the per-client request limiter, if configured
func (s *Server) throttle() (func(http.Handler) http.Handler, error) {
	if s.config.RateLimit == nil || s.config.RateLimit.Rate == "" {
		return nil, nil //nolint:nilnil // throttling disabled
	}

	rate, err := limiter.NewRateFromFormatted(s.config.RateLimit.Rate)
	if err != nil {
		return nil, err
	}

	instance := limiter.New(limiterMemory.NewStore(), rate)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			limit, err := instance.Get(r.Context(), ip)
			if err != nil {
				s.logger.Error(
					"unable to get rate limit context",
					"ip", ip,
					"err", err,
				)

				writeError(w, http.StatusInternalServerError, errUnableToThrottle)

				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limit.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(limit.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(limit.Reset, 10))

			if limit.Reached {
				s.logger.Warn(
					"rate limit exceeded",
					"ip", ip,
					"limit", limit.Limit,
				)

				writeError(w, http.StatusTooManyRequests, errTooManyRequests)

				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// apiKeyFromRequest extracts the API key from the header,
// falling back to the query parameter
func apiKeyFromRequest(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(apiKeyHeader)); key != "" {
		return key
	}

	return strings.TrimSpace(r.URL.Query().Get(apiKeyParam))
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

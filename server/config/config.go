package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/ulule/limiter/v3"
)

const (
	DefaultListenAddress = "0.0.0.0:8545"
	DefaultRateLimit     = "100-M"

	DefaultSourceURL     = "https://data-api.ecb.europa.eu"
	DefaultSourceTimeout = "30s"

	DefaultPrefetchInterval = "1h"
)

var (
	ErrInvalidListenAddress    = errors.New("invalid listen address")
	ErrInvalidRateLimit        = errors.New("invalid rate limit")
	ErrInvalidSourceURL        = errors.New("invalid source URL")
	ErrInvalidSourceTimeout    = errors.New("invalid source timeout")
	ErrInvalidPrefetchInterval = errors.New("invalid prefetch interval")
	ErrInvalidPrefetchCurrency = errors.New("invalid prefetch currency")
)

var (
	listenAddressRegex = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}:\d+$`)
	currencyRegex      = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Config defines the base-level server configuration
type Config struct {
	// The associated CORS config, if any
	CORSConfig *CORS `toml:"cors_config"`

	// The API key check of the exchange endpoints
	Auth *Auth `toml:"auth"`

	// The per-client request throttling, if any
	RateLimit *RateLimit `toml:"rate_limit"`

	// The upstream reference rate source
	Source *Source `toml:"source"`

	// The periodic cache warm-up, if any
	Prefetch *Prefetch `toml:"prefetch"`

	// The address at which the server will be served.
	// Format should be: <IP>:<PORT>
	ListenAddress string `toml:"listen_address"`
}

// CORS is the cross-origin configuration of the server
type CORS struct {
	AllowedOrigins []string `toml:"allowed_origins"`
	AllowedMethods []string `toml:"allowed_methods"`
	AllowedHeaders []string `toml:"allowed_headers"`
}

type Auth struct {
	// Flag indicating if exchange queries require a valid API key
	Enabled bool `toml:"enabled"`
}

type RateLimit struct {
	// Limit in the <limit>-<period> format, ex. "100-M" or "10-S"
	Rate string `toml:"rate"`
}

type Source struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

type Prefetch struct {
	// Currencies kept warm in the cache
	Currencies []string `toml:"currencies"`

	// How often the currencies are refreshed
	Interval string `toml:"interval"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		CORSConfig:    DefaultCORSConfig(),
		Auth:          DefaultAuthConfig(),
		RateLimit:     DefaultRateLimitConfig(),
		Source:        DefaultSourceConfig(),
		Prefetch:      DefaultPrefetchConfig(),
	}
}

// DefaultCORSConfig returns the default (permissive, read-only) CORS config
func DefaultCORSConfig() *CORS {
	return &CORS{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-API-Key"},
	}
}

func DefaultAuthConfig() *Auth {
	return &Auth{
		Enabled: true,
	}
}

func DefaultRateLimitConfig() *RateLimit {
	return &RateLimit{
		Rate: DefaultRateLimit,
	}
}

func DefaultSourceConfig() *Source {
	return &Source{
		BaseURL: DefaultSourceURL,
		Timeout: DefaultSourceTimeout,
	}
}

func DefaultPrefetchConfig() *Prefetch {
	return &Prefetch{
		Currencies: nil, // no warm-up
		Interval:   DefaultPrefetchInterval,
	}
}

// ValidateConfig validates the server configuration
func ValidateConfig(config *Config) error {
	// Validate the listen address
	if !listenAddressRegex.MatchString(config.ListenAddress) {
		return ErrInvalidListenAddress
	}

	// Validate the throttling
	if config.RateLimit != nil && config.RateLimit.Rate != "" {
		if _, err := limiter.NewRateFromFormatted(config.RateLimit.Rate); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRateLimit, err)
		}
	}

	// Validate the source
	if config.Source != nil {
		u, err := url.Parse(config.Source.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return ErrInvalidSourceURL
		}

		if _, err = parsePositiveDuration(config.Source.Timeout); err != nil {
			return ErrInvalidSourceTimeout
		}
	}

	// Validate the prefetch
	if config.Prefetch != nil && len(config.Prefetch.Currencies) > 0 {
		if _, err := parsePositiveDuration(config.Prefetch.Interval); err != nil {
			return ErrInvalidPrefetchInterval
		}

		for _, c := range config.Prefetch.Currencies {
			if !currencyRegex.MatchString(c) {
				return fmt.Errorf("%w: %q", ErrInvalidPrefetchCurrency, c)
			}
		}
	}

	return nil
}

// SourceTimeout returns the parsed source timeout.
// The config is expected to be validated
func (c *Config) SourceTimeout() time.Duration {
	if c.Source == nil {
		d, _ := time.ParseDuration(DefaultSourceTimeout) //nolint:errcheck // constant

		return d
	}

	d, _ := time.ParseDuration(c.Source.Timeout) //nolint:errcheck // validated

	return d
}

// PrefetchInterval returns the parsed prefetch interval.
// The config is expected to be validated
func (c *Config) PrefetchInterval() time.Duration {
	if c.Prefetch == nil {
		return 0
	}

	d, _ := time.ParseDuration(c.Prefetch.Interval) //nolint:errcheck // validated

	return d
}

// Read reads the configuration from the given path.
// Omitted sections are set to their defaults
func Read(path string) (*Config, error) {
	// Read the config file
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse it
	var cfg Config

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	if cfg.Auth == nil {
		cfg.Auth = DefaultAuthConfig()
	}

	if cfg.Source == nil {
		cfg.Source = DefaultSourceConfig()
	}

	if cfg.Prefetch == nil {
		cfg.Prefetch = DefaultPrefetchConfig()
	}

	return &cfg, nil
}

func parsePositiveDuration(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}

	if d <= 0 {
		return 0, errors.New("duration must be positive")
	}

	return d, nil
}

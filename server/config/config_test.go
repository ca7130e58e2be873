package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateConfig(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name      string
		modify    func(*Config)
		expectErr error
	}{
		{
			"invalid listen address",
			func(c *Config) {
				c.ListenAddress = "rando-address" // doesn't follow the format
			},
			ErrInvalidListenAddress,
		},
		{
			"invalid rate limit",
			func(c *Config) {
				c.RateLimit.Rate = "lots"
			},
			ErrInvalidRateLimit,
		},
		{
			"invalid source URL",
			func(c *Config) {
				c.Source.BaseURL = "data-api"
			},
			ErrInvalidSourceURL,
		},
		{
			"invalid source timeout",
			func(c *Config) {
				c.Source.Timeout = "-1s"
			},
			ErrInvalidSourceTimeout,
		},
		{
			"invalid prefetch interval",
			func(c *Config) {
				c.Prefetch.Currencies = []string{"USD"}
				c.Prefetch.Interval = "soon"
			},
			ErrInvalidPrefetchInterval,
		},
		{
			"invalid prefetch currency",
			func(c *Config) {
				c.Prefetch.Currencies = []string{"usd"}
			},
			ErrInvalidPrefetchCurrency,
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			testCase.modify(cfg)

			assert.ErrorIs(t, ValidateConfig(cfg), testCase.expectErr)
		})
	}

	t.Run("valid configuration", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, ValidateConfig(DefaultConfig()))
	})

	t.Run("throttling disabled", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.RateLimit = nil

		assert.NoError(t, ValidateConfig(cfg))
	})
}

func TestConfig_Durations(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	assert.Equal(t, 30*time.Second, cfg.SourceTimeout())
	assert.Equal(t, time.Hour, cfg.PrefetchInterval())

	cfg.Source = nil
	cfg.Prefetch = nil

	assert.Equal(t, 30*time.Second, cfg.SourceTimeout())
	assert.Zero(t, cfg.PrefetchInterval())
}

func TestConfig_Read(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := Read(filepath.Join(t.TempDir(), "missing.toml"))
		assert.Error(t, err)
	})

	t.Run("partial file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")

		content := `
listen_address = "127.0.0.1:9000"

[auth]
enabled = false

[prefetch]
currencies = ["USD", "PLN"]
interval = "15m"
`

		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Read(path)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddress)
		assert.False(t, cfg.Auth.Enabled)
		assert.Equal(t, []string{"USD", "PLN"}, cfg.Prefetch.Currencies)
		assert.Equal(t, 15*time.Minute, cfg.PrefetchInterval())

		// Omitted sections fall back to the defaults
		assert.Equal(t, DefaultSourceURL, cfg.Source.BaseURL)
		assert.Nil(t, cfg.RateLimit)
		assert.Nil(t, cfg.CORSConfig)

		assert.NoError(t, ValidateConfig(cfg))
	})
}

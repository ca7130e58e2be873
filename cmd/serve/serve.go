package serve

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/fxcross/apikey"
	"github.com/sig-0/fxcross/cmd/env"
	"github.com/sig-0/fxcross/crossrate"
	"github.com/sig-0/fxcross/ingest"
	"github.com/sig-0/fxcross/metrics"
	"github.com/sig-0/fxcross/provider/ecb"
	"github.com/sig-0/fxcross/server"
	"github.com/sig-0/fxcross/server/config"
	"github.com/sig-0/fxcross/storage"
)

// serveCfg wraps the serve configuration
type serveCfg struct {
	config *config.Config

	configPath string
	noAuth     bool
}

// backend is the datastore the service runs on
type backend interface {
	storage.Storage
	storage.KeyStorage
}

// NewServeCmd creates the serve subcommand
func NewServeCmd() *ffcli.Command {
	cfg := &serveCfg{
		config: config.DefaultConfig(),
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg.registerFlags(fs)

	cmd := &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve <subcommand> [flags]",
		LongHelp:   "Serves the fxcross backend",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}

	cmd.Subcommands = []*ffcli.Command{
		newServeSQLCmd(cfg),
		newServeRedisCmd(cfg),
		newServeMemoryCmd(cfg),
	}

	return cmd
}

func (c *serveCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.config.ListenAddress,
		"listen",
		config.DefaultListenAddress,
		"the IP:PORT URL for the server",
	)

	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the server TOML configuration, if any",
	)

	fs.BoolVar(
		&c.noAuth,
		"no-auth",
		false,
		"flag indicating if exchange queries are served without an API key",
	)
}

// loadConfig reads the server configuration file, if any,
// and applies the flag overrides
func (c *serveCfg) loadConfig() error {
	if c.configPath != "" {
		listenAddress := c.config.ListenAddress

		serverCfg, err := config.Read(c.configPath)
		if err != nil {
			return fmt.Errorf("unable to read server config, %w", err)
		}

		// An explicit flag takes precedence over the file
		if listenAddress != config.DefaultListenAddress {
			serverCfg.ListenAddress = listenAddress
		}

		c.config = serverCfg
	}

	if c.noAuth && c.config.Auth != nil {
		c.config.Auth.Enabled = false
	}

	if err := config.ValidateConfig(c.config); err != nil {
		return fmt.Errorf("invalid server config, %w", err)
	}

	return nil
}

// run wires up the cross rate engine, the prefetch orchestrator and the server
// on top of the given datastore, and serves until interrupted [BLOCKING]
func (c *serveCfg) run(ctx context.Context, logger *slog.Logger, store backend) error {
	// Set up the metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := metrics.New(reg)

	// Create the rate source and the engine
	source := ecb.NewSource(c.config.Source.BaseURL, c.config.SourceTimeout())

	engine := crossrate.New(
		source,
		store,
		crossrate.WithLogger(logger),
		crossrate.WithMetrics(m),
	)

	// Wait for in-flight non-trading day writes before closing the store
	defer engine.Wait()

	// Create the prefetch service
	orchestrator := ingest.New(
		store,
		ingest.WithLogger(logger),
		ingest.WithMetrics(m),
	)

	for _, provider := range defaultProviders(c.config, source) {
		if err := orchestrator.Register(provider); err != nil {
			return fmt.Errorf("unable to register provider: %w", err)
		}
	}

	// Create the server instance
	s, err := server.New(
		store,
		engine,
		server.WithLogger(logger),
		server.WithConfig(c.config),
		server.WithKeys(apikey.NewManager(store)),
		server.WithMetrics(m, reg),
	)
	if err != nil {
		return fmt.Errorf("unable to create server, %w", err)
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	// Start the HTTP server
	group.Go(func() error {
		return s.Serve(gCtx)
	})

	// Start the prefetch service
	group.Go(func() error {
		return orchestrator.Start(gCtx)
	})

	return group.Wait()
}

// newLogger creates the service logger
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

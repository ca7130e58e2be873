package keys

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/redis/go-redis/v9"

	"github.com/sig-0/fxcross/apikey"
	"github.com/sig-0/fxcross/cmd/env"
	"github.com/sig-0/fxcross/storage"
	redisStorage "github.com/sig-0/fxcross/storage/redis"
	sqlStorage "github.com/sig-0/fxcross/storage/sql"
	gen "github.com/sig-0/fxcross/storage/sql/gen"
)

const (
	backendSQL   = "sql"
	backendRedis = "redis"
)

var errUnknownBackend = errors.New("unknown key store backend")

// keysCfg wraps the keys configuration
type keysCfg struct {
	backend string
}

// NewKeysCmd creates the keys subcommand
func NewKeysCmd() *ffcli.Command {
	cfg := &keysCfg{}

	fs := flag.NewFlagSet("keys", flag.ExitOnError)
	cfg.registerFlags(fs)

	cmd := &ffcli.Command{
		Name:       "keys",
		ShortUsage: "keys <subcommand> [flags]",
		LongHelp:   "Manages the fxcross API keys",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
	}

	cmd.Subcommands = []*ffcli.Command{
		newGenerateCmd(cfg),
		newExpireCmd(cfg),
	}

	return cmd
}

func (c *keysCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.backend,
		"backend",
		backendSQL,
		fmt.Sprintf("the key store backend (%s, %s)", backendSQL, backendRedis),
	)
}

// openManager opens the configured key store, and returns a key manager over it.
// The returned close callback releases the store
func (c *keysCfg) openManager(ctx context.Context) (*apikey.Manager, func(), error) {
	// Load .env
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	store, closeFn, err := c.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	return apikey.NewManager(store), closeFn, nil
}

func (c *keysCfg) openStore(ctx context.Context) (storage.KeyStorage, func(), error) {
	switch c.backend {
	case backendSQL:
		dsn := os.Getenv(env.Name(env.DBURLSuffix))
		if dsn == "" {
			return nil, nil, fmt.Errorf("missing %s", env.Name(env.DBURLSuffix))
		}

		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open DB pool: %w", err)
		}

		return sqlStorage.NewStorage(gen.New(pool)), pool.Close, nil
	case backendRedis:
		rawURL := os.Getenv(env.Name(env.RedisURLSuffix))
		if rawURL == "" {
			return nil, nil, fmt.Errorf("missing %s", env.Name(env.RedisURLSuffix))
		}

		opts, err := redis.ParseURL(rawURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid %s: %w", env.Name(env.RedisURLSuffix), err)
		}

		client := redis.NewClient(opts)

		return redisStorage.NewStorage(client), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", errUnknownBackend, c.backend)
	}
}

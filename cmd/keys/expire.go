package keys

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/fxcross/cmd/env"
)

var errMissingKey = errors.New("no API key provided")

// newExpireCmd creates the keys expire command
func newExpireCmd(rootCfg *keysCfg) *ffcli.Command {
	fs := flag.NewFlagSet("expire", flag.ExitOnError)
	rootCfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "expire",
		ShortUsage: "keys expire [flags] <key> [<key>...]",
		LongHelp:   "Expires the given API keys",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return errMissingKey
			}

			manager, closeFn, err := rootCfg.openManager(ctx)
			if err != nil {
				return err
			}

			defer closeFn()

			for _, key := range args {
				if err = manager.Expire(ctx, key); err != nil {
					return fmt.Errorf("unable to expire key: %w", err)
				}
			}

			fmt.Printf("Expired %d key(s)\n", len(args))

			return nil
		},
		Options: []ff.Option{
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

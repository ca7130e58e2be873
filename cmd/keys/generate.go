package keys

import (
	"context"
	"flag"
	"fmt"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/fxcross/cmd/env"
)

// newGenerateCmd creates the keys generate command
func newGenerateCmd(rootCfg *keysCfg) *ffcli.Command {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	rootCfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "generate",
		ShortUsage: "keys generate [flags]",
		LongHelp:   "Issues a new API key. The key is only displayed once",
		FlagSet:    fs,
		Exec: func(ctx context.Context, _ []string) error {
			manager, closeFn, err := rootCfg.openManager(ctx)
			if err != nil {
				return err
			}

			defer closeFn()

			key, err := manager.Issue(ctx)
			if err != nil {
				return err
			}

			fmt.Println(key)

			return nil
		},
		Options: []ff.Option{
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/fxcross/cmd/env"
	"github.com/sig-0/fxcross/crossrate"
	"github.com/sig-0/fxcross/provider/currencies"
	"github.com/sig-0/fxcross/provider/ecb"
	"github.com/sig-0/fxcross/storage/memory"
	"github.com/sig-0/fxcross/storage/types"
)

var errInvalidPair = errors.New("invalid pair")

// generateCfg wraps the one-shot generate configuration
type generateCfg struct {
	out io.Writer

	pairs     string
	startDate string
	endDate   string
	sourceURL string
	timeout   time.Duration
}

// newGenerateCmd creates the one-shot generate command
func newGenerateCmd(out io.Writer) *ffcli.Command {
	cfg := &generateCfg{
		out: out,
	}

	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "generate",
		ShortUsage: "generate -pairs USD-PLN,JPY-CNY -start 2020-11-16 -end 2020-11-20",
		LongHelp:   "Prints the cross rates of the given pairs as JSON, using an in-memory cache",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *generateCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.pairs, "pairs", "", "comma separated FROM-TO currency pairs")
	fs.StringVar(&c.startDate, "start", "", "the first day of the range (yyyy-mm-dd)")
	fs.StringVar(&c.endDate, "end", "", "the last day of the range (yyyy-mm-dd)")
	fs.StringVar(&c.sourceURL, "source-url", ecb.DefaultBaseURL, "the ECB data API root")
	fs.DurationVar(&c.timeout, "timeout", 30*time.Second, "the source request timeout")
}

func (c *generateCfg) exec(ctx context.Context, _ []string) error {
	pairs, err := parsePairs(c.pairs)
	if err != nil {
		return err
	}

	start, err := civil.ParseDate(c.startDate)
	if err != nil {
		return fmt.Errorf("invalid start date, %w", err)
	}

	end, err := civil.ParseDate(c.endDate)
	if err != nil {
		return fmt.Errorf("invalid end date, %w", err)
	}

	engine := crossrate.New(
		ecb.NewSource(c.sourceURL, c.timeout),
		memory.NewStorage(),
	)
	defer engine.Wait()

	rates, err := engine.Generate(ctx, pairs, start, end, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("unable to generate cross rates, %w", err)
	}

	if rates == nil {
		rates = []*types.CrossRate{}
	}

	encoder := json.NewEncoder(c.out)
	encoder.SetIndent("", "  ")

	return encoder.Encode(rates)
}

// parsePairs parses the FROM-TO,FROM-TO pair list.
// Codes follow the same rule as the HTTP exchanges query
func parsePairs(raw string) ([]types.Pair, error) {
	parts := strings.Split(raw, ",")
	pairs := make([]types.Pair, 0, len(parts))

	for _, part := range parts {
		codes := strings.Split(strings.TrimSpace(part), "-")
		if len(codes) != 2 {
			return nil, fmt.Errorf("%w: %q", errInvalidPair, part)
		}

		for _, code := range codes {
			if err := currencies.Validate(code); err != nil {
				return nil, fmt.Errorf("%w: %q, %w", errInvalidPair, part, err)
			}
		}

		pairs = append(pairs, types.Pair{
			From: types.Currency(codes[0]),
			To:   types.Currency(codes[1]),
		})
	}

	return pairs, nil
}

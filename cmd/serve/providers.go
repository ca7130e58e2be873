package serve

import (
	"github.com/sig-0/fxcross/crossrate"
	"github.com/sig-0/fxcross/ingest"
	"github.com/sig-0/fxcross/provider/ecb"
	"github.com/sig-0/fxcross/server/config"
	"github.com/sig-0/fxcross/storage/types"
)

// defaultProviders returns the prefetch providers of the configured currencies
func defaultProviders(cfg *config.Config, source crossrate.Source) []ingest.Provider {
	if cfg.Prefetch == nil || len(cfg.Prefetch.Currencies) == 0 {
		return nil
	}

	codes := make([]types.Currency, 0, len(cfg.Prefetch.Currencies))
	for _, c := range cfg.Prefetch.Currencies {
		codes = append(codes, types.Currency(c))
	}

	return []ingest.Provider{
		// ECB reference rates of the hot currencies
		ecb.NewFeed(source, codes, cfg.PrefetchInterval()),
	}
}

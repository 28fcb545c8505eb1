package main

import (
	"context"

	"github.com/sells-group/statements-cli/internal/edgar"
	"github.com/sells-group/statements-cli/internal/fetcher"
	"github.com/sells-group/statements-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	return store.Open(ctx, store.Options{
		Driver:      cfg.Store.Driver,
		DatabaseURL: cfg.Store.DatabaseURL,
		Pool: &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		},
	})
}

func initFetcher() fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.EDGAR.UserAgent,
		Timeout:    cfg.EDGAR.Timeout(),
		MaxRetries: cfg.EDGAR.MaxRetries,
	})
}

func initEDGAR(f fetcher.Fetcher) *edgar.Client {
	return edgar.NewClient(f, edgar.ClientOptions{
		SubmissionsURL: cfg.EDGAR.SubmissionsURL,
		ArchivesURL:    cfg.EDGAR.ArchivesURL,
	})
}

// initLookup resolves tickers from the configured table first and falls
// back to SEC's full ticker list.
func initLookup(f fetcher.Fetcher) edgar.TickerLookup {
	return edgar.ChainLookup{
		edgar.StaticLookup(cfg.Tickers),
		edgar.NewSECLookup(f, cfg.EDGAR.TickersURL),
	}
}

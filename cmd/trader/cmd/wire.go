package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/feed"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/store"
)

func openSource(cfg *config.Config, hours int) engine.PriceSource {
	asset := cfg.Asset()
	switch cfg.Feed.Provider {
	case "csv":
		return feed.CSVSource{Path: cfg.Feed.CSVPath}
	case "cryptocompare":
		return feed.NewCryptoCompare(asset, hours)
	case "coingecko":
		return feed.NewCoinGecko(asset, hours)
	default:
		return feed.NewDefault(asset, hours)
	}
}

// openStore returns the configured snapshot store and a func that releases it.
func openStore(cfg *config.Config) (store.Store, func() error, error) {
	nop := func() error { return nil }
	switch cfg.State.Backend {
	case "redis":
		r, err := store.NewRedis(cfg.State.Redis)
		if err != nil {
			return nil, nop, err
		}
		return r, r.Close, nil
	default:
		f, err := store.NewFile(cfg.State.Dir)
		if err != nil {
			return nil, nop, err
		}
		return f, nop, nil
	}
}

// openJournal fans out to every configured sink.
func openJournal(cfg *config.Config) (journal.Journal, error) {
	var sinks journal.Multi
	open := func(path string, fn func(string) (journal.Journal, error)) error {
		if path == "" {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		j, err := fn(path)
		if err != nil {
			return fmt.Errorf("open journal %s: %w", path, err)
		}
		sinks = append(sinks, j)
		return nil
	}

	err := open(cfg.Journal.JSONL, func(p string) (journal.Journal, error) { return journal.NewJSONL(p) })
	if err == nil {
		err = open(cfg.Journal.CSV, func(p string) (journal.Journal, error) { return journal.NewCSV(p) })
	}
	if err == nil {
		err = open(cfg.Journal.SQLite, func(p string) (journal.Journal, error) { return journal.NewSQLite(p) })
	}
	if err != nil {
		_ = sinks.Close()
		return nil, err
	}
	if len(sinks) == 0 {
		return journal.Discard, nil
	}
	return sinks, nil
}

// loadHistory reads bars from dataCSV when given, otherwise fetches
// cfg.Backtest.Hours of history from the configured provider.
func loadHistory(ctx context.Context, cfg *config.Config, dataCSV string) (market.Series, string, error) {
	if dataCSV != "" {
		bars, err := feed.LoadCSV(dataCSV)
		return bars, dataCSV, err
	}
	bars, err := openSource(cfg, cfg.Backtest.Hours).Bars(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("fetch history: %w", err)
	}
	return bars, cfg.Feed.Provider, nil
}

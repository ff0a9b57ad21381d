package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/google/subcommands"
)

type cacheCmd struct {
	symbol string
	all    bool
}

func (*cacheCmd) Name() string     { return "cache" }
func (*cacheCmd) Synopsis() string { return "clear cached bar data" }
func (*cacheCmd) Usage() string {
	return `cache -symbol AAPL | cache -all:
  Clear cached bars for one symbol, or the whole cache.
`
}

func (c *cacheCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "clear entries for this symbol")
	f.BoolVar(&c.all, "all", false, "clear the entire cache")
}

func (c *cacheCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" && !c.all {
		slog.Error("need -symbol or -all")
		return subcommands.ExitUsageError
	}

	a, err := initApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.all {
		if err := a.Manager.ClearAllCache(ctx); err != nil {
			slog.Error("clear cache", "error", err)
			return subcommands.ExitFailure
		}
		slog.Info("cache cleared")
		return subcommands.ExitSuccess
	}
	if err := a.Manager.ClearCache(ctx, c.symbol); err != nil {
		slog.Error("clear cache", "symbol", c.symbol, "error", err)
		return subcommands.ExitFailure
	}
	slog.Info("cache cleared", "symbol", c.symbol)
	return subcommands.ExitSuccess
}

package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/google/subcommands"
)

type infoCmd struct {
	symbol string
}

func (*infoCmd) Name() string     { return "info" }
func (*infoCmd) Synopsis() string { return "fetch ticker reference info" }
func (*infoCmd) Usage() string {
	return `info -symbol AAPL:
  Fetch ticker metadata merged across all capable providers, as JSON.
`
}

func (c *infoCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "ticker symbol (required)")
}

func (c *infoCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		slog.Error("missing -symbol")
		return subcommands.ExitUsageError
	}

	a, err := initApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	info, err := a.Manager.GetTickerInfo(ctx, c.symbol)
	if err != nil {
		slog.Error("fetch ticker info", "symbol", c.symbol, "error", err)
		return subcommands.ExitFailure
	}
	if err := printJSON(info); err != nil {
		slog.Error("print ticker info", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

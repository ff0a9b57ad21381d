package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/google/subcommands"
)

type dividendsCmd struct {
	symbol string
	limit  int
}

func (*dividendsCmd) Name() string     { return "dividends" }
func (*dividendsCmd) Synopsis() string { return "fetch dividend history" }
func (*dividendsCmd) Usage() string {
	return `dividends -symbol AAPL [-limit 12]:
  Fetch dividend events for a symbol, as JSON.
`
}

func (c *dividendsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "ticker symbol (required)")
	f.IntVar(&c.limit, "limit", 12, "max events to fetch")
}

func (c *dividendsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	events, err := a.Manager.GetDividends(ctx, c.symbol, c.limit)
	if err != nil {
		slog.Error("fetch dividends", "symbol", c.symbol, "error", err)
		return subcommands.ExitFailure
	}
	if err := printJSON(events); err != nil {
		slog.Error("print dividends", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

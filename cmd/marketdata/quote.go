package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/google/subcommands"
)

type quoteCmd struct {
	symbols string
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "fetch current quotes" }
func (*quoteCmd) Usage() string {
	return `quote -symbols AAPL,MSFT:
  Fetch current bid/ask quotes and print them as JSON.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "symbols", "", "comma-separated ticker symbols (required)")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols := splitSymbols(c.symbols)
	if len(symbols) == 0 {
		slog.Error("missing -symbols")
		return subcommands.ExitUsageError
	}

	a, err := initApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if len(symbols) == 1 {
		quote, err := a.Manager.GetQuote(ctx, symbols[0])
		if err != nil {
			slog.Error("fetch quote", "symbol", symbols[0], "error", err)
			return subcommands.ExitFailure
		}
		if err := printJSON(quote); err != nil {
			slog.Error("print quote", "error", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	quotes, err := a.Manager.GetQuotes(ctx, symbols)
	if err != nil {
		slog.Error("fetch quotes", "error", err)
		return subcommands.ExitFailure
	}
	if err := printJSON(quotes); err != nil {
		slog.Error("print quotes", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/google/subcommands"

	"marketdata/internal/model"
)

type barsCmd struct {
	symbol    string
	timeframe string
	start     string
	end       string
}

func (*barsCmd) Name() string     { return "bars" }
func (*barsCmd) Synopsis() string { return "fetch OHLCV bars for a symbol" }
func (*barsCmd) Usage() string {
	return `bars -symbol AAPL [-timeframe 1day] [-start 2024-01-01] [-end 2024-02-01]:
  Fetch bars through the provider chain and print them as JSON.
`
}

func (c *barsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "ticker symbol (required)")
	f.StringVar(&c.timeframe, "timeframe", "1day", "bar timeframe: 1min, 5min, 15min, 1hour, 1day")
	f.StringVar(&c.start, "start", "", "range start, YYYY-MM-DD (default 30 days back)")
	f.StringVar(&c.end, "end", "", "range end, YYYY-MM-DD (default today)")
}

func (c *barsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" {
		slog.Error("missing -symbol")
		return subcommands.ExitUsageError
	}
	timeframe, err := model.ParseTimeframe(c.timeframe)
	if err != nil {
		slog.Error("bad -timeframe", "error", err)
		return subcommands.ExitUsageError
	}
	end, err := parseDate(c.end, today())
	if err != nil {
		slog.Error("bad -end", "error", err)
		return subcommands.ExitUsageError
	}
	start, err := parseDate(c.start, end.AddDate(0, 0, -30))
	if err != nil {
		slog.Error("bad -start", "error", err)
		return subcommands.ExitUsageError
	}

	a, err := initApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	bars, err := a.Manager.GetBars(ctx, c.symbol, start, end, timeframe)
	if err != nil {
		slog.Error("fetch bars", "symbol", c.symbol, "error", err)
		return subcommands.ExitFailure
	}
	slog.Info("bars fetched", "symbol", c.symbol, "timeframe", timeframe, "count", len(bars))
	if err := printJSON(bars); err != nil {
		slog.Error("print bars", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

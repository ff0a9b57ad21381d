package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/google/subcommands"

	"marketdata/internal/earnings"
	"marketdata/internal/warm"
)

type earningsCmd struct {
	symbol   string
	limit    int
	calendar bool
	symbols  string
	file     string
	out      string
	start    string
	end      string
}

func (*earningsCmd) Name() string     { return "earnings" }
func (*earningsCmd) Synopsis() string { return "fetch earnings events or build the earnings calendar" }
func (*earningsCmd) Usage() string {
	return `earnings -symbol AAPL [-limit 12]:
  Fetch historical earnings events for one symbol, as JSON.

earnings -calendar -symbols AAPL,MSFT [-out PATH] [-start ...] [-end ...]:
  Fetch earnings dates for many symbols and cache the calendar to disk.
`
}

func (c *earningsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "ticker symbol (event list mode)")
	f.IntVar(&c.limit, "limit", 12, "max events to fetch")
	f.BoolVar(&c.calendar, "calendar", false, "build and cache the earnings calendar")
	f.StringVar(&c.symbols, "symbols", "", "comma-separated symbols (calendar mode)")
	f.StringVar(&c.file, "file", "", "symbols file, .txt or .json (calendar mode)")
	f.StringVar(&c.out, "out", earnings.DefaultCachePath, "calendar cache path")
	f.StringVar(&c.start, "start", "", "calendar window start, YYYY-MM-DD")
	f.StringVar(&c.end, "end", "", "calendar window end, YYYY-MM-DD")
}

func (c *earningsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.calendar {
		return c.buildCalendar(ctx)
	}
	if c.symbol == "" {
		slog.Error("missing -symbol (or use -calendar with -symbols)")
		return subcommands.ExitUsageError
	}

	a, err := initApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	events, err := a.Manager.GetEarnings(ctx, c.symbol, c.limit)
	if err != nil {
		slog.Error("fetch earnings", "symbol", c.symbol, "error", err)
		return subcommands.ExitFailure
	}
	if err := printJSON(events); err != nil {
		slog.Error("print earnings", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *earningsCmd) buildCalendar(ctx context.Context) subcommands.ExitStatus {
	symbols := splitSymbols(c.symbols)
	if c.file != "" {
		fromFile, err := warm.LoadSymbolsFile(c.file)
		if err != nil {
			slog.Error("load symbols file", "error", err)
			return subcommands.ExitFailure
		}
		symbols = append(symbols, fromFile...)
	}
	if len(symbols) == 0 {
		slog.Error("missing -symbols or -file")
		return subcommands.ExitUsageError
	}
	start, err := parseDate(c.start, zeroTime)
	if err != nil {
		slog.Error("bad -start", "error", err)
		return subcommands.ExitUsageError
	}
	end, err := parseDate(c.end, zeroTime)
	if err != nil {
		slog.Error("bad -end", "error", err)
		return subcommands.ExitUsageError
	}

	a, err := initApp()
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	p := a.EarningsProvider()
	if p == nil {
		slog.Error("no configured provider serves earnings", "providers", a.Config.Providers)
		return subcommands.ExitFailure
	}
	fetcher, err := earnings.NewFetcher(p)
	if err != nil {
		slog.Error("build earnings fetcher", "error", err)
		return subcommands.ExitFailure
	}

	cal, err := fetcher.FetchAndCache(ctx, symbols, c.out, start, end)
	if err != nil {
		slog.Error("build earnings calendar", "error", err)
		return subcommands.ExitFailure
	}
	total := 0
	for _, evs := range cal.Events {
		total += len(evs)
	}
	slog.Info("earnings calendar cached", "path", c.out, "symbols", len(cal.Events), "events", total)
	return subcommands.ExitSuccess
}

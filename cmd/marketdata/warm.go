package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/google/subcommands"

	"marketdata/internal/model"
	"marketdata/internal/warm"
)

type warmCmd struct {
	symbols   string
	file      string
	timeframe string
	start     string
	end       string
	workers   int
}

func (*warmCmd) Name() string     { return "warm" }
func (*warmCmd) Synopsis() string { return "pre-load the bar cache for many symbols" }
func (*warmCmd) Usage() string {
	return `warm -symbols AAPL,MSFT [-file symbols.txt] [-timeframe 1day] [-start ...] [-end ...] [-workers 4]:
  Fetch bars for each symbol through the provider chain so later reads hit
  the cache. Progress is tracked per symbol and completed ranges are
  skipped on re-runs.
`
}

func (c *warmCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "symbols", "", "comma-separated ticker symbols")
	f.StringVar(&c.file, "file", "", "symbols file, .txt or .json")
	f.StringVar(&c.timeframe, "timeframe", "1day", "bar timeframe: 1min, 5min, 15min, 1hour, 1day")
	f.StringVar(&c.start, "start", "", "range start, YYYY-MM-DD (default 30 days back)")
	f.StringVar(&c.end, "end", "", "range end, YYYY-MM-DD (default today)")
	f.IntVar(&c.workers, "workers", 0, "concurrent fetchers (default 4)")
}

func (c *warmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	pool := warm.NewPool(a.Manager, warm.Config{
		Workers:      c.workers,
		ReportDir:    a.Config.WarmReportDir(),
		ProgressPath: a.Config.WarmProgressPath(),
	})
	jobs := warm.JobsForSymbols(symbols, start, end, timeframe)
	summary := pool.Run(ctx, jobs)

	if summary.Failed > 0 {
		slog.Warn("warm failures", "failed", summary.Failed, "reasons", warm.JoinFailedReasons(summary.FailedJobs))
	}
	if summary.Success == 0 && summary.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

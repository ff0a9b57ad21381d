package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"github.com/google/subcommands"
)

type calendarCmd struct {
	start string
	end   string
}

func (*calendarCmd) Name() string     { return "calendar" }
func (*calendarCmd) Synopsis() string { return "list trading dates in a range" }
func (*calendarCmd) Usage() string {
	return `calendar [-start 2024-01-01] [-end 2024-02-01]:
  Print US equity trading dates in the range, one per line.
`
}

func (c *calendarCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "start", "", "range start, YYYY-MM-DD (default today)")
	f.StringVar(&c.end, "end", "", "range end, YYYY-MM-DD (default 30 days ahead)")
}

func (c *calendarCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	start, err := parseDate(c.start, today())
	if err != nil {
		slog.Error("bad -start", "error", err)
		return subcommands.ExitUsageError
	}
	end, err := parseDate(c.end, start.AddDate(0, 0, 30))
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

	dates, err := a.Manager.GetTradingDates(ctx, start, end)
	if err != nil {
		slog.Error("fetch trading dates", "error", err)
		return subcommands.ExitFailure
	}
	for _, d := range dates {
		fmt.Println(d.Format(dateLayout))
	}
	slog.Info("trading dates", "start", start.Format(dateLayout), "end", end.Format(dateLayout), "count", len(dates))
	return subcommands.ExitSuccess
}

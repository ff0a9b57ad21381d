package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/google/subcommands"
)

type snapshotCmd struct {
	symbols string
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "fetch market snapshots" }
func (*snapshotCmd) Usage() string {
	return `snapshot -symbols AAPL,MSFT:
  Fetch full market snapshots (quote, daily bar, previous close) as JSON.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "symbols", "", "comma-separated ticker symbols (required)")
}

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
		snap, err := a.Manager.GetSnapshot(ctx, symbols[0])
		if err != nil {
			slog.Error("fetch snapshot", "symbol", symbols[0], "error", err)
			return subcommands.ExitFailure
		}
		if err := printJSON(snap); err != nil {
			slog.Error("print snapshot", "error", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	snaps, err := a.Manager.GetSnapshots(ctx, symbols)
	if err != nil {
		slog.Error("fetch snapshots", "error", err)
		return subcommands.ExitFailure
	}
	if err := printJSON(snaps); err != nil {
		slog.Error("print snapshots", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

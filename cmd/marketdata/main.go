package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"marketdata/internal/slogx"
)

func init() {
	slog.SetDefault(slogx.NewDefault("info"))
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&barsCmd{}, "data")
	subcommands.Register(&quoteCmd{}, "data")
	subcommands.Register(&snapshotCmd{}, "data")

	subcommands.Register(&infoCmd{}, "reference")
	subcommands.Register(&earningsCmd{}, "reference")
	subcommands.Register(&dividendsCmd{}, "reference")
	subcommands.Register(&calendarCmd{}, "reference")

	subcommands.Register(&warmCmd{}, "cache")
	subcommands.Register(&cacheCmd{}, "cache")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(int(subcommands.Execute(ctx)))
}

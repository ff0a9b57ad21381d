package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"marketdata/internal/app"
	"marketdata/internal/slogx"
)

const dateLayout = "2006-01-02"

// zeroTime marks "no date given, let the callee pick its default".
var zeroTime time.Time

// initApp builds the dependency graph and switches the logger to the
// configured level.
func initApp() (*app.App, error) {
	a, err := InitializeApp()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slogx.NewDefault(a.Config.LogLevel))
	return a, nil
}

// parseDate reads a YYYY-MM-DD flag value, using def when empty.
func parseDate(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q (use YYYY-MM-DD)", s)
	}
	return t.UTC(), nil
}

// today is midnight UTC of the current day.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// splitSymbols turns a comma list into trimmed upper-case symbols.
func splitSymbols(s string) []string {
	parts := strings.Split(s, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			symbols = append(symbols, p)
		}
	}
	return symbols
}

// printJSON writes v to stdout as indented JSON. Logs go to stderr, so
// stdout stays parseable.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}

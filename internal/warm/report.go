package warm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

func writeRunReport(dir string, successList []string, failedList []FailedEntry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if len(successList) > 0 {
		p := filepath.Join(dir, ".lastrun.success.json")
		data, err := json.MarshalIndent(successList, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return err
		}
		slog.Info("report wrote success", "path", p, "symbols", len(successList))
	}
	if len(failedList) > 0 {
		p := filepath.Join(dir, ".lastrun.failed.json")
		data, err := json.MarshalIndent(failedList, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return err
		}
		slog.Info("report wrote failed", "path", p, "count", len(failedList))
	}
	return nil
}

func appendUnique(list []string, symbol string) []string {
	for _, s := range list {
		if s == symbol {
			return list
		}
	}
	return append(list, symbol)
}

// JoinFailedReasons compacts failures into one line for summary logs,
// truncated past the first five.
func JoinFailedReasons(failedList []FailedEntry) string {
	if len(failedList) == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range failedList {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Symbol)
		b.WriteString(": ")
		b.WriteString(f.Reason)
		if i >= 4 && len(failedList) > 6 {
			b.WriteString(fmt.Sprintf(" (+%d more)", len(failedList)-5))
			break
		}
	}
	return b.String()
}

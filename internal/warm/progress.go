package warm

import (
	"log/slog"
	"os"

	json "github.com/goccy/go-json"
)

// ProgressUpdate is sent when a symbol warms successfully.
type ProgressUpdate struct {
	Symbol string
	Date   string
}

func loadProgress(path string) map[string]string {
	data, err := os.ReadFile(path)
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return make(map[string]string)
	}
	return m
}

// filterJobs drops jobs whose symbol is already recorded as warmed to the
// job's end date or later.
func filterJobs(jobs []Job, progressPath string) (keep []Job, skipped int) {
	m := loadProgress(progressPath)
	for _, j := range jobs {
		last, ok := m[j.Symbol]
		if ok && last >= j.End.Format(dateLayout) {
			skipped++
			continue
		}
		keep = append(keep, j)
	}
	return keep, skipped
}

// RunProgressWriter receives updates and persists them to path. Run as a
// goroutine; returns when the channel closes.
func RunProgressWriter(path string, updates <-chan ProgressUpdate) {
	m := loadProgress(path)
	for u := range updates {
		m[u.Symbol] = u.Date
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			slog.Warn("progress marshal error", "error", err)
			continue
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			slog.Warn("progress write error", "error", err)
		}
	}
}

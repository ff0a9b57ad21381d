// Package warm bulk-loads the bar cache ahead of trading. A worker pool
// fans symbols out over the manager, which keeps its usual per-request
// provider fallback, so warming is just many GetBars calls with reporting.
package warm

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketdata/internal/model"
)

const (
	defaultWorkers    = 4
	heartbeatInterval = 30 * time.Second
	dateLayout        = "2006-01-02"
)

// Fetcher is the slice of the manager the pool needs.
type Fetcher interface {
	GetBars(ctx context.Context, symbol string, start, end time.Time, timeframe model.Timeframe) ([]model.Bar, error)
}

// Job is one warm unit: a symbol and the range to load.
type Job struct {
	Symbol    string
	Start     time.Time
	End       time.Time
	Timeframe model.Timeframe
}

// Result is sent by workers for fan-in.
type Result struct {
	Ok        bool
	Symbol    string
	DateRange string
	Reason    string
	Bars      int
}

// FailedEntry is one failed job in the run report.
type FailedEntry struct {
	Symbol    string `json:"symbol"`
	DateRange string `json:"date_range"`
	Reason    string `json:"reason"`
}

// Summary is the outcome of one warm run.
type Summary struct {
	Success    int
	Failed     int
	Skipped    int
	Bars       int
	FailedJobs []FailedEntry
}

// Config tunes a Pool. Zero values mean defaults; empty paths disable the
// run report and progress tracking.
type Config struct {
	Workers      int
	ReportDir    string
	ProgressPath string
}

// Pool runs warm jobs with bounded concurrency.
type Pool struct {
	fetcher      Fetcher
	workers      int
	reportDir    string
	progressPath string
}

// NewPool builds a pool over f.
func NewPool(f Fetcher, cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Pool{
		fetcher:      f,
		workers:      workers,
		reportDir:    cfg.ReportDir,
		progressPath: cfg.ProgressPath,
	}
}

// JobsForSymbols builds one job per symbol over a shared range.
func JobsForSymbols(symbols []string, start, end time.Time, timeframe model.Timeframe) []Job {
	jobs := make([]Job, 0, len(symbols))
	for _, s := range symbols {
		jobs = append(jobs, Job{Symbol: s, Start: start, End: end, Timeframe: timeframe})
	}
	return jobs
}

// Run executes the jobs and writes the run report. Symbols already warmed
// to the requested end date are skipped via the progress file.
func (p *Pool) Run(ctx context.Context, jobs []Job) Summary {
	runID := uuid.NewString()

	var skipped int
	if p.progressPath != "" {
		jobs, skipped = filterJobs(jobs, p.progressPath)
	}
	if len(jobs) == 0 {
		slog.Info("no jobs to warm, skip", "run_id", runID, "skipped", skipped)
		return Summary{Skipped: skipped}
	}
	if skipped > 0 {
		slog.Info("symbols up to date, jobs to warm", "run_id", runID, "skipped", skipped, "jobs", len(jobs))
	} else {
		slog.Info("jobs to warm", "run_id", runID, "jobs", len(jobs))
	}

	var updates chan ProgressUpdate
	var progressWg sync.WaitGroup
	if p.progressPath != "" {
		updates = make(chan ProgressUpdate, len(jobs))
		progressWg.Add(1)
		go func() {
			defer progressWg.Done()
			RunProgressWriter(p.progressPath, updates)
		}()
	}

	pending := make(chan Job, len(jobs))
	for _, j := range jobs {
		pending <- j
	}
	close(pending)

	results := make(chan Result, len(jobs))
	var mu sync.Mutex
	var success, failed int
	barsPerSymbol := make(map[string]int)
	var successList []string
	var failedList []FailedEntry
	var collectWg sync.WaitGroup
	collectWg.Add(1)
	go func() {
		defer collectWg.Done()
		collectResults(results, &mu, &success, &failed, barsPerSymbol, &successList, &failedList)
	}()

	hbCtx, hbCancel := context.WithCancel(ctx)
	go runHeartbeat(hbCtx, heartbeatInterval, len(jobs), &mu, &success, &failed, barsPerSymbol)

	var wg sync.WaitGroup
	wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer wg.Done()
			p.runWorker(ctx, pending, results, updates)
		}()
	}
	wg.Wait()
	close(results)
	collectWg.Wait()
	hbCancel()
	if updates != nil {
		close(updates)
		progressWg.Wait()
	}

	var total int
	for _, n := range barsPerSymbol {
		total += n
	}
	slog.Info("warm done", "run_id", runID, "success", success, "failed", failed, "bars", total)
	logPerSymbol(barsPerSymbol)

	if p.reportDir != "" && (len(successList) > 0 || len(failedList) > 0) {
		if err := writeRunReport(p.reportDir, successList, failedList); err != nil {
			slog.Warn("could not write run report", "error", err)
		} else {
			slog.Info("run report saved", "success", len(successList), "failed", len(failedList))
		}
	}

	return Summary{
		Success:    success,
		Failed:     failed,
		Skipped:    skipped,
		Bars:       total,
		FailedJobs: failedList,
	}
}

func (p *Pool) runWorker(ctx context.Context, pending <-chan Job, results chan<- Result, updates chan<- ProgressUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-pending:
			if !ok {
				return
			}
			dateRange := job.Start.Format(dateLayout) + ".." + job.End.Format(dateLayout)
			bars, err := p.fetcher.GetBars(ctx, job.Symbol, job.Start, job.End, job.Timeframe)
			switch {
			case err != nil:
				slog.Error("warm fail", "symbol", job.Symbol, "date_range", dateRange, "reason", err.Error())
				results <- Result{Ok: false, Symbol: job.Symbol, DateRange: dateRange, Reason: err.Error()}
			case len(bars) == 0:
				slog.Error("warm fail", "symbol", job.Symbol, "date_range", dateRange, "reason", "no data")
				results <- Result{Ok: false, Symbol: job.Symbol, DateRange: dateRange, Reason: "no data"}
			default:
				slog.Info("warm ok", "symbol", job.Symbol, "date_range", dateRange, "bars", len(bars))
				results <- Result{Ok: true, Symbol: job.Symbol, DateRange: dateRange, Bars: len(bars)}
				if updates != nil {
					select {
					case updates <- ProgressUpdate{Symbol: job.Symbol, Date: job.End.Format(dateLayout)}:
					default:
						slog.Warn("progress channel full, skip update", "symbol", job.Symbol)
					}
				}
			}
		}
	}
}

func collectResults(
	results <-chan Result,
	mu *sync.Mutex,
	success, failed *int,
	barsPerSymbol map[string]int,
	successList *[]string,
	failedList *[]FailedEntry,
) {
	for r := range results {
		mu.Lock()
		if r.Ok {
			*success++
			*successList = appendUnique(*successList, r.Symbol)
			barsPerSymbol[r.Symbol] += r.Bars
		} else {
			*failed++
			*failedList = append(*failedList, FailedEntry{Symbol: r.Symbol, DateRange: r.DateRange, Reason: r.Reason})
		}
		mu.Unlock()
	}
}

func runHeartbeat(ctx context.Context, interval time.Duration, totalJobs int, mu *sync.Mutex, success, failed *int, barsPerSymbol map[string]int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mu.Lock()
			s, f := *success, *failed
			var totalBars int
			for _, n := range barsPerSymbol {
				totalBars += n
			}
			mu.Unlock()
			slog.Info("heartbeat", "done", s+f, "total", totalJobs, "success", s, "failed", f, "bars", totalBars)
		}
	}
}

func logPerSymbol(barsPerSymbol map[string]int) {
	if len(barsPerSymbol) == 0 {
		return
	}
	symbols := make([]string, 0, len(barsPerSymbol))
	for s := range barsPerSymbol {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	for _, s := range symbols {
		slog.Info("summary symbol", "symbol", s, "bars", barsPerSymbol[s])
	}
}

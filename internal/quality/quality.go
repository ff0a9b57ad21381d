// Package quality runs sanity checks on fetched bars and quotes.
package quality

import (
	"fmt"
	"math"
	"time"

	"marketdata/internal/model"
)

// Check is a single named validation outcome.
type Check struct {
	Name    string
	Passed  bool
	Message string
}

// Result aggregates the checks run against one bar series.
type Result struct {
	Checks []Check
}

// Passed reports whether every executed check passed.
func (r Result) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Failed returns the checks that failed.
func (r Result) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

const (
	maxBarMovePct   = 0.10 // close-to-close move beyond this is suspicious
	maxIntradayGaps = 10   // tolerated >5min same-day gaps before failing
	gapThreshold    = 5 * time.Minute
)

// ValidateBars runs all quality checks on a bar series, in order:
// not_empty, no_nulls, price_sanity, volume_sanity, timestamp_order,
// gap_detection, ohlc_consistency. An empty series fails not_empty and
// short-circuits the rest.
func ValidateBars(bars []model.Bar) Result {
	var r Result

	if len(bars) == 0 {
		r.Checks = append(r.Checks, Check{"not_empty", false, "No bars provided"})
		return r
	}
	r.Checks = append(r.Checks, Check{"not_empty", true, fmt.Sprintf("%d bars", len(bars))})

	nanCount := 0
	for _, b := range bars {
		for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				nanCount++
			}
		}
	}
	r.Checks = append(r.Checks, countCheck("no_nulls", nanCount, "%d NaN/Inf values"))

	extreme := 0
	for i := 1; i < len(bars); i++ {
		prevClose := bars[i-1].Close
		if prevClose > 0 {
			pct := math.Abs(bars[i].Close-prevClose) / prevClose
			if pct > maxBarMovePct {
				extreme++
			}
		}
	}
	r.Checks = append(r.Checks, countCheck("price_sanity", extreme, "%d bars with >10%% move"))

	negVol := 0
	for _, b := range bars {
		if b.Volume < 0 {
			negVol++
		}
	}
	r.Checks = append(r.Checks, countCheck("volume_sanity", negVol, "%d bars with negative volume"))

	outOfOrder := 0
	for i := 1; i < len(bars); i++ {
		if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			outOfOrder++
		}
	}
	r.Checks = append(r.Checks, countCheck("timestamp_order", outOfOrder, "%d out of order"))

	// Overnight gaps are normal; only same-day gaps count, and a handful
	// of them (halts, thin names) is tolerated.
	largeGaps := 0
	for i := 1; i < len(bars); i++ {
		if bars[i].Timestamp.Sub(bars[i-1].Timestamp) > gapThreshold &&
			sameCalendarDay(bars[i].Timestamp, bars[i-1].Timestamp) {
			largeGaps++
		}
	}
	if largeGaps > maxIntradayGaps {
		r.Checks = append(r.Checks, Check{"gap_detection", false, fmt.Sprintf("%d intraday gaps >5 min", largeGaps)})
	} else {
		r.Checks = append(r.Checks, Check{"gap_detection", true, ""})
	}

	inconsistent := 0
	for _, b := range bars {
		switch {
		case b.High < b.Low:
			inconsistent++
		case b.High < b.Open || b.High < b.Close:
			inconsistent++
		case b.Low > b.Open || b.Low > b.Close:
			inconsistent++
		}
	}
	r.Checks = append(r.Checks, countCheck("ohlc_consistency", inconsistent, "%d bars with H<L or H<O/C"))

	return r
}

// ValidateQuote is a standalone quote sanity check: bid and ask positive,
// ask at or above bid, spread no more than 10% of mid. It is advisory and
// not wired into quote fetching.
func ValidateQuote(q model.Quote) bool {
	if q.BidPrice <= 0 || q.AskPrice <= 0 {
		return false
	}
	if q.AskPrice < q.BidPrice {
		return false
	}
	if mid := q.Mid(); mid > 0 && q.Spread()/mid > 0.10 {
		return false
	}
	return true
}

// countCheck passes when n is zero, otherwise fails with the formatted count.
func countCheck(name string, n int, failFormat string) Check {
	if n > 0 {
		return Check{name, false, fmt.Sprintf(failFormat, n)}
	}
	return Check{name, true, ""}
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Package earnings classifies trading days relative to earnings reports.
// Strategy code uses it for reaction-day detection and lookback/forward
// context on top of the raw events providers return.
package earnings

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	json "github.com/goccy/go-json"
)

// CallTime is the earnings call timing relative to market hours.
type CallTime string

const (
	BMO     CallTime = "BMO" // before market open
	AMC     CallTime = "AMC" // after market close
	DMH     CallTime = "DMH" // during market hours
	Unknown CallTime = "UNKNOWN"
)

// ParseCallTime maps a string to a CallTime, defaulting to Unknown.
func ParseCallTime(s string) CallTime {
	switch CallTime(s) {
	case BMO, AMC, DMH:
		return CallTime(s)
	}
	return Unknown
}

// Event is a single earnings report date for calendar workflows.
type Event struct {
	Symbol        string
	EarningsDate  time.Time
	CallTime      CallTime
	FiscalQuarter string // "Q1".."Q4", empty when unknown
	FiscalYear    int    // 0 when unknown
}

// ReactionDay returns the day the market reacts: the next day for
// after-close calls, the earnings day itself otherwise. Weekend and
// holiday shifts are left to the trading calendar downstream.
func (e Event) ReactionDay() time.Time {
	if e.CallTime == AMC {
		return dateOf(e.EarningsDate).AddDate(0, 0, 1)
	}
	return dateOf(e.EarningsDate)
}

// Context describes where a trading day sits relative to a symbol's
// earnings. The zero value means no earnings known.
type Context struct {
	IsReactionDay bool
	CallTime      CallTime   // empty when no earnings known
	DaysSince     *int       // nil when no past earnings
	EarningsDate  *time.Time // nil when no earnings known
}

// NoEarnings is the context for a symbol with no known events.
func NoEarnings() Context { return Context{} }

// Calendar indexes earnings events by symbol, each list date-sorted.
type Calendar struct {
	Events map[string][]Event
}

// NewCalendar returns an empty calendar.
func NewCalendar() *Calendar {
	return &Calendar{Events: make(map[string][]Event)}
}

// AddEvent inserts an event, keeping the symbol's list sorted by date.
func (c *Calendar) AddEvent(e Event) {
	if c.Events == nil {
		c.Events = make(map[string][]Event)
	}
	list := append(c.Events[e.Symbol], e)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].EarningsDate.Before(list[j].EarningsDate)
	})
	c.Events[e.Symbol] = list
}

// GetContext classifies tradingDate for symbol: a reaction day, some days
// after the most recent reaction day, or no earnings at all.
func (c *Calendar) GetContext(symbol string, tradingDate time.Time) Context {
	events, ok := c.Events[symbol]
	if !ok {
		return NoEarnings()
	}
	day := dateOf(tradingDate)

	for _, e := range events {
		if e.ReactionDay().Equal(day) {
			return Context{
				IsReactionDay: true,
				CallTime:      e.CallTime,
				DaysSince:     intPtr(0),
				EarningsDate:  timePtr(dateOf(e.EarningsDate)),
			}
		}
	}

	var mostRecent *Event
	for i := range events {
		if events[i].ReactionDay().Before(day) {
			mostRecent = &events[i]
		}
	}
	if mostRecent != nil {
		days := int(day.Sub(mostRecent.ReactionDay()).Hours() / 24)
		return Context{
			CallTime:     mostRecent.CallTime,
			DaysSince:    intPtr(days),
			EarningsDate: timePtr(dateOf(mostRecent.EarningsDate)),
		}
	}
	return NoEarnings()
}

// ReactionDays returns the reaction days for symbol inside the inclusive
// date range.
func (c *Calendar) ReactionDays(symbol string, start, end time.Time) []time.Time {
	events, ok := c.Events[symbol]
	if !ok {
		return nil
	}
	s, e := dateOf(start), dateOf(end)

	var days []time.Time
	for _, ev := range events {
		rd := ev.ReactionDay()
		if !rd.Before(s) && !rd.After(e) {
			days = append(days, rd)
		}
	}
	return days
}

// DaysUntilEarnings returns the days until the next reaction day, nil when
// none falls inside the window.
func (c *Calendar) DaysUntilEarnings(symbol string, tradingDate time.Time, windowDays int) *int {
	events, ok := c.Events[symbol]
	if !ok {
		return nil
	}
	day := dateOf(tradingDate)

	for _, e := range events {
		rd := e.ReactionDay()
		if rd.After(day) {
			days := int(rd.Sub(day).Hours() / 24)
			if days <= windowDays {
				return intPtr(days)
			}
			return nil
		}
	}
	return nil
}

const dateLayout = "2006-01-02"

// eventJSON is the persisted per-event shape, keyed by symbol in the file.
type eventJSON struct {
	EarningsDate  string  `json:"earnings_date"`
	CallTime      string  `json:"call_time"`
	FiscalQuarter *string `json:"fiscal_quarter"`
	FiscalYear    *int    `json:"fiscal_year"`
}

// Save writes the calendar as indented JSON, creating parent directories.
func (c *Calendar) Save(path string) error {
	out := make(map[string][]eventJSON, len(c.Events))
	for sym, events := range c.Events {
		rows := make([]eventJSON, 0, len(events))
		for _, e := range events {
			row := eventJSON{
				EarningsDate: dateOf(e.EarningsDate).Format(dateLayout),
				CallTime:     string(e.CallTime),
			}
			if e.FiscalQuarter != "" {
				fq := e.FiscalQuarter
				row.FiscalQuarter = &fq
			}
			if e.FiscalYear != 0 {
				fy := e.FiscalYear
				row.FiscalYear = &fy
			}
			rows = append(rows, row)
		}
		out[sym] = rows
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a calendar previously written by Save.
func Load(path string) (*Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string][]eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	c := NewCalendar()
	for sym, rows := range raw {
		for _, row := range rows {
			d, err := time.Parse(dateLayout, row.EarningsDate)
			if err != nil {
				return nil, err
			}
			e := Event{
				Symbol:       sym,
				EarningsDate: d.UTC(),
				CallTime:     ParseCallTime(row.CallTime),
			}
			if row.FiscalQuarter != nil {
				e.FiscalQuarter = *row.FiscalQuarter
			}
			if row.FiscalYear != nil {
				e.FiscalYear = *row.FiscalYear
			}
			c.AddEvent(e)
		}
	}
	return c, nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func timePtr(v time.Time) *time.Time { return &v }

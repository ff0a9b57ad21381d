// Package calendar implements the NYSE trading calendar: holidays, half
// days and market hours. Rules are hardcoded, no external data source.
package calendar

import "time"

// et is US Eastern. Falls back to a fixed offset when the tz database is
// unavailable (static binaries on scratch images).
var et = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("ET", -5*3600)
	}
	return loc
}

// dateOf truncates t to a canonical midnight-UTC date, usable as a map key.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Fixed-date holidays with weekend observation shifts.

func newYears(year int) time.Time {
	d := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	if d.Weekday() == time.Sunday {
		return d.AddDate(0, 0, 1)
	}
	return d
}

// juneteenth is observed since 2022. Returns ok=false for earlier years.
func juneteenth(year int) (time.Time, bool) {
	if year < 2022 {
		return time.Time{}, false
	}
	d := time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC)
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1), true
	case time.Sunday:
		return d.AddDate(0, 0, 1), true
	}
	return d, true
}

func independenceDay(year int) time.Time {
	d := time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC)
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

func christmas(year int) time.Time {
	d := time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

// Rule-based holidays (nth weekday of month).

func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	delta := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, delta+(n-1)*7)
}

func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	lastDay := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	delta := (int(lastDay.Weekday()) - int(weekday) + 7) % 7
	return lastDay.AddDate(0, 0, -delta)
}

func mlkDay(year int) time.Time        { return nthWeekday(year, time.January, time.Monday, 3) }
func presidentsDay(year int) time.Time { return nthWeekday(year, time.February, time.Monday, 3) }
func memorialDay(year int) time.Time   { return lastWeekday(year, time.May, time.Monday) }
func laborDay(year int) time.Time      { return nthWeekday(year, time.September, time.Monday, 1) }
func thanksgiving(year int) time.Time  { return nthWeekday(year, time.November, time.Thursday, 4) }

// goodFriday derives from Easter (anonymous Gregorian computus).
func goodFriday(year int) time.Time {
	a := year % 19
	b, c := year/100, year%100
	d, e := b/4, b%4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i, k := c/4, c%4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	easter := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return easter.AddDate(0, 0, -2)
}

func holidays(year int) map[time.Time]bool {
	hs := map[time.Time]bool{
		newYears(year):        true,
		mlkDay(year):          true,
		presidentsDay(year):   true,
		goodFriday(year):      true,
		memorialDay(year):     true,
		independenceDay(year): true,
		laborDay(year):        true,
		thanksgiving(year):    true,
		christmas(year):       true,
	}
	if j, ok := juneteenth(year); ok {
		hs[j] = true
	}
	return hs
}

// halfDays returns the 13:00 ET early-close days for a year.
func halfDays(year int) map[time.Time]bool {
	hd := make(map[time.Time]bool)

	dayBefore := independenceDay(year).AddDate(0, 0, -1)
	if isWeekday(dayBefore) {
		hd[dayBefore] = true
	}

	// Black Friday
	hd[thanksgiving(year).AddDate(0, 0, 1)] = true

	dec24 := time.Date(year, time.December, 24, 0, 0, 0, 0, time.UTC)
	if isWeekday(dec24) && !holidays(year)[dec24] {
		hd[dec24] = true
	}

	return hd
}

// IsHoliday reports whether the date of t is an NYSE holiday.
func IsHoliday(t time.Time) bool {
	d := dateOf(t)
	return holidays(d.Year())[d]
}

// IsHalfDay reports whether the date of t is an NYSE early-close day.
func IsHalfDay(t time.Time) bool {
	d := dateOf(t)
	return halfDays(d.Year())[d]
}

// IsTradingDay reports whether the date of t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	return isWeekday(t) && !IsHoliday(t)
}

// TradingDates returns every trading date in [start, end] as midnight-UTC
// dates, in order.
func TradingDates(start, end time.Time) []time.Time {
	var dates []time.Time
	for cur, last := dateOf(start), dateOf(end); !cur.After(last); cur = cur.AddDate(0, 0, 1) {
		if IsTradingDay(cur) {
			dates = append(dates, cur)
		}
	}
	return dates
}

// MarketOpen returns 09:30 ET on the date of t.
func MarketOpen(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 9, 30, 0, 0, et)
}

// MarketClose returns 13:00 ET on half days, 16:00 ET otherwise.
func MarketClose(t time.Time) time.Time {
	y, m, d := t.Date()
	if IsHalfDay(t) {
		return time.Date(y, m, d, 13, 0, 0, 0, et)
	}
	return time.Date(y, m, d, 16, 0, 0, 0, et)
}

// IsMarketOpen reports whether the regular session is open at instant t.
func IsMarketOpen(t time.Time) bool {
	t = t.In(et)
	if !IsTradingDay(t) {
		return false
	}
	return !t.Before(MarketOpen(t)) && t.Before(MarketClose(t))
}

// NextMarketOpen returns the first regular-session open at or after t.
func NextMarketOpen(t time.Time) time.Time {
	t = t.In(et)
	if IsTradingDay(t) && t.Before(MarketOpen(t)) {
		return MarketOpen(t)
	}
	d := dateOf(t).AddDate(0, 0, 1)
	for !IsTradingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return MarketOpen(d)
}

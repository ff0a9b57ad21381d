package model

import (
	"fmt"
	"strings"
)

// Timeframe is a bar aggregation interval.
type Timeframe string

const (
	Timeframe1Min  Timeframe = "1min"
	Timeframe5Min  Timeframe = "5min"
	Timeframe15Min Timeframe = "15min"
	Timeframe1Hour Timeframe = "1hour"
	Timeframe1Day  Timeframe = "1day"
)

// timeframeMinutes maps each timeframe to its span in minutes.
// 1day counts the 390-minute regular session.
var timeframeMinutes = map[Timeframe]int{
	Timeframe1Min:  1,
	Timeframe5Min:  5,
	Timeframe15Min: 15,
	Timeframe1Hour: 60,
	Timeframe1Day:  390,
}

// Minutes returns the timeframe span in minutes, 0 for unknown timeframes.
func (t Timeframe) Minutes() int { return timeframeMinutes[t] }

// Valid reports whether t is a supported timeframe.
func (t Timeframe) Valid() bool {
	_, ok := timeframeMinutes[t]
	return ok
}

// ParseTimeframe normalizes and validates a timeframe string.
func ParseTimeframe(s string) (Timeframe, error) {
	t := Timeframe(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unsupported timeframe %q (use: 1min, 5min, 15min, 1hour, 1day)", s)
	}
	return t, nil
}

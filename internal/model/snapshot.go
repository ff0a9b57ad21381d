package model

// Snapshot combines a quote with bar context for one symbol.
type Snapshot struct {
	Symbol       string   `json:"symbol"`
	Quote        Quote    `json:"quote"`
	MinuteBar    *Bar     `json:"minute_bar,omitempty"`    // latest completed 1-min bar
	DailyBar     *Bar     `json:"daily_bar,omitempty"`     // today's running daily bar
	PrevDailyBar *Bar     `json:"prev_daily_bar,omitempty"`
	Change       *float64 `json:"change,omitempty"`     // dollar change from previous close
	ChangePct    *float64 `json:"change_pct,omitempty"` // percent change from previous close
}

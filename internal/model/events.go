package model

import "time"

// EarningsEvent is one earnings report from a provider.
type EarningsEvent struct {
	Symbol          string    `json:"symbol"`
	ReportDate      time.Time `json:"report_date"`
	FiscalQuarter   *int      `json:"fiscal_quarter,omitempty"` // 1-4
	FiscalYear      *int      `json:"fiscal_year,omitempty"`
	CallTime        *string   `json:"call_time,omitempty"` // BMO, AMC, DMH, UNKNOWN
	Status          *string   `json:"status,omitempty"`    // confirmed, projected
	EpsEstimate     *float64  `json:"eps_estimate,omitempty"`
	EpsActual       *float64  `json:"eps_actual,omitempty"`
	RevenueEstimate *float64  `json:"revenue_estimate,omitempty"`
	RevenueActual   *float64  `json:"revenue_actual,omitempty"`
}

// DividendEvent is one cash dividend from a provider.
type DividendEvent struct {
	Symbol          string     `json:"symbol"`
	ExDate          time.Time  `json:"ex_date"`
	Amount          float64    `json:"amount"`
	RecordDate      *time.Time `json:"record_date,omitempty"`
	PayDate         *time.Time `json:"pay_date,omitempty"`
	DeclarationDate *time.Time `json:"declaration_date,omitempty"`
	DividendType    string     `json:"dividend_type"` // regular, special
	Frequency       *int       `json:"frequency,omitempty"`
	Currency        string     `json:"currency"`
}

// CorporateAction is a split, merger or similar event.
type CorporateAction struct {
	Symbol        string         `json:"symbol"`
	ActionType    string         `json:"action_type"` // split, merger, spinoff, ...
	ExDate        *time.Time     `json:"ex_date,omitempty"`
	EffectiveDate *time.Time     `json:"effective_date,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// IntPtr builds an optional int field in place.
func IntPtr(v int) *int { return &v }

// TimePtr builds an optional time field in place.
func TimePtr(v time.Time) *time.Time { return &v }

package model

import "time"

// Summary holds headline numbers shown above the charts.
type Summary struct {
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	BarCount   int       `json:"bar_count"`
	LastClose  float64   `json:"last_close"`
	PeriodHigh float64   `json:"period_high"`
	PeriodLow  float64   `json:"period_low"`
	LastSignal *Signal   `json:"last_signal,omitempty"`
}

// Analysis is the output of one engine run over a bar sequence.
type Analysis struct {
	Symbol   string
	Interval string
	Strategy string
	Bars     []Bar
	SMAFast  Series
	SMASlow  Series
	RSI      Series
	Signals  []Signal
	Summary  Summary
}

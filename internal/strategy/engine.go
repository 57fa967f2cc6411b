package strategy

import (
	"fmt"
	"strings"

	"SignalBoard/internal/calculator"
	"SignalBoard/internal/model"
)

// Strategy selects which detector produces the signal list.
type Strategy string

const (
	SMACross Strategy = "SMA cross"
	RSIZones Strategy = "RSI zones"
)

// Strategies lists the supported strategies in display order.
var Strategies = []Strategy{SMACross, RSIZones}

// ParseStrategy accepts the display name or a short alias (sma, rsi).
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sma cross", "sma", "sma_cross", "cross":
		return SMACross, nil
	case "rsi zones", "rsi", "rsi_zones", "zones":
		return RSIZones, nil
	}
	return "", model.NewInputError("strategy", "unknown strategy %q", s)
}

// Params are the tunable inputs of one run.
type Params struct {
	Fast       int
	Slow       int
	RSIPeriod  int
	Strategy   Strategy
	Oversold   float64
	Overbought float64
}

// DefaultParams mirrors the dashboard defaults.
func DefaultParams() Params {
	return Params{
		Fast:       20,
		Slow:       50,
		RSIPeriod:  14,
		Strategy:   SMACross,
		Oversold:   DefaultOversold,
		Overbought: DefaultOverbought,
	}
}

// Validate rejects parameters the engine cannot compute with.
func (p Params) Validate() error {
	if p.Fast <= 0 {
		return model.NewInputError("fast", "must be positive, got %d", p.Fast)
	}
	if p.Slow <= 0 {
		return model.NewInputError("slow", "must be positive, got %d", p.Slow)
	}
	if p.RSIPeriod <= 0 {
		return model.NewInputError("rsi", "must be positive, got %d", p.RSIPeriod)
	}
	if p.Strategy != SMACross && p.Strategy != RSIZones {
		return model.NewInputError("strategy", "unknown strategy %q", p.Strategy)
	}
	if p.Oversold >= p.Overbought {
		return model.NewInputError("oversold", "%.1f must be below overbought %.1f", p.Oversold, p.Overbought)
	}
	return nil
}

// Run computes SMA fast/slow and RSI over bars and detects the signals of
// the selected strategy. It is pure: identical inputs give identical output.
func Run(bars []model.Bar, p Params) (*model.Analysis, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, model.ErrNoData
	}

	closes := model.Closes(bars)
	fast, err := calculator.SimpleMovingAverage(closes, p.Fast)
	if err != nil {
		return nil, fmt.Errorf("fast sma: %w", err)
	}
	slow, err := calculator.SimpleMovingAverage(closes, p.Slow)
	if err != nil {
		return nil, fmt.Errorf("slow sma: %w", err)
	}
	rsi, err := calculator.RelativeStrengthIndex(closes, p.RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}

	var signals []model.Signal
	switch p.Strategy {
	case SMACross:
		signals = DetectCrossoverSignals(fast, slow)
	case RSIZones:
		signals = DetectRSIZoneSignals(rsi, p.Oversold, p.Overbought)
	}
	for i := range signals {
		signals[i].Time = bars[signals[i].Index].Time
	}

	a := &model.Analysis{
		Strategy: string(p.Strategy),
		Bars:     bars,
		SMAFast:  fast,
		SMASlow:  slow,
		RSI:      rsi,
		Signals:  signals,
	}
	a.Summary = summarize(bars, signals)
	return a, nil
}

func summarize(bars []model.Bar, signals []model.Signal) model.Summary {
	last := bars[len(bars)-1]
	s := model.Summary{
		From:      bars[0].Time,
		To:        last.Time,
		BarCount:  len(bars),
		LastClose: last.Close,
	}
	if h, l, err := calculator.PeriodRange(bars); err == nil {
		s.PeriodHigh, s.PeriodLow = h, l
	}
	if len(signals) > 0 {
		sig := signals[len(signals)-1]
		s.LastSignal = &sig
	}
	return s
}

// IsFresh reports whether the last signal fires on the latest bar.
func IsFresh(a *model.Analysis) bool {
	ls := a.Summary.LastSignal
	return ls != nil && ls.Index == len(a.Bars)-1
}

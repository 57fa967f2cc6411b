package strategy

import "SignalBoard/internal/model"

// Default RSI zone thresholds.
const (
	DefaultOversold   = 30.0
	DefaultOverbought = 70.0
)

// DetectCrossoverSignals scans fast against slow and emits BUY when fast
// crosses up through slow and SELL when it crosses down. Touching at i-1
// counts as not yet crossed; equality at both i-1 and i emits nothing.
func DetectCrossoverSignals(fast, slow model.Series) []model.Signal {
	n := min(fast.Len(), slow.Len())
	var signals []model.Signal
	for i := 1; i < n; i++ {
		pf, ok1 := fast.At(i - 1)
		ps, ok2 := slow.At(i - 1)
		cf, ok3 := fast.At(i)
		cs, ok4 := slow.At(i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		switch {
		case pf <= ps && cf > cs:
			signals = append(signals, model.Signal{Index: i, Kind: model.SignalBuy})
		case pf >= ps && cf < cs:
			signals = append(signals, model.Signal{Index: i, Kind: model.SignalSell})
		}
	}
	return signals
}

// DetectRSIZoneSignals emits BUY when RSI leaves the oversold zone upward
// and SELL when it leaves the overbought zone downward. Only raw consecutive
// indices are compared; a gap of undefined values resets nothing and
// produces nothing.
func DetectRSIZoneSignals(rsi model.Series, oversold, overbought float64) []model.Signal {
	var signals []model.Signal
	for i := 1; i < rsi.Len(); i++ {
		prev, ok1 := rsi.At(i - 1)
		cur, ok2 := rsi.At(i)
		if !ok1 || !ok2 {
			continue
		}
		switch {
		case prev < oversold && oversold <= cur:
			signals = append(signals, model.Signal{Index: i, Kind: model.SignalBuy})
		case prev > overbought && overbought >= cur:
			signals = append(signals, model.Signal{Index: i, Kind: model.SignalSell})
		}
	}
	return signals
}

package model

import "time"

// SignalKind is the direction of a detected event.
type SignalKind string

const (
	SignalBuy  SignalKind = "BUY"
	SignalSell SignalKind = "SELL"
)

// Opposite returns the other direction.
func (k SignalKind) Opposite() SignalKind {
	if k == SignalBuy {
		return SignalSell
	}
	return SignalBuy
}

// Signal is a BUY/SELL event at a bar index. Signals are derived on every
// run and never stored.
type Signal struct {
	Index int        `json:"index"`
	Time  time.Time  `json:"time"`
	Kind  SignalKind `json:"kind"`
}

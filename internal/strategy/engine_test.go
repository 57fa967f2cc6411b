package strategy

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"SignalBoard/internal/model"
)

func series(name string, vals ...float64) model.Series {
	s := model.NewSeries(name, len(vals))
	for i, v := range vals {
		s.Set(i, v)
	}
	return s
}

// withGaps marks the given indexes undefined.
func withGaps(s model.Series, idx ...int) model.Series {
	for _, i := range idx {
		s.Defined[i] = false
	}
	return s
}

func kinds(signals []model.Signal) []string {
	out := make([]string, len(signals))
	for i, s := range signals {
		out[i] = string(s.Kind)
	}
	return out
}

func barsFromCloses(closes ...float64) []model.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Time:  start.AddDate(0, 0, i),
			Open:  c,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}
	}
	return bars
}

func TestDetectCrossoverSignals_Example(t *testing.T) {
	fast := series("fast", 1, 1, 3, 3)
	slow := series("slow", 2, 2, 2, 2)
	got := DetectCrossoverSignals(fast, slow)
	if len(got) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(got))
	}
	if got[0].Index != 2 || got[0].Kind != model.SignalBuy {
		t.Errorf("expected BUY at 2, got %s at %d", got[0].Kind, got[0].Index)
	}
}

func TestDetectCrossoverSignals_TouchThenCross(t *testing.T) {
	// fast touches slow at index 1, crosses at 2, touches at 3, crosses down at 4
	fast := series("fast", 1, 2, 3, 2, 1)
	slow := series("slow", 2, 2, 2, 2, 2)
	got := DetectCrossoverSignals(fast, slow)
	want := []model.Signal{{Index: 2, Kind: model.SignalBuy}, {Index: 4, Kind: model.SignalSell}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDetectCrossoverSignals_EqualBothBarsNoSignal(t *testing.T) {
	fast := series("fast", 2, 2, 2)
	slow := series("slow", 2, 2, 2)
	if got := DetectCrossoverSignals(fast, slow); len(got) != 0 {
		t.Errorf("expected no signals, got %v", got)
	}
}

func TestDetectCrossoverSignals_SkipsUndefined(t *testing.T) {
	fast := withGaps(series("fast", 0, 1, 3, 1, 3), 0, 3)
	slow := series("slow", 2, 2, 2, 2, 2)
	got := DetectCrossoverSignals(fast, slow)
	// 1->3 at index 2 is BUY; index 3 and 4 both touch the gap
	want := []model.Signal{{Index: 2, Kind: model.SignalBuy}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDetectCrossoverSignals_Antisymmetric(t *testing.T) {
	fast := series("fast", 1, 3, 2, 2, 1, 4, 5, 1, 1, 3)
	slow := series("slow", 2, 2, 2, 3, 3, 3, 3, 3, 1, 1)
	ab := DetectCrossoverSignals(fast, slow)
	ba := DetectCrossoverSignals(slow, fast)
	if len(ab) == 0 {
		t.Fatal("fixture should produce signals")
	}
	if len(ab) != len(ba) {
		t.Fatalf("expected same count, got %d vs %d", len(ab), len(ba))
	}
	for i := range ab {
		if ab[i].Index != ba[i].Index || ab[i].Kind != ba[i].Kind.Opposite() {
			t.Errorf("signal %d: %v vs swapped %v", i, ab[i], ba[i])
		}
	}
}

func TestDetectRSIZoneSignals(t *testing.T) {
	tests := []struct {
		name string
		rsi  model.Series
		want []string
	}{
		{"exit oversold", series("rsi", 25, 29.9, 30, 45), []string{"BUY"}},
		{"exit overbought", series("rsi", 75, 70.1, 70, 60), []string{"SELL"}},
		{"stay inside", series("rsi", 40, 50, 60, 69), []string{}},
		{"round trip", series("rsi", 20, 35, 80, 65, 25, 31), []string{"BUY", "SELL", "BUY"}},
		{"gap breaks pair", withGaps(series("rsi", 20, 0, 40), 1), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(DetectRSIZoneSignals(tt.rsi, DefaultOversold, DefaultOverbought))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Params)
		field string
	}{
		{"zero fast", func(p *Params) { p.Fast = 0 }, "fast"},
		{"negative slow", func(p *Params) { p.Slow = -3 }, "slow"},
		{"zero rsi", func(p *Params) { p.RSIPeriod = 0 }, "rsi"},
		{"unknown strategy", func(p *Params) { p.Strategy = "MACD" }, "strategy"},
		{"inverted zones", func(p *Params) { p.Oversold = 80 }, "oversold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mod(&p)
			var inErr *model.InputError
			if err := p.Validate(); !errors.As(err, &inErr) || inErr.Field != tt.field {
				t.Errorf("expected InputError on %s, got %v", tt.field, err)
			}
		})
	}
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{"SMA cross": SMACross, "rsi": RSIZones, " RSI zones ": RSIZones} {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("%q: expected %q, got %q (%v)", in, want, got, err)
		}
	}
	if _, err := ParseStrategy("bollinger"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestRun_SMACross(t *testing.T) {
	bars := barsFromCloses(10, 9, 8, 7, 8, 10, 12, 11, 9, 7, 6)
	p := DefaultParams()
	p.Fast, p.Slow = 2, 4
	a, err := Run(bars, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.SMAFast.Len() != len(bars) || a.SMASlow.Len() != len(bars) || a.RSI.Len() != len(bars) {
		t.Fatal("series must be co-indexed with bars")
	}
	if got := kinds(a.Signals); !reflect.DeepEqual(got, []string{"BUY", "SELL"}) {
		t.Fatalf("expected BUY then SELL, got %v", got)
	}
	for _, s := range a.Signals {
		if !s.Time.Equal(bars[s.Index].Time) {
			t.Errorf("signal time %v does not match bar %d", s.Time, s.Index)
		}
	}
	if a.Summary.LastSignal == nil || a.Summary.LastSignal.Kind != model.SignalSell {
		t.Errorf("expected last signal SELL, got %+v", a.Summary.LastSignal)
	}
	if a.Summary.PeriodHigh != 13 || a.Summary.PeriodLow != 5 {
		t.Errorf("unexpected range %.0f/%.0f", a.Summary.PeriodHigh, a.Summary.PeriodLow)
	}
	if a.Summary.BarCount != len(bars) || a.Summary.LastClose != 6 {
		t.Errorf("unexpected summary %+v", a.Summary)
	}
}

func TestRun_RSIZones(t *testing.T) {
	bars := barsFromCloses(10, 9, 8, 7, 6, 8, 10, 12, 14, 13, 12, 11)
	p := DefaultParams()
	p.Strategy = RSIZones
	p.RSIPeriod = 3
	a, err := Run(bars, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := kinds(a.Signals); !reflect.DeepEqual(got, []string{"BUY", "SELL"}) {
		t.Errorf("expected BUY then SELL, got %v", got)
	}
}

func TestRun_Idempotent(t *testing.T) {
	bars := barsFromCloses(5, 6, 7, 6, 5, 4, 5, 6, 7, 8, 7, 6, 5)
	p := DefaultParams()
	p.Fast, p.Slow, p.RSIPeriod = 2, 3, 4
	a1, err1 := Run(bars, p)
	a2, err2 := Run(bars, p)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v / %v", err1, err2)
	}
	if !reflect.DeepEqual(a1, a2) {
		t.Error("expected identical results on identical input")
	}
}

func TestRun_Errors(t *testing.T) {
	if _, err := Run(nil, DefaultParams()); !errors.Is(err, model.ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	p := DefaultParams()
	p.Fast = 0
	var inErr *model.InputError
	if _, err := Run(barsFromCloses(1, 2, 3), p); !errors.As(err, &inErr) {
		t.Errorf("expected InputError, got %v", err)
	}
}

func TestIsFresh(t *testing.T) {
	bars := barsFromCloses(1, 1, 3)
	p := DefaultParams()
	p.Fast, p.Slow = 1, 2
	a, err := Run(bars, p)
	if err != nil {
		t.Fatal(err)
	}
	if !IsFresh(a) {
		t.Errorf("expected fresh signal on last bar, got %+v", a.Signals)
	}
	a, _ = Run(barsFromCloses(1, 1, 3, 4), p)
	if IsFresh(a) {
		t.Error("signal on an earlier bar must not be fresh")
	}
}

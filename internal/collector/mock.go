package collector

import (
	"context"
	"fmt"
	"math"

	"SignalBoard/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// With Bars nil it generates a deterministic oscillating series over the
// query range.
type MockFetcher struct {
	Price float64
	Bars  []model.Bar
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, q Query) ([]model.Bar, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	step, ok := Intervals[q.Interval]
	if !ok {
		return nil, fmt.Errorf("mock: unsupported interval %q", q.Interval)
	}
	base := m.Price
	if base == 0 {
		base = 100
	}

	var bars []model.Bar
	for i, t := 0, q.Start.UTC(); t.Before(q.End); i, t = i+1, t.Add(step) {
		p := base * (1 + 0.1*math.Sin(float64(i)/8) + 0.0005*float64(i))
		bars = append(bars, model.Bar{
			Time:   t,
			Open:   p * 0.998,
			High:   p * 1.01,
			Low:    p * 0.99,
			Close:  p,
			Volume: 1000000,
		})
	}
	if len(bars) == 0 {
		return nil, model.ErrNoData
	}
	return bars, nil
}

package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"SignalBoard/internal/metrics"
	"SignalBoard/internal/model"
	"SignalBoard/internal/strategy"
)

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher Fetcher
	Metrics *metrics.Metrics
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, m *metrics.Metrics) *Collector {
	return &Collector{Fetcher: fetcher, Metrics: m}
}

// FetchBars validates q, downloads its bars and normalises their order.
func (c *Collector) FetchBars(ctx context.Context, q Query) ([]model.Bar, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	bars, err := c.Fetcher.FetchBars(ctx, q)
	c.Metrics.ObserveFetch(c.Fetcher.Name(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", q.Symbol, q.Interval, err)
	}
	bars = model.NormalizeBars(bars)
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch %s %s: %w", q.Symbol, q.Interval, model.ErrNoData)
	}
	return bars, nil
}

// Analyze fetches the bars of q and runs the engine with p. Parameters are
// validated before any network call.
func (c *Collector) Analyze(ctx context.Context, q Query, p strategy.Params) (*model.Analysis, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	bars, err := c.FetchBars(ctx, q)
	if err != nil {
		c.Metrics.ObserveAnalysis(string(p.Strategy), nil, err)
		return nil, err
	}

	a, err := strategy.Run(bars, p)
	c.Metrics.ObserveAnalysis(string(p.Strategy), a, err)
	if err != nil {
		return nil, err
	}
	a.Symbol = q.Symbol
	a.Interval = q.Interval

	slog.Info("analysis complete",
		"symbol", q.Symbol,
		"interval", q.Interval,
		"strategy", p.Strategy,
		"bars", len(bars),
		"signals", len(a.Signals),
		"provider", c.Fetcher.Name(),
	)
	return a, nil
}

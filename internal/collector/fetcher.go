package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"SignalBoard/internal/model"
)

// Intervals maps supported bar intervals to their duration.
var Intervals = map[string]time.Duration{
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"1d":  24 * time.Hour,
	"1wk": 7 * 24 * time.Hour,
}

// Query identifies one bar download.
type Query struct {
	Symbol   string
	Start    time.Time
	End      time.Time // exclusive
	Interval string
}

// Validate rejects queries no provider can serve.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Symbol) == "" {
		return model.NewInputError("pair", "symbol is required")
	}
	if _, ok := Intervals[q.Interval]; !ok {
		return model.NewInputError("interval", "unsupported interval %q", q.Interval)
	}
	if !q.Start.Before(q.End) {
		return model.NewInputError("start", "start %s must be before end %s",
			q.Start.Format("2006-01-02"), q.End.Format("2006-01-02"))
	}
	return nil
}

// Key is the cache key for the query's result.
func (q Query) Key() string {
	return fmt.Sprintf("bars:%s:%d:%d:%s",
		strings.ToUpper(strings.TrimSpace(q.Symbol)), q.Start.Unix(), q.End.Unix(), q.Interval)
}

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchBars returns the bars of q in any order. Implementations report
	// model.ErrNoData, model.ErrSymbolNotFound or model.ErrMissingClose
	// when the provider has nothing usable.
	FetchBars(ctx context.Context, q Query) ([]model.Bar, error)
	Name() string
}

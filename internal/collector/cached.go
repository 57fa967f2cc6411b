package collector

import (
	"context"
	"log/slog"
	"time"

	"SignalBoard/internal/cache"
	"SignalBoard/internal/metrics"
	"SignalBoard/internal/model"
)

// CachedFetcher serves repeated queries from a cache.Store. Cache failures
// are logged and fall through to the wrapped fetcher.
type CachedFetcher struct {
	Next    Fetcher
	Store   cache.Store
	TTL     time.Duration
	Metrics *metrics.Metrics
}

// NewCachedFetcher wraps next with store.
func NewCachedFetcher(next Fetcher, store cache.Store, ttl time.Duration, m *metrics.Metrics) *CachedFetcher {
	return &CachedFetcher{Next: next, Store: store, TTL: ttl, Metrics: m}
}

func (c *CachedFetcher) Name() string { return c.Next.Name() }

func (c *CachedFetcher) FetchBars(ctx context.Context, q Query) ([]model.Bar, error) {
	key := q.Key()
	bars, ok, err := c.Store.Get(ctx, key)
	switch {
	case err != nil:
		slog.Warn("bar cache lookup failed", "backend", c.Store.Name(), "key", key, "error", err)
		c.Metrics.ObserveCache(c.Store.Name(), "error")
	case ok:
		c.Metrics.ObserveCache(c.Store.Name(), "hit")
		return bars, nil
	default:
		c.Metrics.ObserveCache(c.Store.Name(), "miss")
	}

	bars, err = c.Next.FetchBars(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := c.Store.Put(ctx, key, bars, c.TTL); err != nil {
		slog.Warn("bar cache store failed", "backend", c.Store.Name(), "key", key, "error", err)
	}
	return bars, nil
}

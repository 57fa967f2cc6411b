// Package cache stores fetched bar sequences keyed by
// (symbol, start, end, interval) so repeated dashboard runs skip the
// market data provider.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SignalBoard/internal/model"
)

// Store persists bar sequences with an expiry.
type Store interface {
	// Get returns the cached bars for key. ok is false on a miss or expiry.
	Get(ctx context.Context, key string) (bars []model.Bar, ok bool, err error)
	// Put stores bars under key for ttl. A zero ttl never expires.
	Put(ctx context.Context, key string, bars []model.Bar, ttl time.Duration) error
	// Name identifies the backend in logs and metrics.
	Name() string
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend    string // memory | sqlite | redis | none
	SQLitePath string
	RedisAddr  string
	RedisPass  string
	RedisDB    int
}

// Open builds the configured Store.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(cfg.SQLitePath)
	case "redis":
		return NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	case "none":
		return NewNoop(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func encodeBars(bars []model.Bar) ([]byte, error) {
	data, err := json.Marshal(bars)
	if err != nil {
		return nil, fmt.Errorf("encode bars: %w", err)
	}
	return data, nil
}

func decodeBars(data []byte) ([]model.Bar, error) {
	var bars []model.Bar
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	return bars, nil
}

package cache

import (
	"context"
	"time"

	"SignalBoard/internal/model"
)

// Noop disables caching; every lookup misses.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (Noop) Get(context.Context, string) ([]model.Bar, bool, error)      { return nil, false, nil }
func (Noop) Put(context.Context, string, []model.Bar, time.Duration) error { return nil }
func (Noop) Name() string                                                { return "none" }
func (Noop) Close() error                                                { return nil }

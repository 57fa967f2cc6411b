package cache

import (
	"context"
	"sync"
	"time"

	"SignalBoard/internal/model"
)

type memEntry struct {
	bars      []model.Bar
	expiresAt time.Time
}

// Memory is an in-process Store. Expired entries are dropped lazily on Get.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]model.Bar, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]model.Bar(nil), e.bars...), true, nil
}

func (m *Memory) Put(_ context.Context, key string, bars []model.Bar, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memEntry{bars: append([]model.Bar(nil), bars...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Close() error { return nil }

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"SignalBoard/internal/collector"
	"SignalBoard/internal/config"
	"SignalBoard/internal/metrics"
	"SignalBoard/internal/model"
	"SignalBoard/internal/notifier"
	"SignalBoard/internal/strategy"
)

// Analyzer runs the fetch and engine pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, q collector.Query, p strategy.Params) (*model.Analysis, error)
}

// Sender delivers alert text.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler scans the watch list on a cron schedule and alerts on signals
// that form on the latest bar.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer Analyzer
	Notifier Sender // nil disables alerts
	Items    []config.WatchItem
	Metrics  *metrics.Metrics
	Ctx      context.Context

	now func() time.Time

	mu           sync.Mutex
	lastNotified map[string]time.Time // item key -> signal bar time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, a Analyzer, n Sender, items []config.WatchItem, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Analyzer:     a,
		Notifier:     n,
		Items:        items,
		Metrics:      m,
		Ctx:          ctx,
		now:          time.Now,
		lastNotified: make(map[string]time.Time),
	}
}

// Register adds the watch-list scan on the cron expression expr.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.Cron.AddFunc(expr, func() { s.ScanAll(s.Ctx) }); err != nil {
		return fmt.Errorf("register watch scan: %w", err)
	}
	return nil
}

// Purger drops expired cache entries.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// RegisterPurge runs p on the cron expression expr.
func (s *Scheduler) RegisterPurge(expr string, p Purger) error {
	_, err := s.Cron.AddFunc(expr, func() {
		n, err := p.Purge(s.Ctx)
		if err != nil {
			slog.Error("cache purge failed", "error", err)
			return
		}
		slog.Info("cache purged", "rows", n)
	})
	if err != nil {
		return fmt.Errorf("register cache purge: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	slog.Info("scheduler started", "items", len(s.Items))
}

// Stop stops the cron scheduler and waits for a running scan.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// ScanAll analyzes every watch item and returns how many alerts were sent.
// A failing item is logged and does not stop the others.
func (s *Scheduler) ScanAll(ctx context.Context) int {
	slog.Info("running watch scan", "items", len(s.Items))
	sent := 0
	for _, it := range s.Items {
		ok, err := s.scanItem(ctx, it)
		if err != nil {
			slog.Error("watch scan failed", "symbol", it.Symbol, "interval", it.Interval, "error", err)
			continue
		}
		if ok {
			sent++
		}
	}
	return sent
}

func (s *Scheduler) scanItem(ctx context.Context, it config.WatchItem) (bool, error) {
	p, err := paramsFor(it)
	if err != nil {
		return false, err
	}
	q := s.queryFor(it.Symbol, it.Interval, it.LookbackDays)
	a, err := s.Analyzer.Analyze(ctx, q, p)
	if err != nil {
		return false, err
	}
	if !strategy.IsFresh(a) {
		return false, nil
	}

	sig := a.Summary.LastSignal
	key := itemKey(it)
	if s.alreadyNotified(key, sig.Time) {
		return false, nil
	}

	slog.Info("fresh signal", "symbol", it.Symbol, "interval", it.Interval, "kind", sig.Kind, "bar", sig.Time)
	if s.Notifier != nil {
		if err := s.Notifier.SendWithRetry(ctx, notifier.FormatSignalAlert(a), 3); err != nil {
			return false, fmt.Errorf("send alert: %w", err)
		}
		s.Metrics.ObserveAlert()
	}
	s.markNotified(key, sig.Time)
	return s.Notifier != nil, nil
}

func (s *Scheduler) alreadyNotified(key string, bar time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastNotified[key]
	return ok && last.Equal(bar)
}

func (s *Scheduler) markNotified(key string, bar time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastNotified[key] = bar
}

// HandleCommand processes a Telegram command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText()
	}
	switch strings.ToLower(fields[0]) {
	case "/signal":
		if len(fields) < 2 {
			return "Usage: /signal &lt;pair&gt; [interval]"
		}
		interval := "1d"
		if len(fields) > 2 {
			interval = fields[2]
		}
		q := s.queryFor(fields[1], interval, 0)
		a, err := s.Analyzer.Analyze(ctx, q, strategy.DefaultParams())
		if err != nil {
			return userMessage(err)
		}
		return notifier.FormatAnalysisSummary(a)
	case "/watchlist":
		return notifier.FormatWatchList(s.Items)
	default:
		return notifier.HelpText()
	}
}

// queryFor builds a lookback window ending after the current bar. End is
// aligned to the interval so repeated scans within one bar share a cache key.
func (s *Scheduler) queryFor(symbol, interval string, lookbackDays int) collector.Query {
	if lookbackDays <= 0 {
		lookbackDays = defaultLookback(interval)
	}
	step, ok := collector.Intervals[interval]
	if !ok {
		step = time.Minute
	}
	end := s.now().UTC().Truncate(step).Add(step)
	return collector.Query{
		Symbol:   strings.ToUpper(symbol),
		Start:    end.AddDate(0, 0, -lookbackDays),
		End:      end,
		Interval: interval,
	}
}

// defaultLookback stays inside Yahoo's intraday history limits.
func defaultLookback(interval string) int {
	switch interval {
	case "1d", "1wk":
		return 365
	case "1h":
		return 60
	default:
		return 30
	}
}

func paramsFor(it config.WatchItem) (strategy.Params, error) {
	st, err := strategy.ParseStrategy(it.Strategy)
	if err != nil {
		return strategy.Params{}, err
	}
	p := strategy.DefaultParams()
	p.Strategy = st
	p.Fast, p.Slow, p.RSIPeriod = it.Fast, it.Slow, it.RSIPeriod
	return p, nil
}

func itemKey(it config.WatchItem) string {
	return fmt.Sprintf("%s|%s|%s|%d|%d|%d",
		strings.ToUpper(it.Symbol), it.Interval, it.Strategy, it.Fast, it.Slow, it.RSIPeriod)
}

func userMessage(err error) string {
	switch {
	case model.IsDataUnavailable(err):
		return "No data retrieved: check the symbol, dates or interval."
	default:
		return fmt.Sprintf("Error while loading data: %v", err)
	}
}

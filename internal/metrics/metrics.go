package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"SignalBoard/internal/model"
)

// Metrics holds all Prometheus collectors for SignalBoard. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	FetchDuration *prometheus.HistogramVec // labels: provider
	FetchErrors   *prometheus.CounterVec   // labels: provider, reason
	CacheLookups  *prometheus.CounterVec   // labels: backend, result
	Analyses      *prometheus.CounterVec   // labels: strategy, outcome
	Signals       *prometheus.CounterVec   // labels: strategy, kind
	AlertsSent    prometheus.Counter
	HTTPDuration  *prometheus.HistogramVec // labels: method, route, status
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg means prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signalboard_fetch_duration_seconds",
			Help:    "Market data fetch latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalboard_fetch_errors_total",
			Help: "Market data fetch failures by reason",
		}, []string{"provider", "reason"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalboard_cache_lookups_total",
			Help: "Bar cache lookups (hit, miss, error)",
		}, []string{"backend", "result"}),
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalboard_analyses_total",
			Help: "Engine runs by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		Signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalboard_signals_total",
			Help: "Signals detected by strategy and kind",
		}, []string{"strategy", "kind"}),
		AlertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalboard_alerts_sent_total",
			Help: "Telegram signal alerts delivered",
		}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "signalboard_http_request_duration_seconds",
			Help:    "Dashboard API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.FetchDuration,
		m.FetchErrors,
		m.CacheLookups,
		m.Analyses,
		m.Signals,
		m.AlertsSent,
		m.HTTPDuration,
	)
	return m
}

// ObserveFetch records one provider call.
func (m *Metrics) ObserveFetch(provider string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(provider).Observe(d.Seconds())
	if err != nil {
		m.FetchErrors.WithLabelValues(provider, ErrorReason(err)).Inc()
	}
}

// ObserveCache records a cache lookup result: "hit", "miss" or "error".
func (m *Metrics) ObserveCache(backend, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(backend, result).Inc()
}

// ObserveAnalysis records an engine run and the signals it produced.
func (m *Metrics) ObserveAnalysis(strategy string, a *model.Analysis, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Analyses.WithLabelValues(strategy, ErrorReason(err)).Inc()
		return
	}
	m.Analyses.WithLabelValues(strategy, "ok").Inc()
	for _, s := range a.Signals {
		m.Signals.WithLabelValues(strategy, string(s.Kind)).Inc()
	}
}

// ObserveAlert counts a delivered alert.
func (m *Metrics) ObserveAlert() {
	if m == nil {
		return
	}
	m.AlertsSent.Inc()
}

// ObserveHTTP records one API request.
func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// ErrorReason maps an error to a low-cardinality label value.
func ErrorReason(err error) string {
	var inErr *model.InputError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &inErr):
		return "input"
	case errors.Is(err, model.ErrSymbolNotFound):
		return "symbol_not_found"
	case errors.Is(err, model.ErrNoData):
		return "no_data"
	case errors.Is(err, model.ErrMissingClose):
		return "missing_close"
	default:
		return "error"
	}
}

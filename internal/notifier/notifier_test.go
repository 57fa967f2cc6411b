package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalBoard/internal/config"
	"SignalBoard/internal/model"
)

// fakeTelegram records sendMessage payloads and serves queued updates.
type fakeTelegram struct {
	mu       sync.Mutex
	sent     []map[string]string
	updates  []string
	failures atomic.Int32
}

func (f *fakeTelegram) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if f.failures.Load() > 0 {
				f.failures.Add(-1)
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			var payload map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			f.mu.Lock()
			f.sent = append(f.sent, payload)
			f.mu.Unlock()
			w.Write([]byte(`{"ok":true}`))
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			f.mu.Lock()
			var batch string
			if len(f.updates) > 0 {
				batch, f.updates = f.updates[0], f.updates[1:]
			}
			f.mu.Unlock()
			if batch == "" {
				batch = `[]`
				time.Sleep(10 * time.Millisecond)
			}
			w.Write([]byte(`{"ok":true,"result":` + batch + `}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (f *fakeTelegram) messages() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.sent...)
}

func newTestNotifier(t *testing.T, fake *fakeTelegram) *TelegramNotifier {
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("123:abc", "42", "")
	n.APIBase = srv.URL
	return n
}

func TestSend(t *testing.T) {
	fake := &fakeTelegram{}
	n := newTestNotifier(t, fake)

	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	msgs := fake.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "42", msgs[0]["chat_id"])
	assert.Equal(t, "HTML", msgs[0]["parse_mode"])
	assert.Equal(t, "<b>hi</b>", msgs[0]["text"])
}

func TestSendWithBackoff(t *testing.T) {
	fake := &fakeTelegram{}
	fake.failures.Store(2)
	n := newTestNotifier(t, fake)

	require.NoError(t, n.sendWithBackoff(context.Background(), "retry me", 3, time.Millisecond))
	assert.Len(t, fake.messages(), 1)

	fake.failures.Store(10)
	err := n.sendWithBackoff(context.Background(), "give up", 1, time.Millisecond)
	assert.ErrorContains(t, err, "all 2 attempts exhausted")
}

func TestStartPolling_AnswersKnownChatOnly(t *testing.T) {
	fake := &fakeTelegram{updates: []string{
		`[{"update_id":7,"message":{"text":"/help","chat":{"id":42}}},
		  {"update_id":8,"message":{"text":"/signal BTC-USD","chat":{"id":99}}}]`,
	}}
	n := newTestNotifier(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var seen []string
	var mu sync.Mutex
	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(_ context.Context, cmd string) string {
			mu.Lock()
			seen = append(seen, cmd)
			mu.Unlock()
			return "pong"
		})
		close(done)
	}()

	require.Eventually(t, func() bool { return len(fake.messages()) == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("polling did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/help"}, seen)
	assert.Equal(t, "pong", fake.messages()[0]["text"])
}

func sampleAnalysis() *model.Analysis {
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	fast := model.NewSeries("SMA20", 2)
	fast.Set(1, 101.25)
	slow := model.NewSeries("SMA50", 2)
	slow.Set(1, 99.5)
	rsi := model.NewSeries("RSI14", 2)
	sig := model.Signal{Index: 1, Time: t0.AddDate(0, 0, 1), Kind: model.SignalBuy}
	return &model.Analysis{
		Symbol:   "BTC-USD",
		Interval: "1d",
		Strategy: "SMA cross",
		Bars:     []model.Bar{{Time: t0, Close: 98}, {Time: sig.Time, Close: 103}},
		SMAFast:  fast,
		SMASlow:  slow,
		RSI:      rsi,
		Signals:  []model.Signal{sig},
		Summary: model.Summary{
			From: t0, To: sig.Time, BarCount: 2, LastClose: 103,
			PeriodHigh: 104, PeriodLow: 97, LastSignal: &sig,
		},
	}
}

func TestFormatSignalAlert(t *testing.T) {
	msg := FormatSignalAlert(sampleAnalysis())
	assert.Contains(t, msg, "BUY BTC-USD")
	assert.Contains(t, msg, "SMA20: 101.25")
	assert.Contains(t, msg, "RSI14: n/a")
	assert.Contains(t, msg, "2024-05-02 00:00")

	a := sampleAnalysis()
	a.Summary.LastSignal = nil
	assert.Empty(t, FormatSignalAlert(a))
}

func TestFormatAnalysisSummary(t *testing.T) {
	msg := FormatAnalysisSummary(sampleAnalysis())
	assert.Contains(t, msg, "Bars: 2")
	assert.Contains(t, msg, "Last signal: 🟢 BUY")

	a := sampleAnalysis()
	a.Signals, a.Summary.LastSignal = nil, nil
	assert.Contains(t, FormatAnalysisSummary(a), "No signals detected")
}

func TestFormatWatchList(t *testing.T) {
	assert.Equal(t, "Watch list is empty.", FormatWatchList(nil))
	msg := FormatWatchList([]config.WatchItem{{Symbol: "ETH-USD", Interval: "1h", Strategy: "RSI zones", Fast: 20, Slow: 50, RSIPeriod: 14}})
	assert.Contains(t, msg, "ETH-USD 1h: RSI zones (SMA 20/50, RSI 14)")
}

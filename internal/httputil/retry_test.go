package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

var fastRetry = RetryConfig{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond, MaxDelay: 40 * time.Millisecond}

// statusSequence serves the given statuses in order, repeating the last one.
func statusSequence(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(hits.Add(1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		w.WriteHeader(statuses[n])
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func get(url string) func() (*http.Request, error) {
	return func() (*http.Request, error) { return http.NewRequest(http.MethodGet, url, nil) }
}

func TestDo_StatusHandling(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		wantStatus int
		wantHits   int32
		wantErr    bool
	}{
		{"first attempt ok", []int{200}, 200, 1, false},
		{"recovers after 5xx", []int{503, 502, 200}, 200, 3, false},
		{"4xx is not retried", []int{404}, 404, 1, false},
		{"gives up after max attempts", []int{500}, 0, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, hits := statusSequence(t, tt.statuses...)
			resp, err := Do(context.Background(), srv.Client(), fastRetry, get(srv.URL))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				defer resp.Body.Close()
				if resp.StatusCode != tt.wantStatus {
					t.Errorf("expected status %d, got %d", tt.wantStatus, resp.StatusCode)
				}
			}
			if hits.Load() != tt.wantHits {
				t.Errorf("expected %d attempts, got %d", tt.wantHits, hits.Load())
			}
		})
	}
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	srv, _ := statusSequence(t, 503)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cfg := RetryConfig{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: time.Second}
	_, err := Do(ctx, srv.Client(), cfg, get(srv.URL))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDo_BuildRequestError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Do(context.Background(), http.DefaultClient, fastRetry, func() (*http.Request, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped build error, got %v", err)
	}
}

func TestNewClient_Proxy(t *testing.T) {
	c := NewClient(5*time.Second, "http://127.0.0.1:8118")
	tr, ok := c.Transport.(*http.Transport)
	if !ok || tr.Proxy == nil {
		t.Fatal("expected proxy to be configured")
	}
	if c.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", c.Timeout)
	}
	if tr := NewClient(time.Second, "").Transport.(*http.Transport); tr.Proxy != nil {
		t.Error("expected no proxy when url empty")
	}
}

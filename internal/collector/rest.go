package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"SignalBoard/internal/httputil"
	"SignalBoard/internal/model"
)

// RESTFetcher implements Fetcher against a self-hosted bars API that serves
// GET /api/v1/bars?symbol=&interval=&start=&end= (unix seconds).
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Retry   httputil.RetryConfig
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  httputil.NewClient(30*time.Second, proxyURL),
		Retry:   httputil.DefaultRetry,
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars API. Close is a pointer
// so a payload without the column can be told apart from a zero price.
type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Open      float64  `json:"open"`
	High      float64  `json:"high"`
	Low       float64  `json:"low"`
	Close     *float64 `json:"close"`
	Volume    float64  `json:"volume"`
}

func (f *RESTFetcher) FetchBars(ctx context.Context, q Query) ([]model.Bar, error) {
	v := url.Values{}
	v.Set("symbol", q.Symbol)
	v.Set("interval", q.Interval)
	v.Set("start", fmt.Sprint(q.Start.Unix()))
	v.Set("end", fmt.Sprint(q.End.Unix()))
	endpoint := fmt.Sprintf("%s/api/v1/bars?%s", f.BaseURL, v.Encode())

	resp, err := httputil.Do(ctx, f.Client, f.Retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		if f.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+f.APIKey)
		}
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("fetch bars %s: %w", q.Symbol, model.ErrSymbolNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}

	var raw []restBar
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("fetch bars %s %s: %w", q.Symbol, q.Interval, model.ErrNoData)
	}

	bars := make([]model.Bar, len(raw))
	for i, rb := range raw {
		if rb.Close == nil {
			return nil, fmt.Errorf("fetch bars %s: %w", q.Symbol, model.ErrMissingClose)
		}
		bars[i] = model.Bar{
			Time:   time.Unix(rb.Timestamp, 0).UTC(),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  *rb.Close,
			Volume: rb.Volume,
		}
	}
	return bars, nil
}

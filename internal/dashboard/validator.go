package dashboard

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"SignalBoard/internal/collector"
	"SignalBoard/internal/model"
	"SignalBoard/internal/strategy"
)

const (
	dateLayout      = "2006-01-02"
	DefaultPair     = "BTC-USD"
	DefaultStart    = "2024-01-01"
	DefaultInterval = "1d"
)

// Bounds of the dashboard controls.
const (
	MinFast, MaxFast = 2, 200
	MinSlow, MaxSlow = 3, 400
	MinRSI, MaxRSI   = 5, 50
)

// Intervals offered by the dashboard, in display order.
var Intervals = []string{"1d", "1h", "30m", "15m", "5m"}

// AnalysisRequest is the parsed form of the analysis query string.
type AnalysisRequest struct {
	Query  collector.Query
	Params strategy.Params
}

// ParseAnalysisRequest reads and validates pair, start, end, interval,
// strategy, fast, slow and rsi. Missing values take the dashboard defaults;
// end defaults to today and is exclusive.
func ParseAnalysisRequest(c *gin.Context, now time.Time) (AnalysisRequest, error) {
	var req AnalysisRequest

	pair := strings.ToUpper(strings.TrimSpace(c.DefaultQuery("pair", DefaultPair)))
	if pair == "" {
		return req, model.NewInputError("pair", "symbol is required")
	}

	start, err := parseDate(c.DefaultQuery("start", DefaultStart), "start")
	if err != nil {
		return req, err
	}
	end := now.UTC().Truncate(24 * time.Hour)
	if v := c.Query("end"); v != "" {
		if end, err = parseDate(v, "end"); err != nil {
			return req, err
		}
	}
	if !start.Before(end) {
		return req, model.NewInputError("start", "start date %s must be before end date %s",
			start.Format(dateLayout), end.Format(dateLayout))
	}

	interval := strings.TrimSpace(c.DefaultQuery("interval", DefaultInterval))
	if !contains(Intervals, interval) {
		return req, model.NewInputError("interval", "must be one of %s", strings.Join(Intervals, ", "))
	}

	p := strategy.DefaultParams()
	if v := c.Query("strategy"); v != "" {
		if p.Strategy, err = strategy.ParseStrategy(v); err != nil {
			return req, err
		}
	}
	if p.Fast, err = intParam(c, "fast", p.Fast, MinFast, MaxFast); err != nil {
		return req, err
	}
	if p.Slow, err = intParam(c, "slow", p.Slow, MinSlow, MaxSlow); err != nil {
		return req, err
	}
	if p.RSIPeriod, err = intParam(c, "rsi", p.RSIPeriod, MinRSI, MaxRSI); err != nil {
		return req, err
	}

	req.Query = collector.Query{Symbol: pair, Start: start, End: end, Interval: interval}
	req.Params = p
	return req, nil
}

func parseDate(v, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, model.NewInputError(field, "expected YYYY-MM-DD, got %q", v)
	}
	return t, nil
}

func intParam(c *gin.Context, name string, def, lo, hi int) (int, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, model.NewInputError(name, "must be a whole number, got %q", v)
	}
	if n < lo || n > hi {
		return 0, model.NewInputError(name, "must be between %d and %d, got %d", lo, hi, n)
	}
	return n, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

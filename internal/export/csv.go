// Package export renders analyses as the downloadable CSV files offered by
// the dashboard.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"SignalBoard/internal/model"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// DataFileName names the bar+indicator export, e.g. BTC_USD_1d.csv.
func DataFileName(pair, interval string) string {
	return fmt.Sprintf("%s_%s.csv", strings.ReplaceAll(pair, "-", "_"), interval)
}

// SignalsFileName names the signal export, e.g. BTC_USD_signals.csv.
func SignalsFileName(pair string) string {
	return fmt.Sprintf("%s_signals.csv", strings.ReplaceAll(pair, "-", "_"))
}

// TimeLayout picks a date-only layout when every timestamp is at midnight.
func TimeLayout(times []time.Time) string {
	for _, t := range times {
		if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 {
			return dateTimeLayout
		}
	}
	return dateLayout
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cell(s model.Series, i int) string {
	v, ok := s.At(i)
	if !ok {
		return ""
	}
	return formatFloat(v)
}

// WriteDataCSV writes one row per bar with its indicator values. Undefined
// indicator entries are left empty.
func WriteDataCSV(w io.Writer, a *model.Analysis) error {
	times := make([]time.Time, len(a.Bars))
	for i, b := range a.Bars {
		times[i] = b.Time
	}
	layout := TimeLayout(times)

	cw := csv.NewWriter(w)
	header := []string{"Date", "Open", "High", "Low", "Close", "Volume", a.SMAFast.Name, a.SMASlow.Name, a.RSI.Name}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, b := range a.Bars {
		row := []string{
			b.Time.Format(layout),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
			cell(a.SMAFast, i),
			cell(a.SMASlow, i),
			cell(a.RSI, i),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSignalsCSV writes the Date,Signal table.
func WriteSignalsCSV(w io.Writer, signals []model.Signal) error {
	times := make([]time.Time, len(signals))
	for i, s := range signals {
		times[i] = s.Time
	}
	layout := TimeLayout(times)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Signal"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range signals {
		if err := cw.Write([]string{s.Time.Format(layout), string(s.Kind)}); err != nil {
			return fmt.Errorf("write signal: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

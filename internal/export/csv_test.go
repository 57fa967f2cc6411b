package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalBoard/internal/model"
)

func TestFileNames(t *testing.T) {
	assert.Equal(t, "BTC_USD_1d.csv", DataFileName("BTC-USD", "1d"))
	assert.Equal(t, "ETH_USD_signals.csv", SignalsFileName("ETH-USD"))
}

func TestWriteSignalsCSV(t *testing.T) {
	t0 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, WriteSignalsCSV(&buf, []model.Signal{
		{Index: 3, Time: t0, Kind: model.SignalBuy},
		{Index: 9, Time: t0.AddDate(0, 0, 6), Kind: model.SignalSell},
	}))
	assert.Equal(t, "Date,Signal\n2024-02-01,BUY\n2024-02-07,SELL\n", buf.String())
}

func TestWriteSignalsCSV_EmptyHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSignalsCSV(&buf, nil))
	assert.Equal(t, "Date,Signal\n", buf.String())
}

func TestWriteDataCSV(t *testing.T) {
	t0 := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
	fast := model.NewSeries("SMA2", 2)
	fast.Set(1, 10.5)
	slow := model.NewSeries("SMA3", 2)
	rsi := model.NewSeries("RSI14", 2)
	a := &model.Analysis{
		Bars: []model.Bar{
			{Time: t0, Open: 10, High: 11, Low: 9, Close: 10, Volume: 100},
			{Time: t0.Add(time.Hour), Open: 10, High: 12, Low: 10, Close: 11, Volume: 250.5},
		},
		SMAFast: fast,
		SMASlow: slow,
		RSI:     rsi,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDataCSV(&buf, a))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Open,High,Low,Close,Volume,SMA2,SMA3,RSI14", lines[0])
	assert.Equal(t, "2024-02-01 09:30:00,10,11,9,10,100,,,", lines[1])
	assert.Equal(t, "2024-02-01 10:30:00,10,12,10,11,250.5,10.5,,", lines[2])
}

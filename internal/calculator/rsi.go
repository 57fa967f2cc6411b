package calculator

import (
	"fmt"

	"SignalBoard/internal/model"
)

// RelativeStrengthIndex computes RSI with simple (not Wilder) rolling means
// of gains and losses over period.
//
// RSI[i] needs period deltas, so it is undefined for i < period. When the
// average loss is zero the value is 100 if there was any gain; a window with
// neither gains nor losses is undefined rather than NaN.
func RelativeStrengthIndex(closes []float64, period int) (model.Series, error) {
	if period <= 0 {
		return model.Series{}, model.NewInputError("period", "must be positive, got %d", period)
	}
	s := model.NewSeries(fmt.Sprintf("RSI%d", period), len(closes))
	if len(closes) <= period {
		return s, nil
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	p := float64(period)
	for i := period; i < len(closes); i++ {
		var sumGain, sumLoss float64
		for j := i - period + 1; j <= i; j++ {
			sumGain += gains[j]
			sumLoss += losses[j]
		}
		if v, ok := rsiValue(sumGain/p, sumLoss/p); ok {
			s.Set(i, v)
		}
	}
	return s, nil
}

func rsiValue(avgGain, avgLoss float64) (float64, bool) {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 0, false
		}
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

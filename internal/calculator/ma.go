package calculator

import (
	"fmt"

	"SignalBoard/internal/model"
)

// SimpleMovingAverage computes the trailing arithmetic mean of closes over
// window. Entries before index window-1 are undefined.
func SimpleMovingAverage(closes []float64, window int) (model.Series, error) {
	if window <= 0 {
		return model.Series{}, model.NewInputError("window", "must be positive, got %d", window)
	}
	s := model.NewSeries(fmt.Sprintf("SMA%d", window), len(closes))
	if len(closes) < window {
		return s, nil
	}
	for i := window - 1; i < len(closes); i++ {
		// Summing each window keeps results identical to a direct mean.
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += closes[j]
		}
		s.Set(i, sum/float64(window))
	}
	return s, nil
}

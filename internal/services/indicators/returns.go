package indicators

import (
	"math"

	"github.com/quantfra/swingdesk/internal/domain/models"
)

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(bars)-1, or nil if insufficient data.
func ComputeLogReturns(bars []models.PriceBar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		cur := bars[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// AnnualizedVolatility computes the annualized volatility of the latest
// `window` log returns assuming 252 trading days per year.
func AnnualizedVolatility(logReturns []float64, window int) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * 252)
}

// TrailingReturn computes the simple return over the last n bars.
func TrailingReturn(bars []models.PriceBar, n int) float64 {
	if n <= 0 || len(bars) < n+1 {
		return 0
	}
	base := bars[len(bars)-1-n].Close
	if base <= 0 {
		return 0
	}
	return bars[len(bars)-1].Close/base - 1
}

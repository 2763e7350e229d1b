package indicators

import "math"

// SMA returns the simple moving average of the last `period` values.
// Returns 0 when the series is shorter than the period.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// StdDev returns the population standard deviation of the last `period` values.
func StdDev(values []float64, period int) float64 {
	if period <= 1 || len(values) < period {
		return 0
	}
	window := values[len(values)-period:]
	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(period)
	variance := 0.0
	for _, v := range window {
		d := v - mean
		variance += d * d
	}
	variance /= float64(period)
	return math.Sqrt(variance)
}

// EMASeries returns an exponential moving average series aligned with the
// input. Entries before index period-1 are carried from the SMA seed and
// should not be read by callers.
func EMASeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)
	k := 2.0 / float64(period+1)
	for i := range values {
		if i < period-1 {
			out[i] = values[i]
			continue
		}
		if i == period-1 {
			out[i] = seed
			continue
		}
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// RSI computes the Wilder-smoothed relative strength index for the last
// bar of the series. Requires at least period+1 closes.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 0
	}
	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the MACD line, signal line, and the last two histogram
// values (previous, current) for slope classification.
func MACD(closes []float64, fast, slow, signal int) (macd, sig, histPrev, histCur float64) {
	if len(closes) < slow+signal {
		return 0, 0, 0, 0
	}
	fastEMA := EMASeries(closes, fast)
	slowEMA := EMASeries(closes, slow)
	line := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		line = append(line, fastEMA[i]-slowEMA[i])
	}
	sigSeries := EMASeries(line, signal)
	n := len(line)
	macd = line[n-1]
	sig = sigSeries[n-1]
	histCur = macd - sig
	if n >= 2 {
		histPrev = line[n-2] - sigSeries[n-2]
	}
	return macd, sig, histPrev, histCur
}

// ADX computes the Wilder average directional index for the last bar.
// Requires at least 2*period+1 bars of high/low/close columns.
func ADX(highs, lows, closes []float64, period int) float64 {
	n := len(closes)
	if period <= 0 || n < 2*period+1 || len(highs) != n || len(lows) != n {
		return 0
	}
	trSum, plusSum, minusSum := 0.0, 0.0, 0.0
	for i := 1; i <= period; i++ {
		tr, plusDM, minusDM := dmTR(highs, lows, closes, i)
		trSum += tr
		plusSum += plusDM
		minusSum += minusDM
	}
	dxs := make([]float64, 0, n-period)
	dxs = append(dxs, dx(plusSum, minusSum, trSum))
	for i := period + 1; i < n; i++ {
		tr, plusDM, minusDM := dmTR(highs, lows, closes, i)
		trSum = trSum - trSum/float64(period) + tr
		plusSum = plusSum - plusSum/float64(period) + plusDM
		minusSum = minusSum - minusSum/float64(period) + minusDM
		dxs = append(dxs, dx(plusSum, minusSum, trSum))
	}
	if len(dxs) < period {
		return 0
	}
	adx := 0.0
	for _, v := range dxs[:period] {
		adx += v
	}
	adx /= float64(period)
	for _, v := range dxs[period:] {
		adx = (adx*float64(period-1) + v) / float64(period)
	}
	return adx
}

func dmTR(highs, lows, closes []float64, i int) (tr, plusDM, minusDM float64) {
	up := highs[i] - highs[i-1]
	down := lows[i-1] - lows[i]
	if up > down && up > 0 {
		plusDM = up
	}
	if down > up && down > 0 {
		minusDM = down
	}
	tr = math.Max(highs[i]-lows[i], math.Max(math.Abs(highs[i]-closes[i-1]), math.Abs(lows[i]-closes[i-1])))
	return tr, plusDM, minusDM
}

func dx(plusSum, minusSum, trSum float64) float64 {
	if trSum == 0 {
		return 0
	}
	plusDI := 100 * plusSum / trSum
	minusDI := 100 * minusSum / trSum
	if plusDI+minusDI == 0 {
		return 0
	}
	return 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
}

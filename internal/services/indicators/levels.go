package indicators

import (
	"sort"

	"github.com/quantfra/swingdesk/internal/domain/models"
)

// pivot detection and clustering parameters.
const (
	maxLevels = 5
)

// FindLevels detects pivot highs/lows, clusters them into price levels,
// and splits them into supports below and resistances above the last
// close, nearest-first. A bar is a pivot high when its high is the
// maximum within a symmetric window of `window` bars on each side;
// pivot lows are analogous. Pivots within tolerancePct of a cluster are
// merged; a level's strength is its touch count.
func FindLevels(bars []models.PriceBar, window int, tolerancePct float64) (supports, resistances []models.Level) {
	if window <= 0 || len(bars) < 2*window+1 {
		return nil, nil
	}
	var pivots []float64
	for i := window; i < len(bars)-window; i++ {
		if isPivotHigh(bars, i, window) {
			pivots = append(pivots, bars[i].High)
		}
		if isPivotLow(bars, i, window) {
			pivots = append(pivots, bars[i].Low)
		}
	}
	levels := cluster(pivots, tolerancePct)
	current := bars[len(bars)-1].Close
	for _, lv := range levels {
		if lv.Price < current {
			supports = append(supports, lv)
		} else if lv.Price > current {
			resistances = append(resistances, lv)
		}
	}
	// nearest-first on both sides
	sort.Slice(supports, func(i, j int) bool { return supports[i].Price > supports[j].Price })
	sort.Slice(resistances, func(i, j int) bool { return resistances[i].Price < resistances[j].Price })
	if len(supports) > maxLevels {
		supports = supports[:maxLevels]
	}
	if len(resistances) > maxLevels {
		resistances = resistances[:maxLevels]
	}
	return supports, resistances
}

func isPivotHigh(bars []models.PriceBar, i, w int) bool {
	h := bars[i].High
	for j := i - w; j <= i+w; j++ {
		if bars[j].High > h {
			return false
		}
	}
	return true
}

func isPivotLow(bars []models.PriceBar, i, w int) bool {
	l := bars[i].Low
	for j := i - w; j <= i+w; j++ {
		if bars[j].Low < l {
			return false
		}
	}
	return true
}

// cluster merges sorted pivot prices whose distance from the running
// cluster mean stays within tolerancePct.
func cluster(pivots []float64, tolerancePct float64) []models.Level {
	if len(pivots) == 0 {
		return nil
	}
	sort.Float64s(pivots)
	var out []models.Level
	sum := pivots[0]
	count := 1
	for _, p := range pivots[1:] {
		mean := sum / float64(count)
		if mean > 0 && (p-mean)/mean*100 <= tolerancePct {
			sum += p
			count++
			continue
		}
		out = append(out, makeLevel(sum/float64(count), count))
		sum = p
		count = 1
	}
	out = append(out, makeLevel(sum/float64(count), count))
	return out
}

func makeLevel(price float64, touches int) models.Level {
	strength := "weak"
	switch {
	case touches >= 3:
		strength = "strong"
	case touches == 2:
		strength = "medium"
	}
	return models.Level{Price: price, Touches: touches, Strength: strength}
}

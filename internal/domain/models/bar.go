package models

import "time"

// PriceBar represents one OHLCV record of a daily (or weekly) series.
// Series are ordered ascending by timestamp with no duplicate buckets
// and are never mutated after ingestion.
type PriceBar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Closes extracts the close column of a bar series.
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume column of a bar series.
func Volumes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}

// LastBar returns the most recent bar of a non-empty series.
func LastBar(bars []PriceBar) PriceBar {
	return bars[len(bars)-1]
}

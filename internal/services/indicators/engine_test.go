package indicators

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
)

func mkBars(closes []float64) []models.PriceBar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		out[i] = models.PriceBar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1000,
		}
	}
	return out
}

func TestRSIZoneBoundaries(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{0, models.RSIOversold},
		{29.9, models.RSIOversold},
		{30.0, models.RSIOversoldTerritory},
		{44.9, models.RSIOversoldTerritory},
		{45.0, models.RSINeutral},
		{54.9, models.RSINeutral},
		{55.0, models.RSIOverboughtTerritory},
		{69.9, models.RSIOverboughtTerritory},
		{70.0, models.RSIOverbought},
		{100, models.RSIOverbought},
	}
	for _, c := range cases {
		if got := RSIZone(c.v); got != c.want {
			t.Fatalf("RSIZone(%v) = %s, want %s", c.v, got, c.want)
		}
	}
}

func TestADXBucketBoundaries(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{10, models.ADXWeak},
		{19.99, models.ADXWeak},
		{20, models.ADXModerate},
		{30, models.ADXModerate},
		{30.01, models.ADXStrong},
		{50, models.ADXStrong},
		{50.01, models.ADXVeryStrong},
	}
	for _, c := range cases {
		if got := ADXBucket(c.v); got != c.want {
			t.Fatalf("ADXBucket(%v) = %s, want %s", c.v, got, c.want)
		}
	}
}

func TestVolumeStateBands(t *testing.T) {
	cases := []struct {
		ratio float64
		want  string
	}{
		{2.5, models.VolumeVeryHigh},
		{2.0, models.VolumeHigh},
		{1.6, models.VolumeHigh},
		{1.5, models.VolumeNormal},
		{1.0, models.VolumeNormal},
		{0.8, models.VolumeLow},
		{0.3, models.VolumeLow},
	}
	for _, c := range cases {
		if got := VolumeState(c.ratio); got != c.want {
			t.Fatalf("VolumeState(%v) = %s, want %s", c.ratio, got, c.want)
		}
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	if got := RSI(closes, 14); got != 100 {
		t.Fatalf("monotonic gains must give RSI 100, got %v", got)
	}
}

func TestSMA(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	if got := SMA(vals, 5); math.Abs(got-3) > 1e-9 {
		t.Fatalf("SMA = %v, want 3", got)
	}
	if got := SMA(vals, 2); math.Abs(got-4.5) > 1e-9 {
		t.Fatalf("SMA last 2 = %v, want 4.5", got)
	}
}

func TestComputeInsufficientHistory(t *testing.T) {
	e := NewEngine(Config{})
	_, err := e.Compute("AAPL", mkBars([]float64{1, 2, 3}))
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("want ErrInsufficientHistory, got %v", err)
	}
}

func TestComputeFullSnapshot(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		// gentle uptrend with a wobble so pivots exist
		closes[i] = 100 + float64(i)*0.3 + 3*math.Sin(float64(i)/4)
	}
	e := NewEngine(Config{})
	snap, err := e.Compute("AAPL", mkBars(closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Symbol != "AAPL" {
		t.Fatalf("symbol = %s", snap.Symbol)
	}
	if snap.RSI.Value < 0 || snap.RSI.Value > 100 {
		t.Fatalf("rsi out of range: %v", snap.RSI.Value)
	}
	if snap.RSI.State != RSIZone(snap.RSI.Value) {
		t.Fatalf("rsi state %s does not match value %v", snap.RSI.State, snap.RSI.Value)
	}
	if snap.SMA20 <= snap.SMA50 {
		t.Fatalf("uptrend should put sma20 above sma50: %v vs %v", snap.SMA20, snap.SMA50)
	}
	if snap.Trend != models.TrendBullish {
		t.Fatalf("trend = %s, want bullish", snap.Trend)
	}
	if snap.BollingerPosition < 0 || snap.BollingerPosition > 100 {
		t.Fatalf("bollinger position out of range: %v", snap.BollingerPosition)
	}
	if snap.Volatility <= 0 {
		t.Fatalf("volatility must be positive, got %v", snap.Volatility)
	}
}

func TestBandPositionClamped(t *testing.T) {
	if got := bandPosition(50, 100, 200); got != 0 {
		t.Fatalf("below band must clamp to 0, got %v", got)
	}
	if got := bandPosition(250, 100, 200); got != 100 {
		t.Fatalf("above band must clamp to 100, got %v", got)
	}
	if got := bandPosition(150, 100, 200); math.Abs(got-50) > 1e-9 {
		t.Fatalf("midpoint = %v, want 50", got)
	}
}

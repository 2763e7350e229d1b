package marketctx

import (
	"testing"
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
)

func series(n int, f func(i int) float64) []models.PriceBar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]models.PriceBar, n)
	for i := range out {
		c := f(i)
		out[i] = models.PriceBar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c, High: c, Low: c, Close: c, Volume: 1000,
		}
	}
	return out
}

func TestClassifyMissingBenchmark(t *testing.T) {
	c := NewClassifier(Config{})
	bars := series(100, func(i int) float64 { return 100 + float64(i) })

	out := c.Classify(bars, nil)
	if out.Regime != models.RegimeUnknown {
		t.Fatalf("regime = %s, want unknown", out.Regime)
	}
	if out.RelPerf != models.PerfUnknown {
		t.Fatalf("rel perf = %s, want unknown", out.RelPerf)
	}
}

func TestClassifyBullRegime(t *testing.T) {
	c := NewClassifier(Config{})
	bench := series(100, func(i int) float64 { return 100 + float64(i) })
	bars := series(100, func(i int) float64 { return 50 + float64(i) })

	out := c.Classify(bars, bench)
	if out.Regime != models.RegimeBull {
		t.Fatalf("rising benchmark must be bull, got %s", out.Regime)
	}
}

func TestClassifyBearRegime(t *testing.T) {
	c := NewClassifier(Config{})
	bench := series(100, func(i int) float64 { return 300 - float64(i) })
	bars := series(100, func(i int) float64 { return 300 - float64(i) })

	out := c.Classify(bars, bench)
	if out.Regime != models.RegimeBear {
		t.Fatalf("falling benchmark must be bear, got %s", out.Regime)
	}
}

func TestClassifyRelativePerformance(t *testing.T) {
	c := NewClassifier(Config{})
	// Benchmark flat, symbol up 10% over the return window.
	bench := series(100, func(i int) float64 { return 100 })
	bars := series(100, func(i int) float64 { return 100 * (1 + 0.005*float64(i)) })

	out := c.Classify(bars, bench)
	if out.RelPerf != models.PerfOutperforming {
		t.Fatalf("rel perf = %s (%.2f%%), want outperforming", out.RelPerf, out.RelPerfValue)
	}
	if out.RelPerfValue <= 2 {
		t.Fatalf("rel perf value = %v, want > band", out.RelPerfValue)
	}

	out = c.Classify(bench, bench)
	if out.RelPerf != models.PerfInline {
		t.Fatalf("identical series must be in line, got %s", out.RelPerf)
	}
}

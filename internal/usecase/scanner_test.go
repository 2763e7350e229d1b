package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	"github.com/quantfra/swingdesk/internal/service/ratelimit"
	"github.com/quantfra/swingdesk/internal/services/indicators"
	"github.com/quantfra/swingdesk/internal/services/marketctx"
	"github.com/quantfra/swingdesk/internal/services/scoring"
)

// fakeBars serves synthetic history and fails selected symbols.
type fakeBars struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls int
}

func (f *fakeBars) GetHistory(_ context.Context, symbol string, lookback int, _ domrepo.Interval) ([]models.PriceBar, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail[symbol] {
		return nil, fmt.Errorf("%w: upstream down for %s", models.ErrDataUnavailable, symbol)
	}
	if lookback > 200 {
		lookback = 200
	}
	start := time.Now().AddDate(0, 0, -lookback)
	bars := make([]models.PriceBar, lookback)
	for i := range bars {
		c := 100 + float64(i)*0.3 + 2*math.Sin(float64(i)/3)
		bars[i] = models.PriceBar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c, High: c * 1.01, Low: c * 0.99, Close: c,
			Volume: 1000,
		}
	}
	return bars, nil
}

func (f *fakeBars) Health(context.Context) error { return nil }
func (f *fakeBars) Close() error                 { return nil }

func newTestAnalyzer(bars domrepo.BarSource) *Analyzer {
	return NewAnalyzer(
		bars,
		nil,
		indicators.NewEngine(indicators.Config{}),
		marketctx.NewClassifier(marketctx.Config{}),
		scoring.NewScorer(scoring.Config{}),
	)
}

func newTestScanner(bars domrepo.BarSource) *Scanner {
	return NewScanner(newTestAnalyzer(bars), ratelimit.New(), ScannerConfig{
		Workers:       4,
		RateCapacity:  10000,
		RateRefillSec: 10000,
	}, nil)
}

func TestScanFailureIsolation(t *testing.T) {
	bars := &fakeBars{fail: map[string]bool{"BAD": true}}
	s := newTestScanner(bars)

	summary, err := s.Scan(context.Background(), ScanParams{
		Markets: []models.ScanMarket{
			{Name: "us", Symbols: []string{"AAPL", "BAD", "MSFT"}},
		},
		Threshold: 1,
		TopK:      10,
	}, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if summary.TotalSymbols != 3 {
		t.Fatalf("total = %d, want 3", summary.TotalSymbols)
	}
	if summary.Cancelled {
		t.Fatalf("scan must not report cancellation")
	}
	ms := summary.Markets[0]
	if ms.Scanned != 3 {
		t.Fatalf("scanned = %d, want 3", ms.Scanned)
	}
	if len(ms.Skipped) != 1 || ms.Skipped[0].Symbol != "BAD" {
		t.Fatalf("skipped = %+v, want only BAD", ms.Skipped)
	}
	if len(ms.Opportunities) != 2 {
		t.Fatalf("opportunities = %d, want 2", len(ms.Opportunities))
	}
}

func TestScanThresholdAndTopK(t *testing.T) {
	bars := &fakeBars{}
	s := newTestScanner(bars)

	summary, err := s.Scan(context.Background(), ScanParams{
		Markets: []models.ScanMarket{
			{Name: "us", Symbols: []string{"A", "B", "C", "D"}},
		},
		Threshold: 101, // nothing can pass
		TopK:      2,
	}, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got := len(summary.Markets[0].Opportunities); got != 0 {
		t.Fatalf("threshold above max must filter everything, got %d", got)
	}

	summary, err = s.Scan(context.Background(), ScanParams{
		Markets: []models.ScanMarket{
			{Name: "us", Symbols: []string{"A", "B", "C", "D"}},
		},
		Threshold: 1,
		TopK:      2,
	}, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	ms := summary.Markets[0]
	if len(ms.Opportunities) != 2 {
		t.Fatalf("top-k cap failed, got %d", len(ms.Opportunities))
	}
	for i := 1; i < len(ms.Opportunities); i++ {
		if ms.Opportunities[i].Score > ms.Opportunities[i-1].Score {
			t.Fatalf("opportunities not sorted by score desc")
		}
	}
}

func TestScanCancellation(t *testing.T) {
	bars := &fakeBars{}
	s := newTestScanner(bars)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := s.Scan(ctx, ScanParams{
		Markets: []models.ScanMarket{
			{Name: "us", Symbols: []string{"A", "B", "C", "D", "E", "F"}},
		},
	}, nil)
	if err != nil {
		t.Fatalf("cancelled scan still returns a partial summary: %v", err)
	}
	if !summary.Cancelled {
		t.Fatalf("summary must carry the Cancelled flag")
	}
}

func TestScanProgressEvents(t *testing.T) {
	bars := &fakeBars{}
	s := newTestScanner(bars)

	var mu sync.Mutex
	var events []models.ScanProgress
	_, err := s.Scan(context.Background(), ScanParams{
		Markets: []models.ScanMarket{
			{Name: "us", Symbols: []string{"A", "B", "C"}},
		},
	}, func(ev models.ScanProgress) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	last := events[len(events)-1]
	if last.Done != 3 || last.Total != 3 {
		t.Fatalf("terminal event = %d/%d, want 3/3", last.Done, last.Total)
	}
}

func TestAnalyzerMemoizesResults(t *testing.T) {
	bars := &fakeBars{}
	a := newTestAnalyzer(bars)

	first, err := a.Analyze(context.Background(), AnalyzeParams{Symbol: "AAPL", Interval: domrepo.Interval1d})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	callsAfterFirst := bars.calls

	second, err := a.Analyze(context.Background(), AnalyzeParams{Symbol: "AAPL", Interval: domrepo.Interval1d})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if bars.calls != callsAfterFirst {
		t.Fatalf("cached analysis must not refetch history")
	}
	if first.Score != second.Score {
		t.Fatalf("cached result diverged: %v vs %v", first.Score, second.Score)
	}
}

func TestAnalyzerRequiresSymbol(t *testing.T) {
	a := newTestAnalyzer(&fakeBars{})
	if _, err := a.Analyze(context.Background(), AnalyzeParams{}); err == nil {
		t.Fatalf("empty symbol must fail")
	}
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	icache "github.com/quantfra/swingdesk/internal/service/cache"
	"github.com/quantfra/swingdesk/internal/services/indicators"
	"github.com/quantfra/swingdesk/internal/services/marketctx"
	"github.com/quantfra/swingdesk/internal/services/scoring"
	"github.com/quantfra/swingdesk/internal/usecase"
)

// trendBars serves a synthetic series whose direction depends on the
// requested lookback, so results for different lookbacks must differ.
type trendBars struct{}

func (trendBars) GetHistory(_ context.Context, _ string, lookback int, _ domrepo.Interval) ([]models.PriceBar, error) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, 120)
	for i := range bars {
		price := 100.0 + float64(i)
		if lookback <= 100 {
			price = 220.0 - float64(i)
		}
		bars[i] = models.PriceBar{
			Timestamp: base.AddDate(0, 0, i),
			Open:      price,
			High:      price * 1.01,
			Low:       price * 0.99,
			Close:     price,
			Volume:    1_000_000,
		}
	}
	return bars, nil
}

func (trendBars) Health(context.Context) error { return nil }
func (trendBars) Close() error                 { return nil }

func newAnalysisServer() *echo.Echo {
	analyzer := usecase.NewAnalyzer(
		trendBars{}, nil,
		indicators.NewEngine(indicators.Config{}),
		marketctx.NewClassifier(marketctx.Config{}),
		scoring.NewScorer(scoring.Config{}),
	)
	h := NewAnalysisHandler(analyzer, nil, nil, nil, trendBars{})
	h.SetCache(icache.NewTTLCache())
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func analyzeScore(t *testing.T, e *echo.Echo, path string) float64 {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Data struct {
			Score float64 `json:"score"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out.Data.Score
}

func TestAnalyzeCacheKeyVariesByLookback(t *testing.T) {
	e := newAnalysisServer()
	short := analyzeScore(t, e, "/api/v1/analyze?symbol=AAPL&lookback=60")
	long := analyzeScore(t, e, "/api/v1/analyze?symbol=AAPL&lookback=250")
	if short == long {
		t.Fatalf("lookback 60 and 250 both scored %.3f; the response cache must not collapse them", short)
	}

	// Repeating the same parameters serves the cached result unchanged.
	if again := analyzeScore(t, e, "/api/v1/analyze?symbol=AAPL&lookback=60"); again != short {
		t.Fatalf("repeat lookback=60 score = %.3f, want %.3f", again, short)
	}
}

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/quantfra/swingdesk/internal/ledger"
	"github.com/quantfra/swingdesk/internal/services/sizing"
	"github.com/quantfra/swingdesk/internal/usecase"
)

func newPortfolioServer() *echo.Echo {
	trading := usecase.NewTradingUseCase(
		ledger.New(ledger.Config{}),
		sizing.NewSizer(sizing.Config{}),
		nil, nil, nil, nil,
	)
	e := echo.New()
	NewPortfolioHandler(trading).RegisterRoutes(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestBuyEndpointCommits(t *testing.T) {
	e := newPortfolioServer()
	rec := doJSON(e, http.MethodPost, "/api/v1/trades/buy",
		`{"symbol":"AAPL","currency":"USD","quantity":10,"price":100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"status":201`) {
		t.Fatalf("want created status in body, got %s", body)
	}
	if !strings.Contains(body, `"symbol":"AAPL"`) {
		t.Fatalf("trade record missing from body: %s", body)
	}
}

func TestBuyEndpointRejectsUnaffordable(t *testing.T) {
	e := newPortfolioServer()
	rec := doJSON(e, http.MethodPost, "/api/v1/trades/buy",
		`{"symbol":"AAPL","currency":"USD","quantity":1000,"price":100}`)
	body := rec.Body.String()
	if !strings.Contains(body, `"status":422`) {
		t.Fatalf("want 422 in body, got %s", body)
	}
	if !strings.Contains(body, "ERR_INSUFFICIENT_FUNDS") {
		t.Fatalf("want ERR_INSUFFICIENT_FUNDS, got %s", body)
	}
}

func TestBuyEndpointValidation(t *testing.T) {
	e := newPortfolioServer()
	// missing price and a 2-letter currency
	rec := doJSON(e, http.MethodPost, "/api/v1/trades/buy",
		`{"symbol":"AAPL","currency":"US","quantity":10}`)
	if !strings.Contains(rec.Body.String(), `"status":400`) {
		t.Fatalf("want 400 in body, got %s", rec.Body.String())
	}
}

func TestSellEndpointWithoutPosition(t *testing.T) {
	e := newPortfolioServer()
	rec := doJSON(e, http.MethodPost, "/api/v1/trades/sell",
		`{"symbol":"AAPL","currency":"USD","quantity":5,"price":100}`)
	body := rec.Body.String()
	if !strings.Contains(body, `"status":404`) {
		t.Fatalf("want 404 in body, got %s", body)
	}
}

func TestTradesEndpointRequiresCurrency(t *testing.T) {
	e := newPortfolioServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/trades", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), `"status":400`) {
		t.Fatalf("want 400 in body, got %s", rec.Body.String())
	}
}

func TestPortfolioEndpointReturnsAllCurrencies(t *testing.T) {
	e := newPortfolioServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/portfolio", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	body := rec.Body.String()
	for _, cur := range []string{"USD", "INR", "MYR"} {
		if !strings.Contains(body, cur) {
			t.Fatalf("missing %s sub-portfolio: %s", cur, body)
		}
	}
}

func TestResetEndpoint(t *testing.T) {
	e := newPortfolioServer()
	if rec := doJSON(e, http.MethodPost, "/api/v1/trades/buy",
		`{"symbol":"AAPL","currency":"USD","quantity":10,"price":100}`); rec.Code != http.StatusOK {
		t.Fatalf("seed buy failed: %s", rec.Body.String())
	}
	rec := doJSON(e, http.MethodPost, "/api/v1/portfolio/reset", `{"full":true}`)
	if !strings.Contains(rec.Body.String(), `"reset":true`) {
		t.Fatalf("reset body = %s", rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trades?currency=USD", nil)
	out := httptest.NewRecorder()
	e.ServeHTTP(out, req)
	if !strings.Contains(out.Body.String(), `"total":0`) {
		t.Fatalf("full reset must clear trades: %s", out.Body.String())
	}
}

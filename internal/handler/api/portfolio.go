package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quantfra/swingdesk/internal/domain/models"
	"github.com/quantfra/swingdesk/internal/service/metrics"
	"github.com/quantfra/swingdesk/internal/usecase"
	xhttp "github.com/quantfra/swingdesk/pkg/http"
	applogger "github.com/quantfra/swingdesk/pkg/logger"
)

// PortfolioHandler serves the paper-trading surface. All mutations go
// through the trading usecase so persistence and audit stay attached.
type PortfolioHandler struct {
	trading *usecase.TradingUseCase
	l       *applogger.Logger
}

func NewPortfolioHandler(trading *usecase.TradingUseCase) *PortfolioHandler {
	metrics.Register()
	return &PortfolioHandler{trading: trading}
}

// SetLogger injects a structured logger.
func (h *PortfolioHandler) SetLogger(l *applogger.Logger) { h.l = l }

func (h *PortfolioHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.POST("/trades/buy", h.Buy)
	g.POST("/trades/sell", h.Sell)
	g.GET("/trades", h.Trades)
	g.GET("/portfolio", h.Portfolio)
	g.GET("/portfolio/performance", h.Performance)
	g.POST("/portfolio/reset", h.Reset)
}

func (h *PortfolioHandler) Buy(c echo.Context) error {
	start := time.Now()
	endpoint := "buy"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.BuyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	t, err := h.trading.Buy(c.Request().Context(), *req)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		if h.l != nil {
			h.l.Warn("buy rejected",
				applogger.String("symbol", req.Symbol),
				applogger.String("currency", req.Currency),
				applogger.Error(err),
			)
		}
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.CreatedResponse(c, t)
}

func (h *PortfolioHandler) Sell(c echo.Context) error {
	start := time.Now()
	endpoint := "sell"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SellRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	t, err := h.trading.Sell(c.Request().Context(), *req)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		if h.l != nil {
			h.l.Warn("sell rejected",
				applogger.String("symbol", req.Symbol),
				applogger.String("currency", req.Currency),
				applogger.Error(err),
			)
		}
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.CreatedResponse(c, t)
}

// Trades returns one currency's append-only trade log.
func (h *PortfolioHandler) Trades(c echo.Context) error {
	req := &models.PortfolioRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.Currency == "" {
		return xhttp.BadRequestResponse(c, "currency required")
	}
	trades := h.trading.Trades(c.Request().Context(), req.Currency)
	return xhttp.ListResponse(c, trades, int64(len(trades)))
}

// Portfolio marks to market. Without a currency every sub-portfolio is
// returned; totals are never summed across currencies.
func (h *PortfolioHandler) Portfolio(c echo.Context) error {
	start := time.Now()
	endpoint := "portfolio"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.PortfolioRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.Currency != "" {
		view, err := h.trading.Portfolio(c.Request().Context(), req.Currency)
		if err != nil {
			metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
			return xhttp.AppErrorResponse(c, mapDomainError(err))
		}
		return xhttp.SuccessResponse(c, view)
	}
	views, err := h.trading.PortfolioAll(c.Request().Context())
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, views)
}

func (h *PortfolioHandler) Performance(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.trading.Performance(c.Request().Context()))
}

// Reset restores initial cash; full also clears positions and history.
func (h *PortfolioHandler) Reset(c echo.Context) error {
	req := &models.ResetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.trading.Reset(c.Request().Context(), req.Full); err != nil {
		if h.l != nil {
			h.l.Error("reset failed", applogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, map[string]bool{"reset": true, "full": req.Full})
}

package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	icache "github.com/quantfra/swingdesk/internal/service/cache"
	"github.com/quantfra/swingdesk/internal/service/metrics"
	"github.com/quantfra/swingdesk/internal/service/ratelimit"
	"github.com/quantfra/swingdesk/internal/usecase"
	pkgcache "github.com/quantfra/swingdesk/pkg/cache"
	xhttp "github.com/quantfra/swingdesk/pkg/http"
	applogger "github.com/quantfra/swingdesk/pkg/logger"
)

// AnalysisHandler serves the read-only scoring surface: single-symbol
// analysis, synchronous scans, queued scans and sizing proposals.
type AnalysisHandler struct {
	analyzer *usecase.Analyzer
	scanner  *usecase.Scanner
	async    *usecase.AsyncScans
	trading  *usecase.TradingUseCase
	bars     domrepo.BarSource
	cache    icache.BytesCache
	rl       *ratelimit.Limiter
	l        *applogger.Logger
}

func NewAnalysisHandler(
	analyzer *usecase.Analyzer,
	scanner *usecase.Scanner,
	async *usecase.AsyncScans,
	trading *usecase.TradingUseCase,
	bars domrepo.BarSource,
) *AnalysisHandler {
	metrics.Register()
	return &AnalysisHandler{
		analyzer: analyzer,
		scanner:  scanner,
		async:    async,
		trading:  trading,
		bars:     bars,
		rl:       ratelimit.New(),
	}
}

// SetCache enables byte-level response caching for analyses.
func (h *AnalysisHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetLogger injects a structured logger.
func (h *AnalysisHandler) SetLogger(l *applogger.Logger) { h.l = l }

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/analyze", h.Analyze)
	g.POST("/analyze", h.Analyze)
	g.POST("/scan", h.Scan)
	g.POST("/scan/async", h.ScanAsync)
	g.GET("/scan/async/:id", h.ScanResult)
	g.POST("/size", h.Size)
	e.GET("/health", h.Health)
}

func (h *AnalysisHandler) Analyze(c echo.Context) error {
	start := time.Now()
	endpoint := "analyze"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":analyze", 10, 5) {
		if h.l != nil {
			h.l.Warn("analyze rate_limited", applogger.String("remote", c.RealIP()))
		}
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	interval := domrepo.NormalizeInterval(req.Interval)
	// The key must carry every parameter that changes the result.
	cacheKey := pkgcache.GenerateKeyWithParams("analyze", req.Symbol, req.Benchmark, string(interval), req.Lookback)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err == nil && ok {
			var cached models.AnalysisResult
			if json.Unmarshal(b, &cached) == nil {
				return xhttp.SuccessResponse(c, &cached)
			}
		}
	}

	res, err := h.analyzer.Analyze(c.Request().Context(), usecase.AnalyzeParams{
		Symbol:    req.Symbol,
		Benchmark: req.Benchmark,
		Lookback:  req.Lookback,
		Interval:  interval,
	})
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		if h.l != nil {
			h.l.Error("analyze error", applogger.String("symbol", req.Symbol), applogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	if h.cache != nil {
		if b, merr := json.Marshal(res); merr == nil {
			if err := h.cache.SetBytes(cacheKey, b, 60*time.Second); err != nil && h.l != nil {
				h.l.Warn("analyze cache_set_error", applogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Scan(c echo.Context) error {
	start := time.Now()
	endpoint := "scan"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":scan", 2, 0.5) {
		if h.l != nil {
			h.l.Warn("scan rate_limited", applogger.String("remote", c.RealIP()))
		}
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	summary, err := h.scanner.Scan(c.Request().Context(), usecase.ScanParams{
		Markets:   req.Markets,
		Threshold: req.Threshold,
		TopK:      req.TopK,
		Lookback:  req.Lookback,
		Interval:  domrepo.NormalizeInterval(req.Interval),
	}, nil)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		if h.l != nil {
			h.l.Error("scan error", applogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, summary)
}

// ScanAsync queues a scan and returns its id immediately.
func (h *AnalysisHandler) ScanAsync(c echo.Context) error {
	endpoint := "scan_async"
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.async == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_QUEUE_DISABLED", "", "background scans are not enabled", 503))
	}

	id := uuid.NewString()
	err := h.async.Enqueue(c.Request().Context(), usecase.ScanJobPayload{
		ID:        id,
		Markets:   req.Markets,
		Threshold: req.Threshold,
		TopK:      req.TopK,
		Lookback:  req.Lookback,
		Interval:  req.Interval,
	})
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		if h.l != nil {
			h.l.Error("scan enqueue error", applogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, xhttp.InternalError("enqueue failed").WithError(err))
	}
	return xhttp.CreatedResponse(c, map[string]string{"id": id, "status": "queued"})
}

// ScanResult returns a finished background scan, 404 until it lands.
func (h *AnalysisHandler) ScanResult(c echo.Context) error {
	if h.async == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_QUEUE_DISABLED", "", "background scans are not enabled", 503))
	}
	id := c.Param("id")
	summary, ok, err := h.async.Result(id)
	if err != nil {
		if h.l != nil {
			h.l.Error("scan result error", applogger.String("id", id), applogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, xhttp.InternalError("result lookup failed").WithError(err))
	}
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("scan %s not finished or unknown", id))
	}
	return xhttp.SuccessResponse(c, summary)
}

// Size returns an advisory order proposal without reserving anything.
func (h *AnalysisHandler) Size(c echo.Context) error {
	start := time.Now()
	endpoint := "size"
	defer func() { metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SizeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	proposal, err := h.trading.Size(c.Request().Context(), *req)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, proposal)
}

func (h *AnalysisHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.bars != nil {
		if err := h.bars.Health(c.Request().Context()); err != nil {
			status["status"] = "degraded"
			status["bars"] = err.Error()
			return xhttp.DataResponse(c, 503, status)
		}
	}
	return xhttp.SuccessResponse(c, status)
}

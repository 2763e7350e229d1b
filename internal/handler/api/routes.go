package api

import (
	"github.com/labstack/echo/v4"

	xhttp "github.com/quantfra/swingdesk/pkg/http"
)

// Routes bundles every handler behind one route registrar so the
// server only depends on the pkg/http Handler contract.
type Routes struct {
	Analysis  *AnalysisHandler
	Portfolio *PortfolioHandler
	Stream    *ScanStreamHandler
}

func NewRoutes(analysis *AnalysisHandler, portfolio *PortfolioHandler, stream *ScanStreamHandler) *Routes {
	return &Routes{Analysis: analysis, Portfolio: portfolio, Stream: stream}
}

func (r *Routes) RegisterRoutes(e *echo.Echo) {
	if r.Analysis != nil {
		r.Analysis.RegisterRoutes(e)
	}
	if r.Portfolio != nil {
		r.Portfolio.RegisterRoutes(e)
	}
	if r.Stream != nil {
		r.Stream.RegisterRoutes(e)
	}
}

var _ xhttp.Handler = (*Routes)(nil)

package service

import (
	"github.com/quantfra/swingdesk/internal/domain/models"
)

// IndicatorEngine computes the full indicator snapshot from a bar series.
type IndicatorEngine interface {
	Compute(symbol string, bars []models.PriceBar) (*models.IndicatorSnapshot, error)
}

// ContextClassifier derives regime and relative performance. A nil or
// short benchmark series yields unknown states, not an error.
type ContextClassifier interface {
	Classify(bars, benchmark []models.PriceBar) models.MarketContext
}

// Scorer folds indicators, context, and optional external signals into
// a bounded score with a recommendation and factor breakdown.
type Scorer interface {
	Score(snap *models.IndicatorSnapshot, mctx models.MarketContext, ext models.ExternalSignals) *models.AnalysisResult
}

// Sizer turns entry/stop prices and a cash budget into an order
// proposal. Advisory only; it never mutates the ledger.
type Sizer interface {
	Propose(symbol, currency string, entry, stop float64, cash, equity float64, override int64) (*models.OrderProposal, error)
}

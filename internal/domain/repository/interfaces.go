package repository

import (
	"context"

	"github.com/quantfra/swingdesk/internal/domain/models"
)

// BarSource provides ordered OHLCV history for a symbol. Implementations
// return models.ErrDataUnavailable when no series exists; callers of a
// multi-symbol scan must tolerate partial coverage.
type BarSource interface {
	GetHistory(ctx context.Context, symbol string, lookback int, interval Interval) ([]models.PriceBar, error)
	Health(ctx context.Context) error
	Close() error
}

// SignalSource provides the optional normalized external scalars.
// Nil pointers mean unavailable; scoring renormalizes around them.
type SignalSource interface {
	Sentiment(ctx context.Context, symbol string) (*float64, error)
	FearIndex(ctx context.Context, market string) (*float64, error)
}

// TradePublisher emits committed ledger trades to the audit stream.
// Publish failures never roll back a committed trade.
type TradePublisher interface {
	Publish(ctx context.Context, t *models.Trade) error
	Close() error
}

// SnapshotStore persists and restores versioned portfolio snapshots.
type SnapshotStore interface {
	Load(ctx context.Context) (*models.PortfolioSnapshot, error)
	Save(ctx context.Context, snap *models.PortfolioSnapshot) error
}

// Metrics records operational counters and gauges.
type Metrics interface {
	RecordAnalysis(symbol string, score float64)
	RecordScan(market string, scanned, skipped int)
	RecordTrade(currency, action string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

package usecase

import (
	"context"
	"fmt"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domrepo "github.com/quantfra/swingdesk/internal/domain/repository"
	domsvc "github.com/quantfra/swingdesk/internal/domain/service"
	"github.com/quantfra/swingdesk/internal/ledger"
	applogger "github.com/quantfra/swingdesk/pkg/logger"
)

// TradingUseCase is the only write path into the ledger. Every commit
// is persisted to the snapshot store and emitted to the audit stream;
// neither side effect can roll a committed trade back.
type TradingUseCase struct {
	ledger    *ledger.Ledger
	sizer     domsvc.Sizer
	bars      domrepo.BarSource
	store     domrepo.SnapshotStore
	publisher domrepo.TradePublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger
}

func NewTradingUseCase(
	lg *ledger.Ledger,
	sizer domsvc.Sizer,
	bars domrepo.BarSource,
	store domrepo.SnapshotStore,
	publisher domrepo.TradePublisher,
	metrics domrepo.Metrics,
) *TradingUseCase {
	return &TradingUseCase{
		ledger:    lg,
		sizer:     sizer,
		bars:      bars,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
	}
}

// SetLogger injects a structured logger.
func (uc *TradingUseCase) SetLogger(l *applogger.Logger) { uc.l = l }

// Restore loads the persisted snapshot into the ledger, if one exists.
func (uc *TradingUseCase) Restore(ctx context.Context) error {
	if uc.store == nil {
		return nil
	}
	snap, err := uc.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return nil
	}
	if err := uc.ledger.Restore(snap); err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}
	if uc.l != nil {
		uc.l.Info("portfolio restored", applogger.Int("currencies", len(snap.Cash)))
	}
	return nil
}

// Buy validates and commits a buy, then persists and publishes.
func (uc *TradingUseCase) Buy(ctx context.Context, req models.BuyRequest) (*models.Trade, error) {
	t, err := uc.ledger.Buy(req.Symbol, req.Currency, req.Quantity, req.Price, req.Target, req.Stop, req.Reason)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordError("buy_rejected")
		}
		return nil, err
	}
	uc.afterCommit(ctx, t)
	return t, nil
}

// Sell validates and commits a full or partial sell.
func (uc *TradingUseCase) Sell(ctx context.Context, req models.SellRequest) (*models.Trade, error) {
	t, err := uc.ledger.Sell(req.Symbol, req.Currency, req.Quantity, req.Price, req.Reason)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordError("sell_rejected")
		}
		return nil, err
	}
	uc.afterCommit(ctx, t)
	return t, nil
}

func (uc *TradingUseCase) afterCommit(ctx context.Context, t *models.Trade) {
	if uc.metrics != nil {
		uc.metrics.RecordTrade(t.Currency, t.Action)
	}
	if uc.store != nil {
		if err := uc.store.Save(ctx, uc.ledger.Snapshot()); err != nil && uc.l != nil {
			uc.l.Error("snapshot save failed", applogger.Error(err))
		}
	}
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, t); err != nil && uc.l != nil {
			uc.l.Warn("trade publish failed",
				applogger.String("symbol", t.Symbol),
				applogger.String("action", t.Action),
				applogger.Error(err),
			)
		}
	}
	if uc.l != nil {
		uc.l.Info("trade committed",
			applogger.String("symbol", t.Symbol),
			applogger.String("currency", t.Currency),
			applogger.String("action", t.Action),
			applogger.Int64("quantity", t.Quantity),
		)
	}
}

// Size builds an advisory order proposal from cash and equity in the
// request's currency. Nothing is reserved or mutated.
func (uc *TradingUseCase) Size(_ context.Context, req models.SizeRequest) (*models.OrderProposal, error) {
	cash := uc.ledger.Cash(req.Currency)
	equity := uc.ledger.Equity(req.Currency)
	return uc.sizer.Propose(req.Symbol, req.Currency, req.Entry, req.Stop, cash, equity, req.Override)
}

// Portfolio marks one currency's sub-portfolio to market using the
// latest close per held symbol. Price fetch failures leave a position
// valued at cost.
func (uc *TradingUseCase) Portfolio(ctx context.Context, currency string) (*models.CurrencyView, error) {
	prices := uc.latestPrices(ctx, currency)
	return uc.ledger.Valuation(currency, prices), nil
}

// PortfolioAll returns every currency's view. Sub-portfolios are
// valued independently; totals are never summed across currencies.
func (uc *TradingUseCase) PortfolioAll(ctx context.Context) ([]models.CurrencyView, error) {
	var out []models.CurrencyView
	for _, cur := range uc.ledger.Currencies() {
		v, err := uc.Portfolio(ctx, cur)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (uc *TradingUseCase) latestPrices(ctx context.Context, currency string) map[string]float64 {
	prices := make(map[string]float64)
	if uc.bars == nil {
		return prices
	}
	view := uc.ledger.Valuation(currency, nil)
	for _, pv := range view.Positions {
		bars, err := uc.bars.GetHistory(ctx, pv.Position.Symbol, 1, domrepo.Interval1d)
		if err != nil || len(bars) == 0 {
			if uc.l != nil {
				uc.l.Warn("price unavailable for valuation",
					applogger.String("symbol", pv.Position.Symbol),
					applogger.Error(err),
				)
			}
			continue
		}
		prices[pv.Position.Symbol] = bars[len(bars)-1].Close
	}
	return prices
}

// Performance reports per-currency realized stats from the trade log.
func (uc *TradingUseCase) Performance(context.Context) []models.CurrencyPerformance {
	return uc.ledger.Performance()
}

// Trades returns one currency's append-only trade log.
func (uc *TradingUseCase) Trades(_ context.Context, currency string) []models.Trade {
	return uc.ledger.Trades(currency)
}

// Reset restores initial cash and optionally clears history, then
// persists the reset state.
func (uc *TradingUseCase) Reset(ctx context.Context, full bool) error {
	uc.ledger.Reset(full)
	if uc.store != nil {
		if err := uc.store.Save(ctx, uc.ledger.Snapshot()); err != nil {
			return fmt.Errorf("persist reset: %w", err)
		}
	}
	if uc.l != nil {
		uc.l.Info("portfolio reset", applogger.Bool("full", full))
	}
	return nil
}

// Close releases the audit publisher.
func (uc *TradingUseCase) Close() {
	if uc.publisher != nil {
		_ = uc.publisher.Close()
	}
}

package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/quantfra/swingdesk/internal/domain/models"
	"github.com/quantfra/swingdesk/internal/ledger"
	"github.com/quantfra/swingdesk/internal/services/sizing"
)

type memSnapshotStore struct {
	mu   sync.Mutex
	snap *models.PortfolioSnapshot
}

func (s *memSnapshotStore) Load(context.Context) (*models.PortfolioSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap, nil
}

func (s *memSnapshotStore) Save(_ context.Context, snap *models.PortfolioSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	return nil
}

type memPublisher struct {
	mu     sync.Mutex
	trades []*models.Trade
	closed bool
}

func (p *memPublisher) Publish(_ context.Context, t *models.Trade) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trades = append(p.trades, t)
	return nil
}

func (p *memPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func newTestTrading(store *memSnapshotStore, pub *memPublisher) *TradingUseCase {
	return NewTradingUseCase(
		ledger.New(ledger.Config{}),
		sizing.NewSizer(sizing.Config{}),
		&fakeBars{},
		store,
		pub,
		nil,
	)
}

func TestBuyPersistsAndPublishes(t *testing.T) {
	store := &memSnapshotStore{}
	pub := &memPublisher{}
	uc := newTestTrading(store, pub)
	ctx := context.Background()

	tr, err := uc.Buy(ctx, models.BuyRequest{Symbol: "AAPL", Currency: "USD", Quantity: 10, Price: 100})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if tr.Action != models.ActionBuy {
		t.Fatalf("action = %s", tr.Action)
	}
	if store.snap == nil {
		t.Fatalf("commit must persist a snapshot")
	}
	if store.snap.Cash["USD"] != 9000 {
		t.Fatalf("snapshot cash = %v, want 9000", store.snap.Cash["USD"])
	}
	if len(pub.trades) != 1 || pub.trades[0].Symbol != "AAPL" {
		t.Fatalf("published trades = %+v", pub.trades)
	}
}

func TestRejectedBuyLeavesNoSideEffects(t *testing.T) {
	store := &memSnapshotStore{}
	pub := &memPublisher{}
	uc := newTestTrading(store, pub)

	_, err := uc.Buy(context.Background(), models.BuyRequest{Symbol: "AAPL", Currency: "USD", Quantity: 1000, Price: 100})
	if !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	if store.snap != nil {
		t.Fatalf("rejected trade must not persist")
	}
	if len(pub.trades) != 0 {
		t.Fatalf("rejected trade must not publish")
	}
}

func TestRestoreFromStore(t *testing.T) {
	store := &memSnapshotStore{snap: &models.PortfolioSnapshot{
		Version: ledger.SnapshotVersion,
		Cash:    map[string]float64{"USD": 4242},
	}}
	uc := newTestTrading(store, &memPublisher{})

	if err := uc.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	view, err := uc.Portfolio(context.Background(), "USD")
	if err != nil {
		t.Fatalf("portfolio: %v", err)
	}
	if view.Cash != 4242 {
		t.Fatalf("cash = %v, want 4242", view.Cash)
	}
}

func TestSizeUsesLedgerFunds(t *testing.T) {
	uc := newTestTrading(&memSnapshotStore{}, &memPublisher{})

	// Initial USD book: cash 10000, equity 10000, 2% risk, 5 per-share risk.
	p, err := uc.Size(context.Background(), models.SizeRequest{
		Symbol: "AAPL", Currency: "USD", Entry: 100, Stop: 95,
	})
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if p.Shares != 40 {
		t.Fatalf("shares = %d, want 40", p.Shares)
	}
}

func TestPortfolioMarksToMarket(t *testing.T) {
	uc := newTestTrading(&memSnapshotStore{}, &memPublisher{})
	ctx := context.Background()

	if _, err := uc.Buy(ctx, models.BuyRequest{Symbol: "AAPL", Currency: "USD", Quantity: 10, Price: 50}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	view, err := uc.Portfolio(ctx, "USD")
	if err != nil {
		t.Fatalf("portfolio: %v", err)
	}
	if len(view.Positions) != 1 {
		t.Fatalf("positions = %d", len(view.Positions))
	}
	// The synthetic feed closes well above the 50 entry, so the mark
	// must move off cost.
	if math.Abs(view.MarketValue-500) < 1e-9 {
		t.Fatalf("valuation did not use the latest close")
	}
}

func TestCloseReleasesPublisher(t *testing.T) {
	pub := &memPublisher{}
	uc := newTestTrading(&memSnapshotStore{}, pub)
	uc.Close()
	if !pub.closed {
		t.Fatalf("close must release the publisher")
	}
}

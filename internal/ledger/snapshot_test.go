package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/quantfra/swingdesk/internal/domain/models"
)

func TestSnapshotRoundTrip(t *testing.T) {
	src := newTestLedger()
	if _, err := src.Buy("AAPL", "USD", 10, 100, 0, 0, "entry"); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := src.Sell("AAPL", "USD", 4, 110, "trim"); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if _, err := src.Buy("TCS", "INR", 5, 3500, 0, 0, ""); err != nil {
		t.Fatalf("inr buy: %v", err)
	}

	snap := src.Snapshot()
	if snap.Version != SnapshotVersion {
		t.Fatalf("version = %d, want %d", snap.Version, SnapshotVersion)
	}

	dst := newTestLedger()
	if err := dst.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got, want := dst.Cash("USD"), src.Cash("USD"); math.Abs(got-want) > 1e-9 {
		t.Fatalf("usd cash = %v, want %v", got, want)
	}
	pos, ok := dst.Position("AAPL", "USD")
	if !ok || pos.Shares != 6 {
		t.Fatalf("restored position: %+v ok=%v", pos, ok)
	}
	if got := len(dst.Trades("USD")); got != 2 {
		t.Fatalf("trade history must survive restore, got %d", got)
	}
	if _, ok := dst.Position("TCS", "INR"); !ok {
		t.Fatalf("inr position lost in restore")
	}
}

func TestRestoreRejectsNewerVersion(t *testing.T) {
	l := newTestLedger()
	err := l.Restore(&models.PortfolioSnapshot{Version: SnapshotVersion + 1})
	if err == nil {
		t.Fatalf("newer snapshot version must be rejected")
	}
}

func TestRestoreRejectsNegativeCash(t *testing.T) {
	l := newTestLedger()
	err := l.Restore(&models.PortfolioSnapshot{
		Version: SnapshotVersion,
		Cash:    map[string]float64{"USD": -5},
	})
	if !errors.Is(err, models.ErrLedgerInvariant) {
		t.Fatalf("want ErrLedgerInvariant, got %v", err)
	}
}

func TestRestoreRejectsBadPosition(t *testing.T) {
	l := newTestLedger()
	err := l.Restore(&models.PortfolioSnapshot{
		Version:   SnapshotVersion,
		Cash:      map[string]float64{"USD": 100},
		Positions: map[string][]models.Position{"USD": {{Symbol: "AAPL", Shares: 0, AveragePrice: 10}}},
	})
	if !errors.Is(err, models.ErrLedgerInvariant) {
		t.Fatalf("want ErrLedgerInvariant, got %v", err)
	}
}

func TestRestoreOlderVersionLoads(t *testing.T) {
	l := newTestLedger()
	err := l.Restore(&models.PortfolioSnapshot{
		Version: 1,
		Cash:    map[string]float64{"USD": 4321},
	})
	if err != nil {
		t.Fatalf("older snapshot must load: %v", err)
	}
	if cash := l.Cash("USD"); cash != 4321 {
		t.Fatalf("cash = %v, want 4321", cash)
	}
}

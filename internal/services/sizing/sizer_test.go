package sizing

import (
	"errors"
	"math"
	"testing"

	"github.com/quantfra/swingdesk/internal/domain/models"
)

func TestProposeRiskBudget(t *testing.T) {
	s := NewSizer(Config{})
	// equity 10000, 2% risk = 200; per-share risk 100-95 = 5 -> 40 shares.
	p, err := s.Propose("AAPL", "USD", 100, 95, 10000, 10000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Shares != 40 {
		t.Fatalf("shares = %d, want 40", p.Shares)
	}
	if math.Abs(p.RiskAmount-200) > 1e-9 {
		t.Fatalf("risk amount = %v, want 200", p.RiskAmount)
	}
	if math.Abs(p.Target-110) > 1e-9 {
		t.Fatalf("target = %v, want 110", p.Target)
	}
}

func TestProposeCashCapsShares(t *testing.T) {
	s := NewSizer(Config{})
	// risk budget allows 40, but only 10 shares are affordable.
	p, err := s.Propose("AAPL", "USD", 100, 95, 1000, 10000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Shares != 10 {
		t.Fatalf("shares = %d, want 10", p.Shares)
	}
}

func TestProposeOverride(t *testing.T) {
	s := NewSizer(Config{})
	p, err := s.Propose("AAPL", "USD", 100, 95, 10000, 10000, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Shares != 7 {
		t.Fatalf("override must win while affordable, got %d", p.Shares)
	}

	// Unaffordable override falls back to the computed size.
	p, err = s.Propose("AAPL", "USD", 100, 95, 1000, 10000, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Shares != 10 {
		t.Fatalf("unaffordable override must be ignored, got %d", p.Shares)
	}
}

func TestProposeStopFallback(t *testing.T) {
	s := NewSizer(Config{})
	p, err := s.Propose("AAPL", "USD", 100, 0, 10000, 10000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(p.Stop-95) > 1e-9 {
		t.Fatalf("fallback stop = %v, want 95", p.Stop)
	}
}

func TestProposeStopAboveEntry(t *testing.T) {
	s := NewSizer(Config{})
	_, err := s.Propose("AAPL", "USD", 100, 105, 10000, 10000, 0)
	if !errors.Is(err, models.ErrInvalidStopDistance) {
		t.Fatalf("want ErrInvalidStopDistance, got %v", err)
	}
}

func TestStopFromSupports(t *testing.T) {
	s := NewSizer(Config{})
	supports := []models.Level{{Price: 97}, {Price: 93}}
	if got := s.StopFromSupports(100, supports); got != 97 {
		t.Fatalf("nearest support = %v, want 97", got)
	}
	if got := s.StopFromSupports(100, nil); math.Abs(got-95) > 1e-9 {
		t.Fatalf("fallback = %v, want 95", got)
	}
}

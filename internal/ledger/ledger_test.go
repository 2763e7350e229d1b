package ledger

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
)

func newTestLedger() *Ledger {
	return New(Config{})
}

func TestBuyDebitsCashAndOpensPosition(t *testing.T) {
	l := newTestLedger()
	tr, err := l.Buy("MAYBANK", "MYR", 1000, 6.54, 0, 0, "breakout")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Action != models.ActionBuy || tr.Quantity != 1000 {
		t.Fatalf("bad trade record: %+v", tr)
	}
	if cash := l.Cash("MYR"); math.Abs(cash-3460) > 1e-9 {
		t.Fatalf("cash = %v, want 3460", cash)
	}
	pos, ok := l.Position("MAYBANK", "MYR")
	if !ok {
		t.Fatalf("position missing")
	}
	if pos.Shares != 1000 || math.Abs(pos.AveragePrice-6.54) > 1e-9 {
		t.Fatalf("bad position: %+v", pos)
	}

	// At the entry price the position carries zero unrealized P&L.
	view := l.Valuation("MYR", map[string]float64{"MAYBANK": 6.54})
	if len(view.Positions) != 1 {
		t.Fatalf("positions = %d", len(view.Positions))
	}
	if math.Abs(view.Positions[0].UnrealizedPnL) > 1e-9 {
		t.Fatalf("unrealized pnl = %v, want 0", view.Positions[0].UnrealizedPnL)
	}
	if math.Abs(view.TotalValue-10000) > 1e-6 {
		t.Fatalf("total value = %v, want 10000", view.TotalValue)
	}
}

func TestBuyWeightedAverage(t *testing.T) {
	l := newTestLedger()
	if _, err := l.Buy("AAPL", "USD", 10, 100, 0, 0, ""); err != nil {
		t.Fatalf("first buy: %v", err)
	}
	if _, err := l.Buy("AAPL", "USD", 10, 120, 0, 0, ""); err != nil {
		t.Fatalf("second buy: %v", err)
	}
	pos, _ := l.Position("AAPL", "USD")
	if pos.Shares != 20 || math.Abs(pos.AveragePrice-110) > 1e-9 {
		t.Fatalf("avg = %v shares = %d, want 110 / 20", pos.AveragePrice, pos.Shares)
	}
}

func TestBuyRejections(t *testing.T) {
	l := newTestLedger()
	if _, err := l.Buy("AAPL", "USD", 0, 100, 0, 0, ""); !errors.Is(err, models.ErrInvalidQuantity) {
		t.Fatalf("zero quantity: %v", err)
	}
	if _, err := l.Buy("AAPL", "USD", 10, -1, 0, 0, ""); !errors.Is(err, models.ErrInvalidQuantity) {
		t.Fatalf("negative price: %v", err)
	}
	if _, err := l.Buy("AAPL", "USD", 1000, 100, 0, 0, ""); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("unaffordable buy: %v", err)
	}
	// A rejected buy must not touch cash.
	if cash := l.Cash("USD"); cash != 10000 {
		t.Fatalf("cash changed on rejection: %v", cash)
	}
}

func TestSellRealizesAgainstUnchangedAverage(t *testing.T) {
	l := newTestLedger()
	if _, err := l.Buy("AAPL", "USD", 100, 170, 0, 0, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	tr, err := l.Sell("AAPL", "USD", 50, 180, "trim")
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if math.Abs(tr.RealizedPnL-500) > 1e-9 {
		t.Fatalf("pnl = %v, want 500", tr.RealizedPnL)
	}
	pos, ok := l.Position("AAPL", "USD")
	if !ok {
		t.Fatalf("partial sell must keep the position")
	}
	if pos.Shares != 50 || math.Abs(pos.AveragePrice-170) > 1e-9 {
		t.Fatalf("average must not move on sell: %+v", pos)
	}
}

func TestRoundTripAtSamePriceIsFlat(t *testing.T) {
	l := newTestLedger()
	if _, err := l.Buy("AAPL", "USD", 10, 100, 0, 0, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	tr, err := l.Sell("AAPL", "USD", 10, 100, "")
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if math.Abs(tr.RealizedPnL) > 1e-9 {
		t.Fatalf("pnl = %v, want 0", tr.RealizedPnL)
	}
	if cash := l.Cash("USD"); math.Abs(cash-10000) > 1e-9 {
		t.Fatalf("cash = %v, want 10000", cash)
	}
}

func TestSellExactClosesPosition(t *testing.T) {
	l := newTestLedger()
	if _, err := l.Buy("AAPL", "USD", 10, 100, 0, 0, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := l.Sell("AAPL", "USD", 10, 105, ""); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if _, ok := l.Position("AAPL", "USD"); ok {
		t.Fatalf("position must be removed at zero shares")
	}
	if cash := l.Cash("USD"); math.Abs(cash-10050) > 1e-9 {
		t.Fatalf("cash = %v, want 10050", cash)
	}
}

func TestSellRejections(t *testing.T) {
	l := newTestLedger()
	if _, err := l.Sell("AAPL", "USD", 10, 100, ""); !errors.Is(err, models.ErrNoSuchPosition) {
		t.Fatalf("sell without position: %v", err)
	}
	if _, err := l.Buy("AAPL", "USD", 10, 100, 0, 0, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := l.Sell("AAPL", "USD", 11, 100, ""); !errors.Is(err, models.ErrInsufficientShares) {
		t.Fatalf("oversell: %v", err)
	}
	pos, _ := l.Position("AAPL", "USD")
	if pos.Shares != 10 {
		t.Fatalf("rejected sell must not touch shares, got %d", pos.Shares)
	}
}

func TestCurrencyIsolation(t *testing.T) {
	l := newTestLedger()
	if _, err := l.Buy("AAPL", "USD", 10, 100, 0, 0, ""); err != nil {
		t.Fatalf("usd buy: %v", err)
	}
	if cash := l.Cash("INR"); cash != 100000 {
		t.Fatalf("INR cash touched by USD trade: %v", cash)
	}
	if cash := l.Cash("MYR"); cash != 10000 {
		t.Fatalf("MYR cash touched by USD trade: %v", cash)
	}
	// The same symbol can be held independently per currency.
	if _, err := l.Buy("AAPL", "INR", 5, 200, 0, 0, ""); err != nil {
		t.Fatalf("inr buy: %v", err)
	}
	usd, _ := l.Position("AAPL", "USD")
	inr, _ := l.Position("AAPL", "INR")
	if usd.Shares != 10 || inr.Shares != 5 {
		t.Fatalf("positions leaked across currencies: %d / %d", usd.Shares, inr.Shares)
	}
}

func TestDefaultStopAndTarget(t *testing.T) {
	l := newTestLedger()
	if _, err := l.Buy("AAPL", "USD", 10, 100, 0, 0, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	pos, _ := l.Position("AAPL", "USD")
	if math.Abs(pos.TargetPrice-110) > 1e-9 {
		t.Fatalf("target = %v, want 110", pos.TargetPrice)
	}
	if math.Abs(pos.StopLoss-95) > 1e-9 {
		t.Fatalf("stop = %v, want 95", pos.StopLoss)
	}
}

func TestValuationTriggerFlags(t *testing.T) {
	l := newTestLedger()
	if _, err := l.Buy("AAPL", "USD", 10, 100, 112, 94, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}

	view := l.Valuation("USD", map[string]float64{"AAPL": 93})
	pv := view.Positions[0]
	if !pv.StopTriggered || pv.TargetTriggered {
		t.Fatalf("price below stop: stop=%v target=%v", pv.StopTriggered, pv.TargetTriggered)
	}

	view = l.Valuation("USD", map[string]float64{"AAPL": 113})
	pv = view.Positions[0]
	if pv.StopTriggered || !pv.TargetTriggered {
		t.Fatalf("price above target: stop=%v target=%v", pv.StopTriggered, pv.TargetTriggered)
	}

	// Flags are advisory only; the position must remain open.
	if _, ok := l.Position("AAPL", "USD"); !ok {
		t.Fatalf("valuation must never execute exits")
	}
}

func TestValuationMissingPriceFallsBackToCost(t *testing.T) {
	l := newTestLedger()
	if _, err := l.Buy("AAPL", "USD", 10, 100, 0, 0, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	view := l.Valuation("USD", nil)
	if math.Abs(view.MarketValue-1000) > 1e-9 {
		t.Fatalf("market value = %v, want cost 1000", view.MarketValue)
	}
	if math.Abs(view.TotalValue-10000) > 1e-9 {
		t.Fatalf("total = %v, want 10000", view.TotalValue)
	}
}

func TestPerformanceSummary(t *testing.T) {
	l := newTestLedger()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	step := 0
	l.now = func() time.Time {
		step++
		return base.AddDate(0, 0, step*2)
	}

	if _, err := l.Buy("AAPL", "USD", 10, 100, 0, 0, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := l.Sell("AAPL", "USD", 10, 110, ""); err != nil {
		t.Fatalf("winning sell: %v", err)
	}
	if _, err := l.Buy("MSFT", "USD", 10, 100, 0, 0, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := l.Sell("MSFT", "USD", 10, 90, ""); err != nil {
		t.Fatalf("losing sell: %v", err)
	}

	var usd *models.CurrencyPerformance
	for _, p := range l.Performance() {
		if p.Currency == "USD" {
			cp := p
			usd = &cp
		}
	}
	if usd == nil {
		t.Fatalf("no USD performance row")
	}
	if usd.Sells != 2 || usd.Wins != 1 {
		t.Fatalf("sells=%d wins=%d", usd.Sells, usd.Wins)
	}
	if math.Abs(usd.WinRate-50) > 1e-9 {
		t.Fatalf("win rate = %v, want 50", usd.WinRate)
	}
	if math.Abs(usd.RealizedPnL-0) > 1e-9 {
		t.Fatalf("pnl = %v, want 0", usd.RealizedPnL)
	}
	if usd.AvgHoldingDays != 2 {
		t.Fatalf("avg holding days = %v, want 2", usd.AvgHoldingDays)
	}
}

func TestResetKeepsHistoryUnlessFull(t *testing.T) {
	l := newTestLedger()
	if _, err := l.Buy("AAPL", "USD", 10, 100, 0, 0, ""); err != nil {
		t.Fatalf("buy: %v", err)
	}
	l.Reset(false)
	if cash := l.Cash("USD"); cash != 10000 {
		t.Fatalf("cash = %v, want initial 10000", cash)
	}
	if _, ok := l.Position("AAPL", "USD"); ok {
		t.Fatalf("reset must drop positions")
	}
	if got := len(l.Trades("USD")); got != 1 {
		t.Fatalf("soft reset must keep history, got %d trades", got)
	}

	l.Reset(true)
	if got := len(l.Trades("USD")); got != 0 {
		t.Fatalf("full reset must clear history, got %d trades", got)
	}
}

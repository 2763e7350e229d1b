package ledger

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/quantfra/swingdesk/internal/domain/models"
	"github.com/quantfra/swingdesk/pkg/util"
)

// Config seeds the ledger and sets the advisory exit thresholds used
// when a position carries no stored stop/target.
type Config struct {
	InitialCash   map[string]float64 `yaml:"initial_cash"`
	StopLossPct   float64            `yaml:"stop_loss_pct"`
	TakeProfitPct float64            `yaml:"take_profit_pct"`
}

func (c *Config) applyDefaults() {
	if len(c.InitialCash) == 0 {
		c.InitialCash = map[string]float64{
			"USD": 10000,
			"INR": 100000,
			"MYR": 10000,
		}
	}
	if c.StopLossPct <= 0 {
		c.StopLossPct = 5
	}
	if c.TakeProfitPct <= 0 {
		c.TakeProfitPct = 10
	}
}

// book is one currency's sub-portfolio. Books share no state; each has
// its own lock, so mutations on different currencies never contend and
// never observe each other.
type book struct {
	mu        sync.Mutex
	cash      float64
	initial   float64
	positions map[string]*models.Position
	trades    []models.Trade
}

// Ledger owns positions, per-currency cash, and the append-only trade
// log. It is mutated only through Buy and Sell; every other method is
// read-only. No amount is ever converted between currencies.
type Ledger struct {
	mu    sync.RWMutex
	books map[string]*book
	cfg   Config
	now   func() time.Time
}

func New(cfg Config) *Ledger {
	cfg.applyDefaults()
	l := &Ledger{
		books: make(map[string]*book),
		cfg:   cfg,
		now:   time.Now,
	}
	for cur, cash := range cfg.InitialCash {
		l.books[cur] = &book{
			cash:      cash,
			initial:   cash,
			positions: make(map[string]*models.Position),
		}
	}
	return l
}

func (l *Ledger) book(currency string) *book {
	l.mu.RLock()
	b, ok := l.books[currency]
	l.mu.RUnlock()
	if ok {
		return b
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok = l.books[currency]; ok {
		return b
	}
	b = &book{positions: make(map[string]*models.Position)}
	l.books[currency] = b
	return b
}

// Buy opens or extends a position. The average price is recomputed as a
// quantity-weighted mean; cash is debited in the position's currency only.
func (l *Ledger) Buy(symbol, currency string, quantity int64, price, target, stop float64, reason string) (*models.Trade, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity %d", models.ErrInvalidQuantity, quantity)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: price %.4f", models.ErrInvalidQuantity, price)
	}
	b := l.book(currency)
	b.mu.Lock()
	defer b.mu.Unlock()

	cost := float64(quantity) * price
	if cost > b.cash {
		return nil, fmt.Errorf("%w: need %.2f %s, have %.2f", models.ErrInsufficientFunds, cost, currency, b.cash)
	}

	now := l.now()
	pos, ok := b.positions[symbol]
	if !ok {
		pos = &models.Position{
			Symbol:       symbol,
			Currency:     currency,
			Shares:       quantity,
			AveragePrice: price,
			EntryTime:    now,
		}
		b.positions[symbol] = pos
	} else {
		total := pos.Shares + quantity
		pos.AveragePrice = (float64(pos.Shares)*pos.AveragePrice + cost) / float64(total)
		pos.Shares = total
	}
	if target > 0 {
		pos.TargetPrice = target
	} else if pos.TargetPrice == 0 {
		pos.TargetPrice = pos.AveragePrice * (1 + l.cfg.TakeProfitPct/100)
	}
	if stop > 0 {
		pos.StopLoss = stop
	} else if pos.StopLoss == 0 {
		pos.StopLoss = pos.AveragePrice * (1 - l.cfg.StopLossPct/100)
	}

	b.cash -= cost
	if b.cash < 0 {
		return nil, fmt.Errorf("%w: cash went negative in %s", models.ErrLedgerInvariant, currency)
	}

	t := models.Trade{
		Symbol:    symbol,
		Currency:  currency,
		Action:    models.ActionBuy,
		Quantity:  quantity,
		Price:     price,
		Timestamp: now,
		Reason:    reason,
	}
	b.trades = append(b.trades, t)
	return &t, nil
}

// Sell closes all or part of a position. Realized P&L is booked against
// the unchanged average price; the position is removed at zero shares.
func (l *Ledger) Sell(symbol, currency string, quantity int64, price float64, reason string) (*models.Trade, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity %d", models.ErrInvalidQuantity, quantity)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: price %.4f", models.ErrInvalidQuantity, price)
	}
	b := l.book(currency)
	b.mu.Lock()
	defer b.mu.Unlock()

	pos, ok := b.positions[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", models.ErrNoSuchPosition, symbol, currency)
	}
	if quantity > pos.Shares {
		return nil, fmt.Errorf("%w: want %d, hold %d", models.ErrInsufficientShares, quantity, pos.Shares)
	}

	now := l.now()
	pnl := (price - pos.AveragePrice) * float64(quantity)
	b.cash += float64(quantity) * price
	pos.Shares -= quantity
	if pos.Shares < 0 {
		return nil, fmt.Errorf("%w: shares went negative for %s", models.ErrLedgerInvariant, symbol)
	}
	holding := util.DaysBetween(pos.EntryTime, now)
	if pos.Shares == 0 {
		delete(b.positions, symbol)
	}

	t := models.Trade{
		Symbol:      symbol,
		Currency:    currency,
		Action:      models.ActionSell,
		Quantity:    quantity,
		Price:       price,
		Timestamp:   now,
		RealizedPnL: pnl,
		Reason:      reason,
		HoldingDays: holding,
	}
	b.trades = append(b.trades, t)
	return &t, nil
}

// Position returns a copy of an open position.
func (l *Ledger) Position(symbol, currency string) (models.Position, bool) {
	b := l.book(currency)
	b.mu.Lock()
	defer b.mu.Unlock()
	pos, ok := b.positions[symbol]
	if !ok {
		return models.Position{}, false
	}
	return *pos, true
}

// Cash returns the currency's free cash balance.
func (l *Ledger) Cash(currency string) float64 {
	b := l.book(currency)
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cash
}

// Equity returns cash plus invested cost basis for one currency.
func (l *Ledger) Equity(currency string) float64 {
	b := l.book(currency)
	b.mu.Lock()
	defer b.mu.Unlock()
	eq := b.cash
	for _, p := range b.positions {
		eq += float64(p.Shares) * p.AveragePrice
	}
	return eq
}

// Currencies lists every currency with a sub-portfolio, sorted.
func (l *Ledger) Currencies() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.books))
	for cur := range l.books {
		out = append(out, cur)
	}
	sort.Strings(out)
	return out
}

// Trades returns a copy of one currency's trade log.
func (l *Ledger) Trades(currency string) []models.Trade {
	b := l.book(currency)
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Trade, len(b.trades))
	copy(out, b.trades)
	return out
}

// Valuation marks one currency's positions to market against supplied
// prices and reports stop/target trigger flags. It never mutates state
// and never executes the flagged exits.
func (l *Ledger) Valuation(currency string, prices map[string]float64) *models.CurrencyView {
	b := l.book(currency)
	b.mu.Lock()
	defer b.mu.Unlock()

	view := &models.CurrencyView{Currency: currency, Cash: b.cash}
	now := l.now()
	symbols := make([]string, 0, len(b.positions))
	for s := range b.positions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	for _, s := range symbols {
		pos := b.positions[s]
		price, havePrice := prices[s]
		pv := models.PositionValuation{
			Position:    *pos,
			HoldingDays: util.DaysBetween(pos.EntryTime, now),
		}
		invested := float64(pos.Shares) * pos.AveragePrice
		view.Invested += invested
		if havePrice && price > 0 {
			pv.CurrentPrice = price
			pv.MarketValue = float64(pos.Shares) * price
			pv.UnrealizedPnL = (price - pos.AveragePrice) * float64(pos.Shares)
			if invested > 0 {
				pv.UnrealizedPct = pv.UnrealizedPnL / invested * 100
			}
			pv.StopTriggered = l.stopHit(pos, price, pv.UnrealizedPct)
			pv.TargetTriggered = l.targetHit(pos, price, pv.UnrealizedPct)
			view.MarketValue += pv.MarketValue
		} else {
			view.MarketValue += invested
		}
		view.Positions = append(view.Positions, pv)
	}
	view.TotalValue = view.Cash + view.MarketValue
	return view
}

func (l *Ledger) stopHit(pos *models.Position, price, pnlPct float64) bool {
	if pos.StopLoss > 0 {
		return price <= pos.StopLoss
	}
	return pnlPct <= -l.cfg.StopLossPct
}

func (l *Ledger) targetHit(pos *models.Position, price, pnlPct float64) bool {
	if pos.TargetPrice > 0 {
		return price >= pos.TargetPrice
	}
	return pnlPct >= l.cfg.TakeProfitPct
}

// Performance summarizes closed trades per currency from the trade log.
func (l *Ledger) Performance() []models.CurrencyPerformance {
	out := make([]models.CurrencyPerformance, 0)
	for _, cur := range l.Currencies() {
		b := l.book(cur)
		b.mu.Lock()
		perf := models.CurrencyPerformance{Currency: cur, Trades: len(b.trades)}
		holdingSum := 0
		for _, t := range b.trades {
			if t.Action != models.ActionSell {
				continue
			}
			perf.Sells++
			perf.RealizedPnL += t.RealizedPnL
			holdingSum += t.HoldingDays
			if t.RealizedPnL > 0 {
				perf.Wins++
			}
		}
		if perf.Sells > 0 {
			perf.WinRate = float64(perf.Wins) / float64(perf.Sells) * 100
			perf.AvgHoldingDays = float64(holdingSum) / float64(perf.Sells)
		}
		b.mu.Unlock()
		out = append(out, perf)
	}
	return out
}

// Reset restores initial cash and drops open positions. The trade log
// is kept unless full is set; history is never dropped implicitly.
func (l *Ledger) Reset(full bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, b := range l.books {
		b.mu.Lock()
		b.cash = b.initial
		b.positions = make(map[string]*models.Position)
		if full {
			b.trades = nil
		}
		b.mu.Unlock()
	}
}

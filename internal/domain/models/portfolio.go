package models

import "time"

// Trade actions.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// Position is one open holding. Exactly one Position exists per
// (symbol, currency) pair; it is created on the first buy, averaged on
// subsequent buys, and removed when shares reach zero.
type Position struct {
	Symbol       string    `json:"symbol"`
	Currency     string    `json:"currency"`
	Shares       int64     `json:"shares"`
	AveragePrice float64   `json:"average_price"`
	TargetPrice  float64   `json:"target_price"`
	StopLoss     float64   `json:"stop_loss"`
	EntryTime    time.Time `json:"entry_time"`
}

// Trade is one append-only ledger record. SELL trades carry realized
// P&L and holding days; records are never mutated or deleted.
type Trade struct {
	Symbol      string    `json:"symbol"`
	Currency    string    `json:"currency"`
	Action      string    `json:"action"`
	Quantity    int64     `json:"quantity"`
	Price       float64   `json:"price"`
	Timestamp   time.Time `json:"timestamp"`
	RealizedPnL float64   `json:"realized_pnl,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	HoldingDays int       `json:"holding_days,omitempty"`
}

// PositionValuation is a read-only mark-to-market view of one Position.
// Trigger flags report stop/target hits; nothing is auto-executed.
type PositionValuation struct {
	Position        Position `json:"position"`
	CurrentPrice    float64  `json:"current_price"`
	MarketValue     float64  `json:"market_value"`
	UnrealizedPnL   float64  `json:"unrealized_pnl"`
	UnrealizedPct   float64  `json:"unrealized_pct"`
	StopTriggered   bool     `json:"stop_triggered"`
	TargetTriggered bool     `json:"target_triggered"`
	HoldingDays     int      `json:"holding_days"`
}

// CurrencyView is the valuation of one currency's sub-portfolio. Values
// stay in that currency; nothing is ever converted.
type CurrencyView struct {
	Currency    string              `json:"currency"`
	Cash        float64             `json:"cash"`
	Invested    float64             `json:"invested"`
	MarketValue float64             `json:"market_value"`
	TotalValue  float64             `json:"total_value"`
	Positions   []PositionValuation `json:"positions"`
}

// CurrencyPerformance summarizes closed trades for one currency.
type CurrencyPerformance struct {
	Currency       string  `json:"currency"`
	RealizedPnL    float64 `json:"realized_pnl"`
	Trades         int     `json:"trades"`
	Sells          int     `json:"sells"`
	Wins           int     `json:"wins"`
	WinRate        float64 `json:"win_rate"`
	AvgHoldingDays float64 `json:"avg_holding_days"`
}

// PortfolioSnapshot is the versioned persistent form of the ledger.
// Loading tolerates missing newer optional fields and never drops
// trade history.
type PortfolioSnapshot struct {
	Version   int                   `json:"version"`
	SavedAt   time.Time             `json:"saved_at"`
	Cash      map[string]float64    `json:"cash"`
	Positions map[string][]Position `json:"positions"`
	Trades    map[string][]Trade    `json:"trades"`
}

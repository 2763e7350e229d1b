package sizing

import (
	"fmt"
	"math"

	"github.com/quantfra/swingdesk/internal/domain/models"
	domsvc "github.com/quantfra/swingdesk/internal/domain/service"
)

// Config holds the risk parameters of position sizing.
type Config struct {
	// RiskPerTrade is the fraction of equity put at risk per trade.
	RiskPerTrade float64 `yaml:"risk_per_trade"`
	// StopFallbackPct is applied below entry when no support qualifies.
	StopFallbackPct float64 `yaml:"stop_fallback_pct"`
	// TargetPct sets the default target above entry.
	TargetPct float64 `yaml:"target_pct"`
}

func (c *Config) applyDefaults() {
	if c.RiskPerTrade <= 0 {
		c.RiskPerTrade = 0.02
	}
	if c.StopFallbackPct <= 0 {
		c.StopFallbackPct = 5
	}
	if c.TargetPct <= 0 {
		c.TargetPct = 10
	}
}

// Sizer converts an entry/stop pair and a cash budget into an order
// proposal. It reads ledger state but never mutates it.
type Sizer struct {
	cfg Config
}

func NewSizer(cfg Config) *Sizer {
	cfg.applyDefaults()
	return &Sizer{cfg: cfg}
}

// Propose sizes an order. The stop must sit strictly below the entry;
// a manual override is honored only while it stays affordable.
func (s *Sizer) Propose(symbol, currency string, entry, stop float64, cash, equity float64, override int64) (*models.OrderProposal, error) {
	if entry <= 0 {
		return nil, fmt.Errorf("%w: entry price must be positive", models.ErrInvalidQuantity)
	}
	if stop <= 0 {
		stop = entry * (1 - s.cfg.StopFallbackPct/100)
	}
	perShareRisk := entry - stop
	if perShareRisk <= 0 {
		return nil, fmt.Errorf("%w: stop %.4f at or above entry %.4f", models.ErrInvalidStopDistance, stop, entry)
	}

	riskAmount := equity * s.cfg.RiskPerTrade
	riskShares := int64(math.Floor(riskAmount / perShareRisk))
	affordable := int64(math.Floor(cash / entry))

	shares := riskShares
	if affordable < shares {
		shares = affordable
	}
	if override > 0 && override <= affordable {
		shares = override
	}
	if shares < 0 {
		shares = 0
	}

	return &models.OrderProposal{
		Symbol:     symbol,
		Currency:   currency,
		Shares:     shares,
		Entry:      entry,
		Target:     entry * (1 + s.cfg.TargetPct/100),
		Stop:       stop,
		RiskAmount: riskAmount,
	}, nil
}

// StopFromSupports picks the nearest support below entry as the stop,
// falling back to the configured percentage when none qualifies.
func (s *Sizer) StopFromSupports(entry float64, supports []models.Level) float64 {
	for _, lv := range supports {
		if lv.Price < entry {
			return lv.Price
		}
	}
	return entry * (1 - s.cfg.StopFallbackPct/100)
}

var _ domsvc.Sizer = (*Sizer)(nil)

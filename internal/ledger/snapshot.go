package ledger

import (
	"fmt"

	"github.com/quantfra/swingdesk/internal/domain/models"
)

// SnapshotVersion is the current persistent schema version. Older
// snapshots load as long as required fields are present; unknown newer
// fields are ignored on read.
const SnapshotVersion = 2

// Snapshot captures a point-in-time copy of the whole ledger for
// persistence. The copy is taken per currency under that book's lock.
func (l *Ledger) Snapshot() *models.PortfolioSnapshot {
	snap := &models.PortfolioSnapshot{
		Version:   SnapshotVersion,
		SavedAt:   l.now(),
		Cash:      make(map[string]float64),
		Positions: make(map[string][]models.Position),
		Trades:    make(map[string][]models.Trade),
	}
	for _, cur := range l.Currencies() {
		b := l.book(cur)
		b.mu.Lock()
		snap.Cash[cur] = b.cash
		positions := make([]models.Position, 0, len(b.positions))
		for _, p := range b.positions {
			positions = append(positions, *p)
		}
		snap.Positions[cur] = positions
		trades := make([]models.Trade, len(b.trades))
		copy(trades, b.trades)
		snap.Trades[cur] = trades
		b.mu.Unlock()
	}
	return snap
}

// Restore replaces ledger state with a persisted snapshot. Trade
// history present in the snapshot is always carried over in full.
func (l *Ledger) Restore(snap *models.PortfolioSnapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	if snap.Version > SnapshotVersion {
		return fmt.Errorf("snapshot version %d newer than supported %d", snap.Version, SnapshotVersion)
	}
	for cur, cash := range snap.Cash {
		if cash < 0 {
			return fmt.Errorf("%w: negative cash %.2f in %s", models.ErrLedgerInvariant, cash, cur)
		}
		b := l.book(cur)
		b.mu.Lock()
		b.cash = cash
		if initial, ok := l.cfg.InitialCash[cur]; ok {
			b.initial = initial
		}
		b.positions = make(map[string]*models.Position)
		for _, p := range snap.Positions[cur] {
			if p.Shares <= 0 || p.AveragePrice <= 0 {
				b.mu.Unlock()
				return fmt.Errorf("%w: bad position %s in %s", models.ErrLedgerInvariant, p.Symbol, cur)
			}
			pc := p
			b.positions[p.Symbol] = &pc
		}
		trades := make([]models.Trade, len(snap.Trades[cur]))
		copy(trades, snap.Trades[cur])
		b.trades = trades
		b.mu.Unlock()
	}
	return nil
}

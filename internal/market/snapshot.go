package market

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/marvinkome/tada/internal/curve"
	"github.com/marvinkome/tada/internal/ledger"
)

// Snapshot is the persisted form of a market.
type Snapshot struct {
	Token     ledger.Snapshot `json:"token"`
	BasePrice string          `json:"base_price"`
	Slope     string          `json:"slope"`
	Seed      string          `json:"seed"`
	Reserve   string          `json:"reserve"`
}

func (m *Market) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		Token:     m.token.Snapshot(),
		BasePrice: m.curve.BasePrice().Dec(),
		Slope:     m.curve.Slope().Dec(),
		Seed:      m.seed.Dec(),
		Reserve:   m.reserve.get().Dec(),
	}
}

// Restore rebuilds a market from s against backing and verifies its
// invariants before returning it.
func Restore(s Snapshot, backing Backing, log *zap.Logger) (*Market, error) {
	token, err := ledger.Restore(s.Token)
	if err != nil {
		return nil, err
	}
	var vals [4]*uint256.Int
	for i, raw := range []string{s.BasePrice, s.Slope, s.Seed, s.Reserve} {
		v, err := uint256.FromDecimal(raw)
		if err != nil {
			return nil, fmt.Errorf("market %s: %q: %w", s.Token.Symbol, raw, err)
		}
		vals[i] = v
	}
	c, err := curve.New(vals[0], vals[1])
	if err != nil {
		return nil, fmt.Errorf("market %s: %w", s.Token.Symbol, err)
	}
	m := newMarket(token, c, vals[2], vals[3], backing, log)
	if err := m.CheckInvariants(); err != nil {
		return nil, err
	}
	return m, nil
}

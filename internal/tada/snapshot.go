package tada

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/marvinkome/tada/internal/curve"
	"github.com/marvinkome/tada/internal/ledger"
	"github.com/marvinkome/tada/internal/market"
)

// Snapshot is the persisted form of the registry and all its markets.
type Snapshot struct {
	Address         common.Address    `json:"address"`
	Owner           common.Address    `json:"owner"`
	Nonce           uint64            `json:"nonce"`
	FaucetAmount    string            `json:"faucet_amount"`
	BasePrice       string            `json:"base_price"`
	Slope           string            `json:"slope"`
	Seed            string            `json:"seed"`
	Creators        []market.Snapshot `json:"creators"`
	FaucetAddresses []common.Address  `json:"faucet_addresses"`
	FaucetIDs       []common.Hash     `json:"faucet_ids"`
}

func (t *TaDa) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Snapshot{
		Address:      t.address,
		Owner:        t.owner,
		Nonce:        t.nonce,
		FaucetAmount: t.faucetAmount.Dec(),
		BasePrice:    t.curve.BasePrice().Dec(),
		Slope:        t.curve.Slope().Dec(),
		Seed:         t.seed.Dec(),
		Creators:     make([]market.Snapshot, 0, len(t.creators)),
	}
	for _, m := range t.creators {
		s.Creators = append(s.Creators, m.Snapshot())
	}
	for a := range t.faucetAddrs {
		s.FaucetAddresses = append(s.FaucetAddresses, a)
	}
	for id := range t.faucetIDs {
		s.FaucetIDs = append(s.FaucetIDs, id)
	}
	sort.Slice(s.FaucetAddresses, func(i, j int) bool { return s.FaucetAddresses[i].Cmp(s.FaucetAddresses[j]) < 0 })
	sort.Slice(s.FaucetIDs, func(i, j int) bool { return s.FaucetIDs[i].Cmp(s.FaucetIDs[j]) < 0 })
	return s
}

// Restore rebuilds the registry against token, which must already hold the
// restored ShillToken state.
func Restore(s Snapshot, token *ledger.Ledger, log *zap.Logger) (*TaDa, error) {
	var vals [4]*uint256.Int
	for i, raw := range []string{s.FaucetAmount, s.BasePrice, s.Slope, s.Seed} {
		v, err := uint256.FromDecimal(raw)
		if err != nil {
			return nil, fmt.Errorf("tada: %q: %w", raw, err)
		}
		vals[i] = v
	}
	c, err := curve.New(vals[1], vals[2])
	if err != nil {
		return nil, fmt.Errorf("tada: %w", err)
	}
	t, err := New(Config{
		Address:      s.Address,
		Owner:        s.Owner,
		Token:        token,
		FaucetAmount: vals[0],
		Curve:        c,
		Seed:         vals[3],
		Logger:       log,
	})
	if err != nil {
		return nil, err
	}
	t.nonce = s.Nonce

	for _, ms := range s.Creators {
		m, err := market.Restore(ms, token, t.log)
		if err != nil {
			return nil, fmt.Errorf("tada: restore %s: %w", ms.Token.Symbol, err)
		}
		t.add(m)
	}
	for _, a := range s.FaucetAddresses {
		t.faucetAddrs[a] = true
	}
	for _, id := range s.FaucetIDs {
		t.faucetIDs[id] = true
	}
	return t, nil
}

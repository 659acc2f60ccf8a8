package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Snapshot is the JSON form of a ledger. Amounts are decimal strings so the
// file stays readable and exact.
type Snapshot struct {
	Name        string                       `json:"name"`
	Symbol      string                       `json:"symbol"`
	Decimals    uint8                        `json:"decimals"`
	Address     common.Address               `json:"address"`
	TotalSupply string                       `json:"total_supply"`
	Balances    map[string]string            `json:"balances"`
	Allowances  map[string]map[string]string `json:"allowances,omitempty"`
}

// Snapshot captures the ledger's current state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Snapshot{
		Name:        l.name,
		Symbol:      l.symbol,
		Decimals:    l.decimals,
		Address:     l.address,
		TotalSupply: l.totalSupply.Dec(),
		Balances:    make(map[string]string, len(l.balances)),
	}
	for addr, bal := range l.balances {
		s.Balances[addr.Hex()] = bal.Dec()
	}
	for owner, spenders := range l.allowances {
		for spender, amt := range spenders {
			if amt.IsZero() {
				continue
			}
			if s.Allowances == nil {
				s.Allowances = make(map[string]map[string]string)
			}
			if s.Allowances[owner.Hex()] == nil {
				s.Allowances[owner.Hex()] = make(map[string]string)
			}
			s.Allowances[owner.Hex()][spender.Hex()] = amt.Dec()
		}
	}
	return s
}

// Restore rebuilds a ledger from a snapshot and checks that its balances add
// up to the recorded supply.
func Restore(s Snapshot) (*Ledger, error) {
	l := New(s.Name, s.Symbol, s.Decimals, s.Address)

	supply, err := uint256.FromDecimal(s.TotalSupply)
	if err != nil {
		return nil, fmt.Errorf("ledger %s: total supply %q: %w", s.Symbol, s.TotalSupply, err)
	}
	l.totalSupply = supply

	for addr, raw := range s.Balances {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("ledger %s: bad holder address %q", s.Symbol, addr)
		}
		bal, err := uint256.FromDecimal(raw)
		if err != nil {
			return nil, fmt.Errorf("ledger %s: balance of %s: %w", s.Symbol, addr, err)
		}
		l.setBalance(common.HexToAddress(addr), bal)
	}
	for owner, spenders := range s.Allowances {
		for spender, raw := range spenders {
			amt, err := uint256.FromDecimal(raw)
			if err != nil {
				return nil, fmt.Errorf("ledger %s: allowance %s->%s: %w", s.Symbol, owner, spender, err)
			}
			o, sp := common.HexToAddress(owner), common.HexToAddress(spender)
			if l.allowances[o] == nil {
				l.allowances[o] = make(map[common.Address]*uint256.Int)
			}
			l.allowances[o][sp] = amt
		}
	}

	if !l.Conserved() {
		return nil, fmt.Errorf("ledger %s: balances do not sum to total supply %s", s.Symbol, s.TotalSupply)
	}
	return l, nil
}

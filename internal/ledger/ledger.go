// Package ledger keeps ERC-20 style token state: total supply, balances and
// allowances. It backs both the ShillToken currency and every creator token's
// supply.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Errors.
var (
	ErrZeroAddress           = errors.New("zero address")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrOverflow              = errors.New("balance overflow")
)

// Ledger is safe for concurrent use. Every mutating method checks all of its
// preconditions before touching state, so a failed call changes nothing.
type Ledger struct {
	mu sync.RWMutex

	name     string
	symbol   string
	decimals uint8
	address  common.Address

	totalSupply *uint256.Int
	balances    map[common.Address]*uint256.Int
	allowances  map[common.Address]map[common.Address]*uint256.Int
}

// New creates an empty ledger for a token deployed at address.
func New(name, symbol string, decimals uint8, address common.Address) *Ledger {
	return &Ledger{
		name:        name,
		symbol:      symbol,
		decimals:    decimals,
		address:     address,
		totalSupply: new(uint256.Int),
		balances:    make(map[common.Address]*uint256.Int),
		allowances:  make(map[common.Address]map[common.Address]*uint256.Int),
	}
}

func (l *Ledger) Name() string            { return l.name }
func (l *Ledger) Symbol() string          { return l.symbol }
func (l *Ledger) Decimals() uint8         { return l.decimals }
func (l *Ledger) Address() common.Address { return l.address }

// TotalSupply returns a copy of the outstanding supply.
func (l *Ledger) TotalSupply() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalSupply.Clone()
}

// BalanceOf returns a copy of account's balance.
func (l *Ledger) BalanceOf(account common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceOf(account).Clone()
}

// Allowance returns how much spender may still move out of owner's balance.
func (l *Ledger) Allowance(owner, spender common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowance(owner, spender).Clone()
}

// Mint creates amount new units for to.
func (l *Ledger) Mint(to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return fmt.Errorf("mint: %w", ErrZeroAddress)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	supply, overflow := new(uint256.Int).AddOverflow(l.totalSupply, amount)
	if overflow {
		return fmt.Errorf("mint %s: %w", amount.Dec(), ErrOverflow)
	}
	// Balances never exceed supply, so this add cannot overflow.
	l.setBalance(to, new(uint256.Int).Add(l.balanceOf(to), amount))
	l.totalSupply = supply
	return nil
}

// Burn destroys amount units held by from.
func (l *Ledger) Burn(from common.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.balanceOf(from)
	if bal.Lt(amount) {
		return fmt.Errorf("burn %s from %s (balance %s): %w",
			amount.Dec(), from.Hex(), bal.Dec(), ErrInsufficientBalance)
	}
	l.setBalance(from, new(uint256.Int).Sub(bal, amount))
	l.totalSupply = new(uint256.Int).Sub(l.totalSupply, amount)
	return nil
}

// Transfer moves amount from one holder to another.
func (l *Ledger) Transfer(from, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return fmt.Errorf("transfer: %w", ErrZeroAddress)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transfer(from, to, amount)
}

// Approve sets spender's allowance over owner's balance, replacing any
// previous value.
func (l *Ledger) Approve(owner, spender common.Address, amount *uint256.Int) error {
	if spender == (common.Address{}) {
		return fmt.Errorf("approve: %w", ErrZeroAddress)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[common.Address]*uint256.Int)
	}
	l.allowances[owner][spender] = amount.Clone()
	return nil
}

// TransferFrom moves amount from owner to to, spending spender's allowance.
// An allowance of 2^256-1 is treated as unlimited and never decremented.
func (l *Ledger) TransferFrom(spender, owner, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return fmt.Errorf("transferFrom: %w", ErrZeroAddress)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	allowed := l.allowance(owner, spender)
	if allowed.Lt(amount) {
		return fmt.Errorf("spender %s allowed %s of %s, needs %s: %w",
			spender.Hex(), allowed.Dec(), owner.Hex(), amount.Dec(), ErrInsufficientAllowance)
	}
	if err := l.transfer(owner, to, amount); err != nil {
		return err
	}
	if !isUnlimited(allowed) {
		l.allowances[owner][spender] = new(uint256.Int).Sub(allowed, amount)
	}
	return nil
}

// Holder is one non-zero balance.
type Holder struct {
	Address common.Address
	Balance *uint256.Int
}

// Holders lists every non-zero balance, largest first.
func (l *Ledger) Holders() []Holder {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Holder, 0, len(l.balances))
	for addr, bal := range l.balances {
		out = append(out, Holder{Address: addr, Balance: bal.Clone()})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Balance.Cmp(out[j].Balance); c != 0 {
			return c > 0
		}
		return out[i].Address.Cmp(out[j].Address) < 0
	})
	return out
}

// Conserved reports whether the balances add up to the total supply.
func (l *Ledger) Conserved() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sum := new(uint256.Int)
	for _, bal := range l.balances {
		if _, overflow := sum.AddOverflow(sum, bal); overflow {
			return false
		}
	}
	return sum.Eq(l.totalSupply)
}

// --- helpers (callers hold l.mu) ---

func (l *Ledger) transfer(from, to common.Address, amount *uint256.Int) error {
	bal := l.balanceOf(from)
	if bal.Lt(amount) {
		return fmt.Errorf("transfer %s from %s (balance %s): %w",
			amount.Dec(), from.Hex(), bal.Dec(), ErrInsufficientBalance)
	}
	if from == to {
		return nil
	}
	l.setBalance(from, new(uint256.Int).Sub(bal, amount))
	l.setBalance(to, new(uint256.Int).Add(l.balanceOf(to), amount))
	return nil
}

func (l *Ledger) balanceOf(account common.Address) *uint256.Int {
	if bal, ok := l.balances[account]; ok {
		return bal
	}
	return new(uint256.Int)
}

func (l *Ledger) setBalance(account common.Address, bal *uint256.Int) {
	if bal.IsZero() {
		delete(l.balances, account)
		return
	}
	l.balances[account] = bal
}

func (l *Ledger) allowance(owner, spender common.Address) *uint256.Int {
	if a, ok := l.allowances[owner][spender]; ok {
		return a
	}
	return new(uint256.Int)
}

func isUnlimited(v *uint256.Int) bool {
	return v.Eq(new(uint256.Int).SetAllOne())
}

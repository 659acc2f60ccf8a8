package market

import (
	"fmt"

	"github.com/holiman/uint256"
)

// reserve is the backing currency the market holds against outstanding
// supply. It only moves through Buy and Sell, and only after every other
// check of the trade has passed.
type reserve struct {
	balance *uint256.Int
}

func newReserve(initial *uint256.Int) *reserve {
	return &reserve{balance: initial.Clone()}
}

// plus returns the balance after a credit without applying it.
func (r *reserve) plus(amount *uint256.Int) (*uint256.Int, error) {
	next, overflow := new(uint256.Int).AddOverflow(r.balance, amount)
	if overflow {
		return nil, fmt.Errorf("%w: reserve %s + %s", ErrArithmeticOverflow, r.balance.Dec(), amount.Dec())
	}
	return next, nil
}

// minus returns the balance after a debit without applying it.
func (r *reserve) minus(amount *uint256.Int) (*uint256.Int, error) {
	if r.balance.Lt(amount) {
		return nil, fmt.Errorf("%w: reserve %s, needs %s", ErrInsufficientReserve, r.balance.Dec(), amount.Dec())
	}
	return new(uint256.Int).Sub(r.balance, amount), nil
}

func (r *reserve) set(v *uint256.Int) { r.balance = v }

func (r *reserve) get() *uint256.Int { return r.balance.Clone() }

// Package curve prices creator-token issuance on a polynomial bonding curve.
//
// The unit price at a circulating supply of s whole tokens is
//
//	price(s) = BasePrice + Slope * s^2
//
// Supplies and amounts are 18-decimal fixed-point integers (1e18 == one token)
// and prices are expressed in backing-currency wei per whole token. Buying
// tokens costs the area under the curve between the old and new supply; selling
// pays back the area between the new and old supply. Every evaluation is exact
// integer arithmetic with one rounding step at the very end: costs round up,
// proceeds round down, so a buy followed by a sell of the same amount can never
// return more than it cost.
package curve

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrInvalidCurve       = errors.New("invalid curve")
)

// Rounding selects the direction of the final division.
type Rounding int

const (
	RoundDown Rounding = iota
	RoundUp
)

var (
	bigOne    = big.NewInt(1)
	bigThree  = big.NewInt(3)
	wad       = big.NewInt(1_000_000_000_000_000_000)
	wad2      = new(big.Int).Mul(wad, wad)
	threeWad2 = new(big.Int).Mul(bigThree, wad2)
	threeWad3 = new(big.Int).Mul(threeWad2, wad)
	maxUint   = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 256), bigOne)
)

// Default curve parameters: 0.01 backing units per token at zero supply,
// growing by 0.001 * s^2.
var (
	DefaultBasePrice = uint256.NewInt(10_000_000_000_000_000)
	DefaultSlope     = uint256.NewInt(1_000_000_000_000_000)
)

// Curve holds the polynomial coefficients. It is immutable after New.
type Curve struct {
	basePrice *uint256.Int
	slope     *uint256.Int
}

// New returns a curve with the given coefficients. Slope must be non-zero so
// that price is strictly increasing in supply.
func New(basePrice, slope *uint256.Int) (*Curve, error) {
	if basePrice == nil || slope == nil {
		return nil, fmt.Errorf("%w: missing coefficient", ErrInvalidCurve)
	}
	if slope.IsZero() {
		return nil, fmt.Errorf("%w: slope must be positive", ErrInvalidCurve)
	}
	return &Curve{basePrice: basePrice.Clone(), slope: slope.Clone()}, nil
}

// Default returns the curve with DefaultBasePrice and DefaultSlope.
func Default() *Curve {
	c, _ := New(DefaultBasePrice, DefaultSlope)
	return c
}

// BasePrice returns a copy of the zero-supply price.
func (c *Curve) BasePrice() *uint256.Int { return c.basePrice.Clone() }

// Slope returns a copy of the quadratic coefficient.
func (c *Curve) Slope() *uint256.Int { return c.slope.Clone() }

// SpotPrice is the instantaneous price at supply, rounded down.
func (c *Curve) SpotPrice(supply *uint256.Int) (*uint256.Int, error) {
	s := supply.ToBig()
	p := new(big.Int).Mul(s, s)
	p.Mul(p, c.slope.ToBig())
	p.Quo(p, wad2)
	p.Add(p, c.basePrice.ToBig())
	return fromBig(p)
}

// Integral returns the area under the curve between from and to (from <= to).
func (c *Curve) Integral(from, to *uint256.Int, r Rounding) (*uint256.Int, error) {
	if from.Gt(to) {
		return nil, fmt.Errorf("%w: integral bounds reversed", ErrInvalidAmount)
	}
	return fromBig(c.integral(from.ToBig(), to.ToBig(), r))
}

// BuyCost is the backing-currency cost of minting amount on top of supply,
// rounded up.
func (c *Curve) BuyCost(supply, amount *uint256.Int) (*uint256.Int, error) {
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	to, overflow := new(uint256.Int).AddOverflow(supply, amount)
	if overflow {
		return nil, fmt.Errorf("%w: supply %s + %s", ErrArithmeticOverflow, supply.Dec(), amount.Dec())
	}
	return c.Integral(supply, to, RoundUp)
}

// SellProceeds is the backing currency paid for burning amount out of supply,
// rounded down.
func (c *Curve) SellProceeds(supply, amount *uint256.Int) (*uint256.Int, error) {
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if amount.Gt(supply) {
		return nil, fmt.Errorf("%w: %s exceeds supply %s", ErrInvalidAmount, amount.Dec(), supply.Dec())
	}
	from := new(uint256.Int).Sub(supply, amount)
	return c.Integral(from, supply, RoundDown)
}

// MaxTokensFor returns the largest amount whose BuyCost at supply does not
// exceed budget. The result is zero when budget cannot buy a single unit.
func (c *Curve) MaxTokensFor(supply, budget *uint256.Int) (*uint256.Int, error) {
	if budget.IsZero() {
		return nil, fmt.Errorf("%w: budget must be positive", ErrInvalidAmount)
	}
	// First amount that costs strictly more than the budget, minus one.
	t, err := c.search(supply, budget.ToBig(), true)
	if err != nil {
		return nil, err
	}
	t.Sub(t, bigOne)
	return fromBig(t)
}

// TokensCovering returns the smallest amount whose BuyCost at supply is at
// least budget.
func (c *Curve) TokensCovering(supply, budget *uint256.Int) (*uint256.Int, error) {
	if budget.IsZero() {
		return nil, fmt.Errorf("%w: budget must be positive", ErrInvalidAmount)
	}
	t, err := c.search(supply, budget.ToBig(), false)
	if err != nil {
		return nil, err
	}
	if new(big.Int).Add(supply.ToBig(), t).Cmp(maxUint) > 0 {
		return nil, fmt.Errorf("%w: no mintable amount covers %s", ErrArithmeticOverflow, budget.Dec())
	}
	return fromBig(t)
}

// search finds the smallest t >= 1 whose round-up cost exceeds budget
// (strict) or reaches it (!strict). Amounts that would push supply past
// 2^256-1 count as exceeding every budget. cost(0) == 0 < budget, so the
// predicate is false at zero and the bracket is always well formed.
func (c *Curve) search(supply *uint256.Int, budget *big.Int, strict bool) (*big.Int, error) {
	s := supply.ToBig()
	hit := func(t *big.Int) bool {
		b := new(big.Int).Add(s, t)
		if b.Cmp(maxUint) > 0 {
			return true
		}
		cmp := c.integral(s, b, RoundUp).Cmp(budget)
		if strict {
			return cmp > 0
		}
		return cmp >= 0
	}

	lo := new(big.Int)
	hi := new(big.Int).Set(wad)
	for !hit(hi) {
		lo.Set(hi)
		hi.Lsh(hi, 1)
	}
	for new(big.Int).Sub(hi, lo).Cmp(bigOne) > 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Rsh(mid, 1)
		if hit(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, nil
}

// integral evaluates (Base*(b-a)*3W^2 + Slope*(b^3-a^3)) / 3W^3.
func (c *Curve) integral(a, b *big.Int, r Rounding) *big.Int {
	width := new(big.Int).Sub(b, a)
	num := new(big.Int).Mul(c.basePrice.ToBig(), width)
	num.Mul(num, threeWad2)

	cubes := new(big.Int).Exp(b, bigThree, nil)
	cubes.Sub(cubes, new(big.Int).Exp(a, bigThree, nil))
	cubes.Mul(cubes, c.slope.ToBig())
	num.Add(num, cubes)

	q, m := new(big.Int).QuoRem(num, threeWad3, new(big.Int))
	if r == RoundUp && m.Sign() != 0 {
		q.Add(q, bigOne)
	}
	return q
}

func fromBig(v *big.Int) (*uint256.Int, error) {
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("%w: result exceeds uint256", ErrArithmeticOverflow)
	}
	return out, nil
}

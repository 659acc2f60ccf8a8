// Package market implements a creator token: an ERC-20 supply whose only
// issuer and redeemer is a bonding curve priced in a backing currency.
package market

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/marvinkome/tada/internal/curve"
	"github.com/marvinkome/tada/internal/ledger"
	"github.com/marvinkome/tada/internal/units"
)

// DefaultSeed is the supply minted to the market itself on creation.
var DefaultSeed = units.Ether(1)

// Backing is the currency a market buys and sells against.
type Backing interface {
	Symbol() string
	BalanceOf(account common.Address) *uint256.Int
	Transfer(from, to common.Address, amount *uint256.Int) error
	TransferFrom(spender, owner, to common.Address, amount *uint256.Int) error
}

// Params configures a new market. Curve, Seed and Logger fall back to
// defaults when nil.
type Params struct {
	Name    string
	Symbol  string
	Address common.Address
	Curve   *curve.Curve
	Seed    *uint256.Int
	Backing Backing
	Logger  *zap.Logger
}

// Market is safe for concurrent use. Quotes share a read lock; trades take
// the write lock and re-read supply and reserve under it.
type Market struct {
	mu sync.RWMutex

	token   *ledger.Ledger
	curve   *curve.Curve
	seed    *uint256.Int
	reserve *reserve
	backing Backing
	log     *zap.Logger
}

// New deploys a market at p.Address and mints the seed supply to it.
func New(p Params) (*Market, error) {
	if p.Name == "" || p.Symbol == "" {
		return nil, fmt.Errorf("market: name and symbol are required")
	}
	if p.Address == (common.Address{}) {
		return nil, fmt.Errorf("market %s: %w", p.Symbol, ledger.ErrZeroAddress)
	}
	if p.Backing == nil {
		return nil, fmt.Errorf("market %s: backing currency is required", p.Symbol)
	}
	if p.Curve == nil {
		p.Curve = curve.Default()
	}
	if p.Seed == nil {
		p.Seed = DefaultSeed
	}
	if p.Seed.IsZero() {
		return nil, fmt.Errorf("market %s: %w: seed must be positive", p.Symbol, ErrInvalidAmount)
	}

	token := ledger.New(p.Name, p.Symbol, units.Decimals, p.Address)
	if err := token.Mint(p.Address, p.Seed); err != nil {
		return nil, fmt.Errorf("market %s: mint seed: %w", p.Symbol, err)
	}
	return newMarket(token, p.Curve, p.Seed.Clone(), new(uint256.Int), p.Backing, p.Logger), nil
}

func newMarket(token *ledger.Ledger, c *curve.Curve, seed, reserveBal *uint256.Int, backing Backing, log *zap.Logger) *Market {
	if log == nil {
		log = zap.NewNop()
	}
	return &Market{
		token:   token,
		curve:   c,
		seed:    seed,
		reserve: newReserve(reserveBal),
		backing: backing,
		log:     log.With(zap.String("market", token.Symbol()), zap.String("address", token.Address().Hex())),
	}
}

func (m *Market) Name() string            { return m.token.Name() }
func (m *Market) Symbol() string          { return m.token.Symbol() }
func (m *Market) Decimals() uint8         { return m.token.Decimals() }
func (m *Market) Address() common.Address { return m.token.Address() }

// Curve returns the pricing curve. Curves are immutable.
func (m *Market) Curve() *curve.Curve { return m.curve }

// Seed returns the supply minted at creation, which is never redeemable.
func (m *Market) Seed() *uint256.Int { return m.seed.Clone() }

func (m *Market) TotalSupply() *uint256.Int { return m.token.TotalSupply() }

func (m *Market) BalanceOf(account common.Address) *uint256.Int { return m.token.BalanceOf(account) }

// ReserveBalance is the backing currency held against the outstanding supply.
func (m *Market) ReserveBalance() *uint256.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reserve.get()
}

// SpotPrice is the marginal price of one whole token at the current supply.
func (m *Market) SpotPrice() (*uint256.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.curve.SpotPrice(m.token.TotalSupply())
}

// CalculateBuyPrice is the backing currency needed to mint amount at the
// current supply.
func (m *Market) CalculateBuyPrice(amount *uint256.Int) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.curve.BuyCost(m.token.TotalSupply(), amount)
}

// EstimateBuyPrice returns the smallest token amount whose buy price covers
// budget. The price of the result lands in [budget, budget + one marginal
// token-unit), which keeps it within 10% for any budget of practical size.
func (m *Market) EstimateBuyPrice(budget *uint256.Int) (*uint256.Int, error) {
	if budget == nil || budget.IsZero() {
		return nil, fmt.Errorf("%w: budget must be positive", ErrInvalidAmount)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.curve.TokensCovering(m.token.TotalSupply(), budget)
}

// CalculateSellPrice is the backing currency returned for burning amount at
// the current supply.
func (m *Market) CalculateSellPrice(amount *uint256.Int) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.curve.SellProceeds(m.token.TotalSupply(), amount)
}

// Transfer moves creator tokens between holders.
func (m *Market) Transfer(from, to common.Address, amount *uint256.Int) error {
	if err := m.checkTrader(from); err != nil {
		return err
	}
	return m.token.Transfer(from, to, amount)
}

func (m *Market) Approve(owner, spender common.Address, amount *uint256.Int) error {
	return m.token.Approve(owner, spender, amount)
}

func (m *Market) Allowance(owner, spender common.Address) *uint256.Int {
	return m.token.Allowance(owner, spender)
}

func (m *Market) TransferFrom(spender, owner, to common.Address, amount *uint256.Int) error {
	if err := m.checkTrader(owner); err != nil {
		return err
	}
	return m.token.TransferFrom(spender, owner, to, amount)
}

// Holders lists every non-zero balance, largest first.
func (m *Market) Holders() []ledger.Holder { return m.token.Holders() }

// CheckInvariants verifies that balances add up to supply, that the reserve
// covers the area under the curve above the seed, and that the market really
// holds its reserve in the backing currency.
func (m *Market) CheckInvariants() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.token.Conserved() {
		return fmt.Errorf("%w: %s balances do not sum to supply", ErrInvariant, m.Symbol())
	}
	supply := m.token.TotalSupply()
	if supply.Lt(m.seed) {
		return fmt.Errorf("%w: %s supply %s below seed %s", ErrInvariant, m.Symbol(), supply.Dec(), m.seed.Dec())
	}
	owed, err := m.curve.Integral(m.seed, supply, curve.RoundUp)
	if err != nil {
		return err
	}
	res := m.reserve.get()
	if res.Lt(owed) {
		return fmt.Errorf("%w: %s reserve %s below redemption value %s", ErrInvariant, m.Symbol(), res.Dec(), owed.Dec())
	}
	if held := m.backing.BalanceOf(m.Address()); held.Lt(res) {
		return fmt.Errorf("%w: %s holds %s %s, reserve says %s", ErrInvariant, m.Symbol(), held.Dec(), m.backing.Symbol(), res.Dec())
	}
	return nil
}

// checkTrader rejects accounts that may not trade: the zero address and the
// market's own address, whose seed balance must stay put.
func (m *Market) checkTrader(a common.Address) error {
	switch a {
	case common.Address{}:
		return fmt.Errorf("%w: zero address", ErrInvalidTrader)
	case m.Address():
		return fmt.Errorf("%w: market %s cannot trade with itself", ErrInvalidTrader, m.Symbol())
	}
	return nil
}

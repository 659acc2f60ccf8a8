package market

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// Direction of a trade against the curve.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// Quote is what a trade would do at the supply it was computed against. It is
// advisory: any trade in between makes it stale.
type Quote struct {
	Direction Direction
	AmountIn  *uint256.Int
	AmountOut *uint256.Int
	Supply    *uint256.Int
}

// Trade is an executed buy or sell.
type Trade struct {
	Direction    Direction
	Trader       common.Address
	AmountIn     *uint256.Int
	AmountOut    *uint256.Int
	SupplyAfter  *uint256.Int
	ReserveAfter *uint256.Int
}

// QuoteBuy returns how many tokens Buy would mint for payment right now.
func (m *Market) QuoteBuy(payment *uint256.Int) (Quote, error) {
	if payment == nil || payment.IsZero() {
		return Quote{}, fmt.Errorf("%w: payment must be positive", ErrInvalidAmount)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	supply := m.token.TotalSupply()
	out, err := m.curve.MaxTokensFor(supply, payment)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Direction: DirectionBuy, AmountIn: payment.Clone(), AmountOut: out, Supply: supply}, nil
}

// QuoteSell returns what Sell would pay for amount right now.
func (m *Market) QuoteSell(amount *uint256.Int) (Quote, error) {
	if amount == nil || amount.IsZero() {
		return Quote{}, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	supply := m.token.TotalSupply()
	out, err := m.curve.SellProceeds(supply, amount)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Direction: DirectionSell, AmountIn: amount.Clone(), AmountOut: out, Supply: supply}, nil
}

// Buy spends payment of the backing currency, which buyer must have approved
// to the market, and mints as many tokens as it pays for at the current
// supply. The whole payment goes to the reserve.
func (m *Market) Buy(buyer common.Address, payment *uint256.Int) (*Trade, error) {
	return m.BuyWithMinOut(buyer, payment, nil)
}

// BuyWithMinOut is Buy that fails with ErrSlippageExceeded when fewer than
// minOut tokens would be minted. A nil minOut disables the check.
func (m *Market) BuyWithMinOut(buyer common.Address, payment, minOut *uint256.Int) (*Trade, error) {
	if payment == nil || payment.IsZero() {
		return nil, fmt.Errorf("%w: payment must be positive", ErrInvalidAmount)
	}
	if err := m.checkTrader(buyer); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	supply := m.token.TotalSupply()
	out, err := m.curve.MaxTokensFor(supply, payment)
	if err != nil {
		return nil, err
	}
	if out.IsZero() {
		return nil, fmt.Errorf("%w: %s wei buys no %s", ErrInvalidAmount, payment.Dec(), m.Symbol())
	}
	if minOut != nil && out.Lt(minOut) {
		return nil, fmt.Errorf("%w: buy would mint %s, minimum %s", ErrSlippageExceeded, out.Dec(), minOut.Dec())
	}
	supplyAfter, overflow := new(uint256.Int).AddOverflow(supply, out)
	if overflow {
		return nil, fmt.Errorf("%w: supply %s + %s", ErrArithmeticOverflow, supply.Dec(), out.Dec())
	}
	reserveAfter, err := m.reserve.plus(payment)
	if err != nil {
		return nil, err
	}

	if err := m.backing.TransferFrom(m.Address(), buyer, m.Address(), payment); err != nil {
		return nil, fmt.Errorf("collect %s %s from %s: %w: %w",
			payment.Dec(), m.backing.Symbol(), buyer.Hex(), ErrInsufficientAllowance, err)
	}
	if err := m.token.Mint(buyer, out); err != nil {
		// Checked above; hand the payment back so nothing moved.
		if rerr := m.backing.Transfer(m.Address(), buyer, payment); rerr != nil {
			m.log.Error("refund after failed mint", zap.Error(rerr))
		}
		return nil, fmt.Errorf("mint %s: %w", m.Symbol(), err)
	}
	m.reserve.set(reserveAfter)

	m.log.Info("buy",
		zap.String("buyer", buyer.Hex()),
		zap.String("payment", payment.Dec()),
		zap.String("minted", out.Dec()),
		zap.String("supply", supplyAfter.Dec()),
		zap.String("reserve", reserveAfter.Dec()),
	)
	return &Trade{
		Direction:    DirectionBuy,
		Trader:       buyer,
		AmountIn:     payment.Clone(),
		AmountOut:    out,
		SupplyAfter:  supplyAfter,
		ReserveAfter: reserveAfter.Clone(),
	}, nil
}

// Sell burns amount of seller's tokens and pays the curve's proceeds out of
// the reserve.
func (m *Market) Sell(seller common.Address, amount *uint256.Int) (*Trade, error) {
	return m.SellWithMinOut(seller, amount, nil)
}

// SellWithMinOut is Sell that fails with ErrSlippageExceeded when the
// proceeds would fall below minOut. A nil minOut disables the check.
func (m *Market) SellWithMinOut(seller common.Address, amount, minOut *uint256.Int) (*Trade, error) {
	if amount == nil || amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if err := m.checkTrader(seller); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if bal := m.token.BalanceOf(seller); bal.Lt(amount) {
		return nil, fmt.Errorf("sell %s %s from %s (balance %s): %w",
			amount.Dec(), m.Symbol(), seller.Hex(), bal.Dec(), ErrInsufficientBalance)
	}
	supply := m.token.TotalSupply()
	proceeds, err := m.curve.SellProceeds(supply, amount)
	if err != nil {
		return nil, err
	}
	if minOut != nil && proceeds.Lt(minOut) {
		return nil, fmt.Errorf("%w: sell would return %s, minimum %s", ErrSlippageExceeded, proceeds.Dec(), minOut.Dec())
	}
	reserveAfter, err := m.reserve.minus(proceeds)
	if err != nil {
		return nil, err
	}

	if err := m.token.Burn(seller, amount); err != nil {
		return nil, err
	}
	if !proceeds.IsZero() {
		if err := m.backing.Transfer(m.Address(), seller, proceeds); err != nil {
			if merr := m.token.Mint(seller, amount); merr != nil {
				m.log.Error("re-mint after failed payout", zap.Error(merr))
			}
			return nil, fmt.Errorf("pay out %s %s: %w", proceeds.Dec(), m.backing.Symbol(), err)
		}
	}
	m.reserve.set(reserveAfter)
	supplyAfter := new(uint256.Int).Sub(supply, amount)

	m.log.Info("sell",
		zap.String("seller", seller.Hex()),
		zap.String("burned", amount.Dec()),
		zap.String("proceeds", proceeds.Dec()),
		zap.String("supply", supplyAfter.Dec()),
		zap.String("reserve", reserveAfter.Dec()),
	)
	return &Trade{
		Direction:    DirectionSell,
		Trader:       seller,
		AmountIn:     amount.Clone(),
		AmountOut:    proceeds,
		SupplyAfter:  supplyAfter,
		ReserveAfter: reserveAfter.Clone(),
	}, nil
}

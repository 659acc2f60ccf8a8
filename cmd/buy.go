package cmd

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/contract"
	"github.com/marvinkome/tada/internal/ui"
	"github.com/marvinkome/tada/internal/units"
)

var (
	buyMinOut   string
	buySlippage string
)

var buyCmd = &cobra.Command{
	Use:   "buy <symbol> <shill-amount>",
	Short: "Spend SHILL on a creator token",
	Long: `Buy creator tokens with SHILL.

The market is approved to pull exactly the payment (when the current
allowance is lower), then buy mints as many tokens as the payment
covers at the current supply. The whole payment goes to the reserve.

Protect against the price moving with --min-out (absolute) or
--slippage (percent below the current quote).

Examples:
  tada buy MKR 10
  tada buy MKR 10 --slippage 1
  tada buy MKR 10 --min-out 25 --from bob`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		payment, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		from, err := sender()
		if err != nil {
			return err
		}
		mgr := newWalletManager()
		ctx := cmd.Context()

		return updateChain(cmd, func(c *chain.Chain) error {
			m, err := c.TaDa().Lookup(args[0])
			if err != nil {
				return err
			}
			q, err := m.QuoteBuy(payment)
			if err != nil {
				return err
			}
			minOut, err := minimumOut(q.AmountOut, buyMinOut, buySlippage)
			if err != nil {
				return err
			}

			shill := c.ShillToken()
			if shill.Allowance(from, m.Address()).Lt(payment) {
				if _, _, err := c.Transact(ctx, from, shill.Address(), contract.KindShillToken, "approve", m.Address(), payment.ToBig()); err != nil {
					return err
				}
			}

			method, callArgs := "buy", []interface{}{payment.ToBig()}
			if minOut != nil {
				method, callArgs = "buyWithMinOut", append(callArgs, minOut.ToBig())
			}
			r, vals, err := c.Transact(ctx, from, m.Address(), contract.KindCreatorToken, method, callArgs...)
			if err != nil {
				return err
			}
			minted := uintOut(vals, 0)
			spot, _ := m.SpotPrice()
			log.Info("buy",
				zap.String("market", m.Symbol()),
				zap.String("buyer", from.Hex()),
				zap.String("payment", payment.Dec()),
				zap.String("minted", minted.Dec()),
			)

			pairs := append(receiptPairs(mgr, r),
				[2]string{"Paid", fmtAmount(payment) + " SHILL"},
				[2]string{"Received", ui.Val(fmtAmount(minted)) + " " + m.Symbol()},
				[2]string{"New spot", fmtAmount(spot) + " SHILL"},
			)
			if minOut != nil {
				pairs = append(pairs, [2]string{"Min out", fmtAmount(minOut)})
			}
			printBlock(cmd.OutOrStdout(), "Bought "+m.Symbol(), pairs)
			return nil
		})
	},
}

// minimumOut turns --min-out or --slippage into the smallest acceptable
// output. It returns nil when neither is set.
func minimumOut(quoted *uint256.Int, minOut, slippage string) (*uint256.Int, error) {
	if minOut != "" && slippage != "" {
		return nil, fmt.Errorf("use either --min-out or --slippage, not both")
	}
	if minOut != "" {
		return parseAmount(minOut)
	}
	if slippage == "" {
		return nil, nil
	}
	// Percent with two decimals, in basis points.
	bps, err := units.ParseUnits(slippage, 2)
	if err != nil {
		return nil, fmt.Errorf("invalid slippage %q: %w", slippage, err)
	}
	if bps.GtUint64(10_000) {
		return nil, fmt.Errorf("invalid slippage %q: above 100%%", slippage)
	}
	keep := new(uint256.Int).Sub(uint256.NewInt(10_000), bps)
	out := new(uint256.Int).Mul(quoted, keep)
	return out.Div(out, uint256.NewInt(10_000)), nil
}

func init() {
	buyCmd.Flags().StringVar(&buyMinOut, "min-out", "", "fail unless at least this many tokens are minted")
	buyCmd.Flags().StringVar(&buySlippage, "slippage", "", "accepted shortfall from the current quote, in percent")
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/contract"
	"github.com/marvinkome/tada/internal/ui"
)

var (
	sellMinOut   string
	sellSlippage string
)

var sellCmd = &cobra.Command{
	Use:   "sell <symbol> <token-amount|all>",
	Short: "Sell creator tokens back to the market for SHILL",
	Long: `Sell creator tokens. The tokens are burned and the curve integral
for the removed supply, rounded down, is paid out of the reserve.

Examples:
  tada sell MKR 5
  tada sell MKR all --slippage 0.5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
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

			amount := m.BalanceOf(from)
			if !strings.EqualFold(args[1], "all") {
				if amount, err = parseAmount(args[1]); err != nil {
					return err
				}
			} else if amount.IsZero() {
				return fmt.Errorf("no %s to sell", m.Symbol())
			}

			q, err := m.QuoteSell(amount)
			if err != nil {
				return err
			}
			minOut, err := minimumOut(q.AmountOut, sellMinOut, sellSlippage)
			if err != nil {
				return err
			}

			method, callArgs := "sell", []interface{}{amount.ToBig()}
			if minOut != nil {
				method, callArgs = "sellWithMinOut", append(callArgs, minOut.ToBig())
			}
			r, vals, err := c.Transact(ctx, from, m.Address(), contract.KindCreatorToken, method, callArgs...)
			if err != nil {
				return err
			}
			proceeds := uintOut(vals, 0)
			spot, _ := m.SpotPrice()
			log.Info("sell",
				zap.String("market", m.Symbol()),
				zap.String("seller", from.Hex()),
				zap.String("amount", amount.Dec()),
				zap.String("proceeds", proceeds.Dec()),
			)

			pairs := append(receiptPairs(mgr, r),
				[2]string{"Sold", fmtAmount(amount) + " " + m.Symbol()},
				[2]string{"Received", ui.Val(fmtAmount(proceeds)) + " SHILL"},
				[2]string{"New spot", fmtAmount(spot) + " SHILL"},
			)
			printBlock(cmd.OutOrStdout(), "Sold "+m.Symbol(), pairs)
			return nil
		})
	},
}

func init() {
	sellCmd.Flags().StringVar(&sellMinOut, "min-out", "", "fail unless at least this much SHILL is paid out")
	sellCmd.Flags().StringVar(&sellSlippage, "slippage", "", "accepted shortfall from the current quote, in percent")
}

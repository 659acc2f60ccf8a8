package cmd

import (
	"github.com/spf13/cobra"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/contract"
	"github.com/marvinkome/tada/internal/ui"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a trade without executing it",
	Long: `Quotes read the current supply and change nothing. Any trade that
lands first moves the price, so a quote is advisory.`,
}

var quoteBuyCmd = &cobra.Command{
	Use:   "buy <symbol> <shill-amount>",
	Short: "Tokens received for a SHILL payment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		payment, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		return viewChain(cmd, func(c *chain.Chain) error {
			m, err := c.TaDa().Lookup(args[0])
			if err != nil {
				return err
			}
			q, err := m.QuoteBuy(payment)
			if err != nil {
				return err
			}
			est, err := c.Query(cmd.Context(), m.Address(), m.Address(), contract.KindCreatorToken, "estimateBuyPrice", payment.ToBig())
			if err != nil {
				return err
			}
			printBlock(cmd.OutOrStdout(), "Buy quote", [][2]string{
				{"Market", ui.Symbol(m.Symbol())},
				{"Pay", fmtAmount(q.AmountIn) + " SHILL"},
				{"Receive", ui.Val(fmtAmount(q.AmountOut)) + " " + m.Symbol()},
				{"Estimate", fmtAmount(uintOut(est, 0)) + " " + m.Symbol()},
				{"Supply now", fmtAmount(q.Supply)},
			})
			return nil
		})
	},
}

var quoteCostCmd = &cobra.Command{
	Use:   "cost <symbol> <token-amount>",
	Short: "SHILL needed to buy an exact number of tokens",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		return viewChain(cmd, func(c *chain.Chain) error {
			m, err := c.TaDa().Lookup(args[0])
			if err != nil {
				return err
			}
			cost, err := c.Query(cmd.Context(), m.Address(), m.Address(), contract.KindCreatorToken, "calculateBuyPrice", amount.ToBig())
			if err != nil {
				return err
			}
			printBlock(cmd.OutOrStdout(), "Buy cost", [][2]string{
				{"Market", ui.Symbol(m.Symbol())},
				{"Tokens", fmtAmount(amount) + " " + m.Symbol()},
				{"Cost", ui.Val(fmtAmount(uintOut(cost, 0))) + " SHILL"},
			})
			return nil
		})
	},
}

var quoteSellCmd = &cobra.Command{
	Use:   "sell <symbol> <token-amount>",
	Short: "SHILL paid out for selling tokens",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		return viewChain(cmd, func(c *chain.Chain) error {
			m, err := c.TaDa().Lookup(args[0])
			if err != nil {
				return err
			}
			proceeds, err := c.Query(cmd.Context(), m.Address(), m.Address(), contract.KindCreatorToken, "calculateSellPrice", amount.ToBig())
			if err != nil {
				return err
			}
			printBlock(cmd.OutOrStdout(), "Sell quote", [][2]string{
				{"Market", ui.Symbol(m.Symbol())},
				{"Sell", fmtAmount(amount) + " " + m.Symbol()},
				{"Receive", ui.Val(fmtAmount(uintOut(proceeds, 0))) + " SHILL"},
			})
			return nil
		})
	},
}

func init() {
	quoteCmd.AddCommand(quoteBuyCmd, quoteCostCmd, quoteSellCmd)
}

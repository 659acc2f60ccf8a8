package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/contract"
	"github.com/marvinkome/tada/internal/ui"
)

var balanceAll bool

var balanceCmd = &cobra.Command{
	Use:   "balance [account]",
	Short: "Show SHILL and creator token holdings",
	Long: `Show an account's SHILL balance and every creator token it holds,
valued at what selling it right now would pay.

Examples:
  tada balance
  tada balance bob
  tada balance 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := fromFlag
		if len(args) == 1 {
			ref = args[0]
		}
		mgr := newWalletManager()
		who, err := mgr.Resolve(ref)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		return viewChain(cmd, func(c *chain.Chain) error {
			ctx := cmd.Context()
			shill := c.ShillToken()
			vals, err := c.Query(ctx, who, shill.Address(), contract.KindShillToken, "balanceOf", who)
			if err != nil {
				return err
			}

			printBlock(out, "Balances", [][2]string{
				{"Account", accountLabel(mgr, who)},
				{"SHILL", ui.Val(fmtAmount(uintOut(vals, 0)))},
				{"Faucet claimed", fmt.Sprintf("%t", c.TaDa().HasFaucetAddress(who))},
			})

			t := ui.NewTable([]ui.Column{
				{Title: "Token", Width: 8},
				{Title: "Balance", Width: 18, Right: true},
				{Title: "Sell value (SHILL)", Width: 20, Right: true},
			})
			for _, m := range c.TaDa().Markets() {
				bal, err := c.Query(ctx, who, m.Address(), contract.KindCreatorToken, "balanceOf", who)
				if err != nil {
					return err
				}
				held := uintOut(bal, 0)
				if held.IsZero() && !balanceAll {
					continue
				}
				value := "-"
				if !held.IsZero() {
					proceeds, err := m.CalculateSellPrice(held)
					if err == nil {
						value = fmtAmount(proceeds)
					}
				}
				t.AddRow(ui.Row{ui.Symbol(m.Symbol()), ui.Val(fmtAmount(held)), value})
			}
			if len(t.Rows) == 0 {
				fmt.Fprintln(out, ui.Meta("No creator tokens held."))
				return nil
			}
			fmt.Fprintln(out, t.Render())
			return nil
		})
	},
}

func init() {
	balanceCmd.Flags().BoolVar(&balanceAll, "all", false, "include creator tokens with a zero balance")
}

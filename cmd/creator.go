package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/config"
	"github.com/marvinkome/tada/internal/contract"
	"github.com/marvinkome/tada/internal/tada"
	"github.com/marvinkome/tada/internal/ui"
	"github.com/marvinkome/tada/internal/units"
)

var creatorHolders bool

var creatorCmd = &cobra.Command{
	Use:     "creator",
	Aliases: []string{"creators"},
	Short:   "Create and inspect creator tokens",
}

var creatorCreateCmd = &cobra.Command{
	Use:   "create <name> <symbol>",
	Short: "Create a creator token with its own bonding-curve market",
	Long: `Create a creator token through TaDa.makeCreatorToken.

The market starts with a seed supply held by the token contract itself,
so the first buyer already pays a price above the base price.

Examples:
  tada creator create "Mark Rober" MKR
  tada creator create Veritasium VRT --from alice`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := sender()
		if err != nil {
			return err
		}
		mgr := newWalletManager()
		return updateChain(cmd, func(c *chain.Chain) error {
			r, vals, err := c.Transact(cmd.Context(), from, c.TaDa().Address(), contract.KindTaDa, "makeCreatorToken", args[0], args[1])
			if err != nil {
				return err
			}
			addr, _ := vals[0].(common.Address)
			pairs := append(receiptPairs(mgr, r),
				[2]string{"Creator", args[0]},
				[2]string{"Symbol", ui.Symbol(args[1])},
				[2]string{"Token", ui.Addr(addr.Hex())},
			)
			printBlock(cmd.OutOrStdout(), "Creator token created", pairs)
			return nil
		})
	},
}

var creatorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List creator tokens by spot price",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		budget, err := parseAmount(cfg.QuoteBudget)
		if err != nil {
			return fmt.Errorf("quote_budget: %w", err)
		}
		return viewChain(cmd, func(c *chain.Chain) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), config.QuoteTimeout)
			defer cancel()
			prices, err := c.TaDa().Prices(ctx, budget)
			if err != nil {
				return err
			}
			if len(prices) == 0 {
				fmt.Fprintln(out, ui.Info("No creator tokens yet."))
				fmt.Fprintln(out, ui.Hint(`Create one with: tada creator create "Mark Rober" MKR`))
				return nil
			}
			fmt.Fprintln(out, priceTable(prices, budget).Render())
			return nil
		})
	},
}

var creatorInfoCmd = &cobra.Command{
	Use:   "info <symbol|address>",
	Short: "Show a creator token's market",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		budget, err := parseAmount(cfg.QuoteBudget)
		if err != nil {
			return fmt.Errorf("quote_budget: %w", err)
		}
		mgr := newWalletManager()
		return viewChain(cmd, func(c *chain.Chain) error {
			m, err := c.TaDa().Lookup(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			at := m.Address()
			spot, err := c.Query(ctx, at, at, contract.KindCreatorToken, "spotPrice")
			if err != nil {
				return err
			}
			est, err := c.Query(ctx, at, at, contract.KindCreatorToken, "estimateBuyPrice", budget.ToBig())
			if err != nil {
				return err
			}
			sellOne, err := c.Query(ctx, at, at, contract.KindCreatorToken, "calculateSellPrice", units.Ether(1).ToBig())
			if err != nil {
				return err
			}

			holders := m.Holders()
			printBlock(out, m.Name(), [][2]string{
				{"Symbol", ui.Symbol(m.Symbol())},
				{"Address", ui.Addr(at.Hex())},
				{"Supply", fmtAmount(m.TotalSupply())},
				{"Seed", fmtAmount(m.Seed())},
				{"Reserve", fmtAmount(m.ReserveBalance()) + " SHILL"},
				{"Spot price", fmtAmount(uintOut(spot, 0)) + " SHILL"},
				{"Sell 1 token", fmtAmount(uintOut(sellOne, 0)) + " SHILL"},
				{fmt.Sprintf("Tokens per %s SHILL", units.FormatEther(budget)), fmtAmount(uintOut(est, 0))},
				{"Holders", fmt.Sprintf("%d", len(holders))},
			})

			if creatorHolders && len(holders) > 0 {
				t := ui.NewTable([]ui.Column{
					{Title: "Holder", Width: 60},
					{Title: "Balance", Width: 20, Right: true},
				})
				for _, h := range holders {
					t.AddRow(ui.Row{accountLabel(mgr, h.Address), fmtAmount(h.Balance)})
				}
				fmt.Fprintln(out, t.Render())
			}
			return nil
		})
	},
}

func priceTable(prices []tada.Price, budget *uint256.Int) *ui.Table {
	t := ui.NewTable([]ui.Column{
		{Title: "Symbol", Width: 8},
		{Title: "Name", Width: 20},
		{Title: "Spot (SHILL)", Width: 14, Right: true},
		{Title: "Supply", Width: 14, Right: true},
		{Title: "Reserve", Width: 14, Right: true},
		{Title: "Per " + units.FormatEther(budget) + " SHILL", Width: 16, Right: true},
		{Title: "Address", Width: 14},
	})
	for _, p := range prices {
		t.AddRow(ui.Row{
			ui.Symbol(p.Symbol),
			p.Name,
			ui.Val(fmtAmount(p.Spot)),
			fmtAmount(p.Supply),
			fmtAmount(p.Reserve),
			fmtAmount(p.Tokens),
			ui.Addr(ui.TruncateAddr(p.Address.Hex())),
		})
	}
	return t
}

func init() {
	creatorInfoCmd.Flags().BoolVar(&creatorHolders, "holders", false, "list every holder")
	creatorCmd.AddCommand(creatorCreateCmd, creatorListCmd, creatorInfoCmd)
}

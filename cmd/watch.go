package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/config"
	"github.com/marvinkome/tada/internal/state"
	"github.com/marvinkome/tada/internal/ui"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live board of every creator market",
	Long: `Open a live board of spot price, supply, reserve and how many tokens
the quote budget buys in each market. The board re-reads the chain state
on every refresh, so trades from other terminals show up as they land.

Keys: ↑/↓ move, r refresh, q quit.

Examples:
  tada watch
  tada watch --interval 500ms`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		budget, err := parseAmount(cfg.QuoteBudget)
		if err != nil {
			return err
		}
		interval := watchInterval
		if interval <= 0 {
			interval = time.Duration(cfg.WatchInterval) * time.Second
		}
		store := newStore()
		if !store.Exists() {
			return state.ErrNoState
		}

		fetch := func() (ui.BoardSnapshot, error) {
			snap := ui.BoardSnapshot{Budget: budget}
			err := store.View(cmd.Context(), func(c *chain.Chain) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), config.QuoteTimeout)
				defer cancel()
				prices, err := c.TaDa().Prices(ctx, budget)
				if err != nil {
					return err
				}
				snap.Block = c.Block()
				snap.Prices = prices
				return nil
			})
			return snap, err
		}
		return ui.RunBoard(ui.NewBoard(fetch, interval))
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "refresh interval (default: watch_interval from config)")
}

package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/ui"
)

var (
	txsLast   int
	txsFailed bool
)

var txsCmd = &cobra.Command{
	Use:   "txs [hash]",
	Short: "List recent transactions or show one receipt",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		mgr := newWalletManager()
		return viewChain(cmd, func(c *chain.Chain) error {
			if len(args) == 1 {
				r, err := c.Receipt(common.HexToHash(args[0]))
				if err != nil {
					return err
				}
				pairs := append(receiptPairs(mgr, r), [2]string{"To", ui.Addr(r.To.Hex())})
				if r.Error != "" {
					pairs = append(pairs, [2]string{"Error", ui.StyleError.Render(r.Error)})
				}
				if len(r.Output) > 0 {
					pairs = append(pairs, [2]string{"Output", r.Output.String()})
				}
				printBlock(out, "Receipt", pairs)
				return nil
			}

			receipts := c.Receipts(0)
			t := ui.NewTable([]ui.Column{
				{Title: "Block", Width: 7, Right: true},
				{Title: "Hash", Width: 12},
				{Title: "From", Width: 12},
				{Title: "To", Width: 12},
				{Title: "Method", Width: 18},
				{Title: "Status", Width: 8},
			})
			for _, r := range receipts {
				if txsFailed && r.Succeeded() {
					continue
				}
				status := ui.StyleSuccess.Render("ok")
				if !r.Succeeded() {
					status = ui.StyleError.Render("failed")
				}
				t.AddRow(ui.Row{
					fmt.Sprintf("#%d", r.Block),
					ui.Addr(ui.TruncateAddr(r.Hash.Hex())),
					ui.TruncateAddr(r.From.Hex()),
					ui.TruncateAddr(r.To.Hex()),
					r.Method,
					status,
				})
				if len(t.Rows) == txsLast {
					break
				}
			}
			if len(t.Rows) == 0 {
				fmt.Fprintln(out, ui.Meta("No transactions found."))
				return nil
			}
			fmt.Fprintf(out, "%s  %s\n\n", ui.StyleTitle.Render("Recent Transactions"), ui.Meta(fmt.Sprintf("(block #%d)", c.Block())))
			fmt.Fprintln(out, t.Render())
			return nil
		})
	},
}

func init() {
	txsCmd.Flags().IntVar(&txsLast, "last", 10, "number of transactions to show")
	txsCmd.Flags().BoolVar(&txsFailed, "failed", false, "only show failed transactions")
}

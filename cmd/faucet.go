package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/contract"
	"github.com/marvinkome/tada/internal/ui"
)

var faucetCmd = &cobra.Command{
	Use:   "faucet",
	Short: "Hand out starter SHILL",
	Long: `Each address and each Google ID can claim the faucet once. Only the
TaDa owner (the deployer from ` + "`tada init`" + `) may send faucet SHILL, so
claims are sent from the deployer on the recipient's behalf.`,
}

var faucetClaimCmd = &cobra.Command{
	Use:   "claim <account> <google-id>",
	Short: "Send the faucet amount to an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		recipient, err := mgr.Resolve(args[0])
		if err != nil {
			return err
		}
		return updateChain(cmd, func(c *chain.Chain) error {
			td := c.TaDa()
			// The relayer signs faucet calls unless --from picks another owner.
			relayer := td.Owner()
			if fromFlag != "" {
				if relayer, err = mgr.Resolve(fromFlag); err != nil {
					return err
				}
			}
			r, _, err := c.Transact(cmd.Context(), relayer, td.Address(), contract.KindTaDa, "faucetToken", recipient, args[1])
			if err != nil {
				return err
			}
			log.Info("faucet claim", zap.String("recipient", recipient.Hex()))
			printBlock(cmd.OutOrStdout(), "Faucet", append(receiptPairs(mgr, r),
				[2]string{"Recipient", accountLabel(mgr, recipient)},
				[2]string{"Amount", ui.Val(fmtAmount(td.FaucetAmount())) + " SHILL"},
			))
			return nil
		})
	},
}

var faucetStatusCmd = &cobra.Command{
	Use:   "status [account]",
	Short: "Show the faucet treasury and whether an account has claimed",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		return viewChain(cmd, func(c *chain.Chain) error {
			td := c.TaDa()
			pairs := [][2]string{
				{"TaDa", ui.Addr(td.Address().Hex())},
				{"Owner", accountLabel(mgr, td.Owner())},
				{"Treasury", fmtAmount(c.ShillToken().BalanceOf(td.Address())) + " SHILL"},
				{"Per claim", fmtAmount(td.FaucetAmount()) + " SHILL"},
			}
			if len(args) == 1 {
				who, err := mgr.Resolve(args[0])
				if err != nil {
					return err
				}
				vals, err := c.Query(cmd.Context(), who, td.Address(), contract.KindTaDa, "hasFaucetAddress", who)
				if err != nil {
					return err
				}
				claimed, _ := vals[0].(bool)
				pairs = append(pairs, [2]string{"Claimed by " + args[0], fmt.Sprintf("%t", claimed)})
			}
			printBlock(cmd.OutOrStdout(), "Faucet", pairs)
			return nil
		})
	},
}

func init() {
	faucetCmd.AddCommand(faucetClaimCmd, faucetStatusCmd)
}

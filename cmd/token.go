package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/ui"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "ERC-20 operations on SHILL and creator tokens",
	Long: `Plain ERC-20 calls. <token> is SHILL, a creator symbol or a token
address; accounts may be names or addresses.`,
}

var tokenTransferCmd = &cobra.Command{
	Use:   "transfer <token> <to> <amount>",
	Short: "Send tokens",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}
		from, err := sender()
		if err != nil {
			return err
		}
		mgr := newWalletManager()
		to, err := mgr.Resolve(args[1])
		if err != nil {
			return err
		}
		return updateChain(cmd, func(c *chain.Chain) error {
			tok, err := resolveToken(c, args[0])
			if err != nil {
				return err
			}
			r, _, err := c.Transact(cmd.Context(), from, tok.Address, tok.Kind, "transfer", to, amount.ToBig())
			if err != nil {
				return err
			}
			printBlock(cmd.OutOrStdout(), "Transfer", append(receiptPairs(mgr, r),
				[2]string{"To", accountLabel(mgr, to)},
				[2]string{"Amount", ui.Val(fmtAmount(amount)) + " " + tok.Symbol},
			))
			return nil
		})
	},
}

var tokenApproveCmd = &cobra.Command{
	Use:   "approve <token> <spender> <amount>",
	Short: "Allow a spender to move your tokens",
	Long: `Set the allowance of spender over your tokens. The spender may be an
account or a creator symbol, so "tada token approve SHILL MKR 10" lets
the MKR market pull 10 SHILL.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}
		from, err := sender()
		if err != nil {
			return err
		}
		mgr := newWalletManager()
		return updateChain(cmd, func(c *chain.Chain) error {
			tok, err := resolveToken(c, args[0])
			if err != nil {
				return err
			}
			spender, err := resolveSpender(c, args[1])
			if err != nil {
				return err
			}
			r, _, err := c.Transact(cmd.Context(), from, tok.Address, tok.Kind, "approve", spender, amount.ToBig())
			if err != nil {
				return err
			}
			printBlock(cmd.OutOrStdout(), "Approval", append(receiptPairs(mgr, r),
				[2]string{"Spender", ui.Addr(spender.Hex())},
				[2]string{"Allowance", ui.Val(fmtAmount(amount)) + " " + tok.Symbol},
			))
			return nil
		})
	},
}

var tokenAllowanceCmd = &cobra.Command{
	Use:   "allowance <token> <owner> <spender>",
	Short: "Show how much a spender may move",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		owner, err := mgr.Resolve(args[1])
		if err != nil {
			return err
		}
		return viewChain(cmd, func(c *chain.Chain) error {
			tok, err := resolveToken(c, args[0])
			if err != nil {
				return err
			}
			spender, err := resolveSpender(c, args[2])
			if err != nil {
				return err
			}
			vals, err := c.Query(cmd.Context(), owner, tok.Address, tok.Kind, "allowance", owner, spender)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Val(fmtAmount(uintOut(vals, 0))), tok.Symbol)
			return nil
		})
	},
}

// resolveSpender accepts a creator symbol as well as accounts and addresses.
func resolveSpender(c *chain.Chain, ref string) (common.Address, error) {
	if m, err := c.TaDa().Lookup(ref); err == nil {
		return m.Address(), nil
	}
	return newWalletManager().Resolve(ref)
}

func init() {
	tokenCmd.AddCommand(tokenTransferCmd, tokenApproveCmd, tokenAllowanceCmd)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/contract"
	"github.com/marvinkome/tada/internal/ui"
	"github.com/marvinkome/tada/internal/wallet"
)

var callCmd = &cobra.Command{
	Use:   "call <contract> <function> [args...]",
	Short: "Call any built-in contract function through its ABI",
	Long: `Encode a call from string arguments, run it and decode the result.

<contract> is "shill", "tada", a creator symbol or an address. View
functions run read-only; anything else is sent as a transaction from
--from. Address arguments may be account names.

Examples:
  tada call MKR estimateBuyPrice 1000000000000000000
  tada call shill balanceOf alice
  tada call tada getCreatorToken
  tada call MKR sell 500000000000000000 --from alice`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		funcName := args[1]
		mgr := newWalletManager()

		// Resolve the target kind from a throwaway view of the chain.
		var (
			to   common.Address
			kind string
		)
		err := viewChain(cmd, func(c *chain.Chain) error {
			var err error
			to, kind, err = resolveContract(c, args[0])
			return err
		})
		if err != nil {
			return err
		}

		caller, err := contract.NewCaller(kind)
		if err != nil {
			return err
		}
		entry, ok := caller.Function(funcName)
		if !ok {
			return fmt.Errorf("%w: %s has no function %q (see: tada abi %s)", contract.ErrUnknownMethod, kind, funcName, kind)
		}
		callArgs, err := resolveAddressArgs(mgr, entry, args[2:])
		if err != nil {
			return err
		}
		data, err := caller.Encode(funcName, callArgs...)
		if err != nil {
			return err
		}

		from, err := sender()
		if err != nil && !entry.IsReadFunction() {
			return err
		}

		pairs := [][2]string{
			{"Contract", ui.Addr(to.Hex()) + " " + ui.Meta("("+kind+")")},
			{"Function", ui.Val(entry.Signature())},
		}
		var output []byte
		if entry.IsReadFunction() {
			err = viewChain(cmd, func(c *chain.Chain) error {
				output, err = c.Call(cmd.Context(), from, to, data)
				return err
			})
		} else {
			err = updateChain(cmd, func(c *chain.Chain) error {
				r, err := c.Execute(cmd.Context(), from, to, data)
				if r != nil {
					pairs = append(pairs, receiptPairs(mgr, r)...)
					output = r.Output
				}
				return err
			})
		}
		if err != nil {
			return err
		}

		results, err := caller.Decode(funcName, output)
		if err != nil {
			return err
		}
		if len(results) == 1 {
			pairs = append(pairs, [2]string{"Result", ui.Val(results[0])})
		} else {
			for i, r := range results {
				pairs = append(pairs, [2]string{fmt.Sprintf("Result[%d]", i), ui.Val(r)})
			}
		}
		printBlock(cmd.OutOrStdout(), "Contract Call", pairs)
		return nil
	},
}

// resolveContract maps "shill", "tada", a creator symbol or an address to
// the contract address and its ABI kind.
func resolveContract(c *chain.Chain, ref string) (common.Address, string, error) {
	switch strings.ToLower(ref) {
	case "shill":
		return c.ShillToken().Address(), contract.KindShillToken, nil
	case "tada":
		return c.TaDa().Address(), contract.KindTaDa, nil
	}
	if common.IsHexAddress(ref) {
		addr := common.HexToAddress(ref)
		kind, err := c.Dispatcher().KindOf(addr)
		return addr, kind, err
	}
	m, err := c.TaDa().Lookup(ref)
	if err != nil {
		return common.Address{}, "", err
	}
	return m.Address(), contract.KindCreatorToken, nil
}

// resolveAddressArgs swaps account names for addresses in address inputs.
func resolveAddressArgs(mgr *wallet.Manager, entry *contract.ABIEntry, args []string) ([]string, error) {
	out := append([]string(nil), args...)
	for i, in := range entry.Inputs {
		if i >= len(out) || in.Type != "address" || common.IsHexAddress(out[i]) {
			continue
		}
		addr, err := mgr.Resolve(out[i])
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", in.Name, err)
		}
		out[i] = addr.Hex()
	}
	return out, nil
}

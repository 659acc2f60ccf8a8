package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marvinkome/tada/internal/contract"
	"github.com/marvinkome/tada/internal/ui"
)

var abiCmd = &cobra.Command{
	Use:   "abi [kind]",
	Short: "List the built-in contract ABIs and their selectors",
	Long: `Without arguments, list the built-in contract kinds. With a kind,
list its functions with selectors and mutability.

Examples:
  tada abi
  tada abi creator-token
  tada abi selector "buy(uint256)"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			t := ui.NewTable([]ui.Column{
				{Title: "Kind", Width: 16},
				{Title: "Name", Width: 16},
				{Title: "Functions", Width: 10, Right: true},
			})
			for _, b := range contract.AllBuiltins() {
				n := 0
				for _, e := range b.ABI {
					if e.Type == "function" {
						n++
					}
				}
				t.AddRow(ui.Row{ui.Symbol(b.ID), b.Name, fmt.Sprintf("%d", n)})
			}
			fmt.Fprintln(out, t.Render())
			return nil
		}

		entries := contract.GetBuiltinABI(args[0])
		if entries == nil {
			return fmt.Errorf("%w: %q", contract.ErrUnknownContract, args[0])
		}
		t := ui.NewTable([]ui.Column{
			{Title: "Selector", Width: 10},
			{Title: "Signature", Width: 44},
			{Title: "Kind", Width: 6},
			{Title: "Returns", Width: 30},
		})
		for _, e := range entries {
			if e.Type != "function" {
				continue
			}
			kind := ui.StyleWarning.Render("write")
			if e.IsReadFunction() {
				kind = ui.StyleSuccess.Render("read")
			}
			outs := make([]string, len(e.Outputs))
			for i, o := range e.Outputs {
				outs[i] = o.Type
			}
			t.AddRow(ui.Row{
				ui.Addr(contract.SelectorHex(e.Signature())),
				e.Signature(),
				kind,
				ui.Meta(strings.Join(outs, ", ")),
			})
		}
		fmt.Fprintln(out, t.Render())
		return nil
	},
}

var abiSelectorCmd = &cobra.Command{
	Use:   "selector <signature>",
	Short: "Compute a 4-byte function selector",
	Long: `Compute the selector of a signature. Parameter names are dropped, so
"transfer(address to, uint256 amount)" and "transfer(address,uint256)"
give the same result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sig := normalizeSignature(args[0])
		printBlock(cmd.OutOrStdout(), "Function Selector", [][2]string{
			{"Signature", sig},
			{"Selector", ui.Val(contract.SelectorHex(sig))},
			{"Known as", knownSelector(sig)},
		})
		return nil
	},
}

// normalizeSignature removes parameter names, keeping only types.
// "transfer(address to, uint256 amount)" → "transfer(address,uint256)"
func normalizeSignature(sig string) string {
	sig = strings.TrimSpace(sig)
	parenIdx := strings.Index(sig, "(")
	if parenIdx < 0 || !strings.HasSuffix(sig, ")") {
		return sig + "()"
	}

	name := strings.TrimSpace(sig[:parenIdx])
	paramStr := strings.TrimSpace(sig[parenIdx+1 : len(sig)-1])
	if paramStr == "" {
		return name + "()"
	}

	var types []string
	for _, p := range strings.Split(paramStr, ",") {
		if parts := strings.Fields(p); len(parts) > 0 {
			types = append(types, parts[0])
		}
	}
	return name + "(" + strings.Join(types, ",") + ")"
}

// knownSelector names the built-in kinds that define sig.
func knownSelector(sig string) string {
	var kinds []string
	for _, b := range contract.AllBuiltins() {
		for _, e := range b.ABI {
			if e.Type == "function" && e.Signature() == sig {
				kinds = append(kinds, b.ID)
				break
			}
		}
	}
	if len(kinds) == 0 {
		return ui.Meta("not a built-in function")
	}
	return strings.Join(kinds, ", ")
}

func init() {
	abiCmd.AddCommand(abiSelectorCmd)
}

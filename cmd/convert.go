package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/marvinkome/tada/internal/ui"
	"github.com/marvinkome/tada/internal/units"
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount> [unit]",
	Short: "Convert between token amounts, wei, and hex/decimal",
	Long: `Convert between 18-decimal token amounts and their raw integer form.

Units: shill (any 18-decimal token), wei, hex, decimal
If no unit is given and the value starts with 0x, it's treated as hex.

Examples:
  tada convert 1.5 shill         # → wei + hex
  tada convert 1000000000 wei    # → token amount + hex
  tada convert 0xde0b6b3a7640000 # → decimal + token amount
  tada convert 255 hex           # → 0xff`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit := ""
		if len(args) > 1 {
			unit = args[1]
		}
		title, pairs, err := convertAmount(args[0], unit)
		if err != nil {
			return err
		}
		printBlock(cmd.OutOrStdout(), title, pairs)
		return nil
	},
}

// convertAmount does the conversion and returns the rows to print.
func convertAmount(amount, unit string) (string, [][2]string, error) {
	unit = strings.ToLower(unit)
	if unit == "" && strings.HasPrefix(strings.ToLower(amount), "0x") {
		unit = "hex_input"
	}

	switch unit {
	case "shill", "token", "ether", "eth":
		wei, err := units.ParseEther(amount)
		if err != nil {
			return "", nil, fmt.Errorf("invalid amount: %s", amount)
		}
		return "Unit Conversion", [][2]string{
			{"Input", ui.Val(amount + " SHILL")},
			{"Wei", ui.Val(wei.Dec() + " wei")},
			{"Hex", ui.Val(wei.Hex())},
		}, nil

	case "wei", "":
		wei, err := uint256.FromDecimal(amount)
		if err != nil {
			return "", nil, fmt.Errorf("invalid wei amount: %s", amount)
		}
		return "Unit Conversion", [][2]string{
			{"Input", ui.Val(amount + " wei")},
			{"SHILL", ui.Val(units.FormatEther(wei) + " SHILL")},
			{"Hex", ui.Val(wei.Hex())},
		}, nil

	case "hex_input":
		n, err := parseHex(amount)
		if err != nil {
			return "", nil, err
		}
		return "Hex → Decimal", [][2]string{
			{"Hex", ui.Val(amount)},
			{"Decimal", ui.Val(n.Dec())},
			{"As SHILL", ui.Val(units.FormatEther(n))},
		}, nil

	case "hex", "decimal", "dec":
		n, err := uint256.FromDecimal(amount)
		if err != nil {
			return "", nil, fmt.Errorf("invalid decimal value: %s", amount)
		}
		return "Decimal → Hex", [][2]string{
			{"Decimal", ui.Val(amount)},
			{"Hex", ui.Val(n.Hex())},
		}, nil
	}
	return "", nil, fmt.Errorf("unknown unit %q; use shill, wei, hex, or decimal", unit)
}

// parseHex accepts 0x-prefixed hex of up to 256 bits, leading zeros allowed.
func parseHex(s string) (*uint256.Int, error) {
	clean := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, ok := new(big.Int).SetString(clean, 16)
	if !ok || clean == "" {
		return nil, fmt.Errorf("invalid hex value: %s", s)
	}
	n, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("hex value exceeds 256 bits: %s", s)
	}
	return n, nil
}

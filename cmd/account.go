package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marvinkome/tada/internal/ui"
	"github.com/marvinkome/tada/internal/wallet"
)

var accountYes bool

var accountCmd = &cobra.Command{
	Use:     "account",
	Aliases: []string{"accounts"},
	Short:   "Manage local trading accounts",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a burner account with a fresh address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		a, err := newWalletManager().Create(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Account %q created: %s", a.Name, ui.Addr(a.Address.Hex()))))
		fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Claim faucet SHILL with: tada faucet claim %s <google-id>", a.Name)))
		return nil
	},
}

var accountAddCmd = &cobra.Command{
	Use:   "add <name> <address>",
	Short: "Save an existing address under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newWalletManager().Add(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Account %q added: %s", a.Name, ui.Addr(a.Address.Hex()))))
		return nil
	},
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		accounts, err := newWalletManager().List()
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Fprintln(out, ui.Info("No accounts yet."))
			fmt.Fprintln(out, ui.Hint("Create one with: tada account create alice"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 42},
			{Title: "Type", Width: 8},
			{Title: "Default", Width: 8},
		})
		for _, a := range accounts {
			def := ""
			if a.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{ui.Val(a.Name), ui.Addr(a.Address.Hex()), ui.Meta(a.Type), def})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d account(s)", len(accounts))))
		return nil
	},
}

var accountUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newWalletManager().SetDefault(args[0]); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Default account set to %q.", args[0])))
		fmt.Fprintln(out, ui.Hint("It is used whenever --from is not given."))
		return nil
	},
}

var accountRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Forget an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		name := args[0]
		mgr := newWalletManager()
		a, err := mgr.Get(name)
		if err != nil {
			return err
		}
		if a.Type == wallet.TypeBurner && !accountYes {
			if !ui.Confirm(cmd.InOrStdin(), out, fmt.Sprintf("Forget burner account %q? Its address cannot be recreated.", name)) {
				fmt.Fprintln(out, ui.Meta("Cancelled."))
				return nil
			}
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Account %q removed.", name)))
		return nil
	},
}

func init() {
	accountRemoveCmd.Flags().BoolVarP(&accountYes, "yes", "y", false, "skip confirmation")
	accountCmd.AddCommand(accountCreateCmd, accountAddCmd, accountListCmd, accountUseCmd, accountRemoveCmd)
}

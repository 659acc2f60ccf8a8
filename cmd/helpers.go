package cmd

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/config"
	"github.com/marvinkome/tada/internal/contract"
	"github.com/marvinkome/tada/internal/market"
	"github.com/marvinkome/tada/internal/state"
	"github.com/marvinkome/tada/internal/tada"
	"github.com/marvinkome/tada/internal/ui"
	"github.com/marvinkome/tada/internal/units"
	"github.com/marvinkome/tada/internal/wallet"
)

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(cfg.AccountsPath())))
}

func newStore() *state.Store {
	return state.NewStore(cfg.Dir(), config.StateLockTimeout, log)
}

// updateChain runs fn against the persisted chain and saves it afterwards.
func updateChain(cmd *cobra.Command, fn func(*chain.Chain) error) error {
	return newStore().Update(cmd.Context(), fn)
}

// viewChain runs fn against a read-only copy of the persisted chain.
func viewChain(cmd *cobra.Command, fn func(*chain.Chain) error) error {
	return newStore().View(cmd.Context(), fn)
}

// sender resolves --from, falling back to the default account.
func sender() (common.Address, error) {
	return newWalletManager().Resolve(fromFlag)
}

// accountLabel renders an address with its account name when it has one.
func accountLabel(mgr *wallet.Manager, addr common.Address) string {
	if name := mgr.NameOf(addr); name != "" {
		return ui.Val(name) + " " + ui.Addr(addr.Hex())
	}
	return ui.Addr(addr.Hex())
}

// parseAmount parses a positive decimal token amount.
func parseAmount(s string) (*uint256.Int, error) {
	v, err := units.ParseEther(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if v.IsZero() {
		return nil, fmt.Errorf("invalid amount %q: must be greater than zero", s)
	}
	return v, nil
}

func fmtAmount(v *uint256.Int) string {
	return units.Truncate(v, units.Decimals, 6)
}

// uintOut reads an ABI uint256 return value.
func uintOut(vals []interface{}, i int) *uint256.Int {
	if i >= len(vals) {
		return new(uint256.Int)
	}
	b, ok := vals[i].(*big.Int)
	if !ok || b == nil {
		return new(uint256.Int)
	}
	v, _ := uint256.FromBig(b)
	return v
}

// tokenRef is a token contract resolved from a symbol or address.
type tokenRef struct {
	Address common.Address
	Kind    string
	Symbol  string
	Market  *market.Market // nil for SHILL
}

// resolveToken accepts SHILL, a creator symbol or a token address.
func resolveToken(c *chain.Chain, ref string) (tokenRef, error) {
	shill := c.ShillToken()
	if strings.EqualFold(ref, shill.Symbol()) ||
		(common.IsHexAddress(ref) && common.HexToAddress(ref) == shill.Address()) {
		return tokenRef{Address: shill.Address(), Kind: contract.KindShillToken, Symbol: shill.Symbol()}, nil
	}
	m, err := c.TaDa().Lookup(ref)
	if err != nil {
		return tokenRef{}, err
	}
	return tokenRef{Address: m.Address(), Kind: contract.KindCreatorToken, Symbol: m.Symbol(), Market: m}, nil
}

func receiptPairs(mgr *wallet.Manager, r *chain.Receipt) [][2]string {
	status := ui.StyleSuccess.Render("success")
	if !r.Succeeded() {
		status = ui.StyleError.Render("failed")
	}
	return [][2]string{
		{"Tx", ui.Addr(r.Hash.Hex())},
		{"Block", fmt.Sprintf("#%d", r.Block)},
		{"From", accountLabel(mgr, r.From)},
		{"Method", r.Method},
		{"Status", status},
	}
}

func printBlock(w io.Writer, title string, pairs [][2]string) {
	fmt.Fprintln(w, ui.KeyValueBlock(title, pairs))
}

// errorLine formats a command error with a hint for the common cases.
func errorLine(err error) string {
	msg := ui.Err(err.Error())
	switch {
	case errors.Is(err, state.ErrNoState):
		msg += "\n" + ui.Hint("Run: tada init")
	case errors.Is(err, wallet.ErrNoDefault):
		msg += "\n" + ui.Hint("Create an account with: tada account create <name>")
	case errors.Is(err, tada.ErrUnknownCreator):
		msg += "\n" + ui.Hint("List creators with: tada creator list")
	case errors.Is(err, market.ErrInsufficientBalance):
		msg += "\n" + ui.Hint("Check funds with: tada balance")
	case errors.Is(err, state.ErrLocked):
		msg += "\n" + ui.Hint("Another tada command is running; try again shortly.")
	}
	return msg
}

package cmd

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/config"
	"github.com/marvinkome/tada/internal/contract"
	"github.com/marvinkome/tada/internal/state"
	"github.com/marvinkome/tada/internal/tada"
	"github.com/marvinkome/tada/internal/wallet"
)

func ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1e18))
}

// useTempConfig points the package config at a fresh directory.
func useTempConfig(t *testing.T) {
	t.Helper()
	c, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg = c
}

func newTestChain(t *testing.T, specs ...chain.CreatorSpec) *chain.Chain {
	t.Helper()
	useTempConfig(t)
	gc, err := genesisConfig(common.HexToAddress("0xde9107e2"), specs)
	require.NoError(t, err)
	c, err := chain.Genesis(gc)
	require.NoError(t, err)
	return c
}

func TestMinimumOut(t *testing.T) {
	quoted := ether(100)

	got, err := minimumOut(quoted, "", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = minimumOut(quoted, "25", "")
	require.NoError(t, err)
	assert.Equal(t, ether(25), got)

	got, err = minimumOut(quoted, "", "1")
	require.NoError(t, err)
	assert.Equal(t, ether(99), got)

	got, err = minimumOut(quoted, "", "0.5")
	require.NoError(t, err)
	assert.Equal(t, "99500000000000000000", got.Dec())

	got, err = minimumOut(quoted, "", "100")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestMinimumOutErrors(t *testing.T) {
	tests := []struct {
		name, minOut, slippage string
	}{
		{"both flags", "1", "1"},
		{"slippage above 100", "", "100.01"},
		{"too many decimals", "", "0.001"},
		{"negative", "", "-1"},
		{"zero min-out", "0", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := minimumOut(ether(1), tt.minOut, tt.slippage)
			assert.Error(t, err)
		})
	}
}

func TestParseCreatorSpecs(t *testing.T) {
	specs, err := parseCreatorSpecs([]string{"Mark Rober:MKR", " Dr: Who : DRW "})
	require.NoError(t, err)
	assert.Equal(t, []chain.CreatorSpec{
		{Name: "Mark Rober", Symbol: "MKR"},
		{Name: "Dr: Who", Symbol: "DRW"},
	}, specs)

	for _, bad := range []string{"MKR", ":MKR", "Mark Rober:"} {
		_, err := parseCreatorSpecs([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParseAmount(t *testing.T) {
	v, err := parseAmount("1.5")
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", v.Dec())

	for _, bad := range []string{"0", "", "abc", "-1"} {
		_, err := parseAmount(bad)
		assert.Error(t, err, bad)
	}
}

func TestResolveToken(t *testing.T) {
	c := newTestChain(t, chain.CreatorSpec{Name: "Mark Rober", Symbol: "MKR"})

	ref, err := resolveToken(c, "shill")
	require.NoError(t, err)
	assert.Equal(t, contract.KindShillToken, ref.Kind)
	assert.Nil(t, ref.Market)

	ref, err = resolveToken(c, c.ShillToken().Address().Hex())
	require.NoError(t, err)
	assert.Equal(t, "SHILL", ref.Symbol)

	ref, err = resolveToken(c, "mkr")
	require.NoError(t, err)
	assert.Equal(t, contract.KindCreatorToken, ref.Kind)
	require.NotNil(t, ref.Market)
	assert.Equal(t, ref.Market.Address(), ref.Address)

	_, err = resolveToken(c, "NOPE")
	assert.ErrorIs(t, err, tada.ErrUnknownCreator)
}

func TestResolveContract(t *testing.T) {
	c := newTestChain(t, chain.CreatorSpec{Name: "Mark Rober", Symbol: "MKR"})
	mkr, err := c.TaDa().Lookup("MKR")
	require.NoError(t, err)

	tests := []struct {
		ref  string
		addr common.Address
		kind string
	}{
		{"shill", c.ShillToken().Address(), contract.KindShillToken},
		{"TaDa", c.TaDa().Address(), contract.KindTaDa},
		{"MKR", mkr.Address(), contract.KindCreatorToken},
		{c.TaDa().Address().Hex(), c.TaDa().Address(), contract.KindTaDa},
		{mkr.Address().Hex(), mkr.Address(), contract.KindCreatorToken},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			addr, kind, err := resolveContract(c, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.addr, addr)
			assert.Equal(t, tt.kind, kind)
		})
	}

	_, _, err = resolveContract(c, common.HexToAddress("0x1234").Hex())
	assert.ErrorIs(t, err, contract.ErrUnknownContract)
}

func TestResolveAddressArgs(t *testing.T) {
	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	alice, err := mgr.Create("alice")
	require.NoError(t, err)

	caller, err := contract.NewCaller(contract.KindShillToken)
	require.NoError(t, err)
	entry, ok := caller.Function("transfer")
	require.True(t, ok)

	args, err := resolveAddressArgs(mgr, entry, []string{"alice", "5"})
	require.NoError(t, err)
	assert.Equal(t, []string{alice.Address.Hex(), "5"}, args)

	hex := common.HexToAddress("0xbeef").Hex()
	args, err = resolveAddressArgs(mgr, entry, []string{hex, "5"})
	require.NoError(t, err)
	assert.Equal(t, hex, args[0])

	_, err = resolveAddressArgs(mgr, entry, []string{"bob", "5"})
	assert.ErrorIs(t, err, wallet.ErrAccountNotFound)
}

func TestErrorLine(t *testing.T) {
	tests := []struct {
		err  error
		hint string
	}{
		{state.ErrNoState, "tada init"},
		{wallet.ErrNoDefault, "tada account create"},
		{tada.ErrUnknownCreator, "tada creator list"},
		{state.ErrLocked, "try again"},
	}
	for _, tt := range tests {
		line := errorLine(errors.Join(errors.New("context"), tt.err))
		assert.Contains(t, line, tt.hint)
	}
	assert.NotContains(t, errorLine(errors.New("boom")), "\n")
}

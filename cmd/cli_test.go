package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/config"
	"github.com/marvinkome/tada/internal/state"
	"github.com/marvinkome/tada/internal/wallet"
)

// resetFlags puts every flag back to its default between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil) //nolint:errcheck
		} else {
			f.Value.Set(f.DefValue) //nolint:errcheck
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes tada with args against dir and returns its output.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(bytes.NewBufferString("y\n"))
	rootCmd.SetArgs(append([]string{"--config-dir", dir}, args...))
	err := rootCmd.Execute()
	if closeLog != nil {
		closeLog() //nolint:errcheck
		closeLog = nil
	}
	log = zap.NewNop()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dir, args...)
	require.NoError(t, err, out)
	return out
}

func loadChain(t *testing.T, dir string) *chain.Chain {
	t.Helper()
	c, err := state.NewStore(dir, config.StateLockTimeout, zaptest.NewLogger(t)).Load()
	require.NoError(t, err)
	return c
}

func getAccount(t *testing.T, dir, name string) wallet.Account {
	t.Helper()
	c, err := config.Load(dir)
	require.NoError(t, err)
	a, err := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(c.AccountsPath()))).Get(name)
	require.NoError(t, err)
	return *a
}

func TestCLICommandsNeedState(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "creator", "list")
	assert.ErrorIs(t, err, state.ErrNoState)
}

func TestCLIInit(t *testing.T) {
	dir := t.TempDir()
	out := mustRun(t, dir, "init", "--creator", "Mark Rober:MKR", "--creator", "Veritasium:VRT")
	assert.Contains(t, out, "Genesis")

	c := loadChain(t, dir)
	relayer := getAccount(t, dir, "relayer")
	assert.Equal(t, relayer.Address, c.Deployer())
	assert.True(t, relayer.IsDefault)
	assert.Len(t, c.TaDa().Markets(), 2)
	require.NoError(t, c.CheckInvariants())

	_, err := runCLI(t, dir, "init")
	assert.ErrorContains(t, err, "--force")

	mustRun(t, dir, "init", "--force")
	assert.Empty(t, loadChain(t, dir).TaDa().Markets())
}

func TestCLITradingFlow(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init", "--creator", "Mark Rober:MKR")
	mustRun(t, dir, "account", "create", "alice")
	mustRun(t, dir, "account", "use", "alice")
	alice := getAccount(t, dir, "alice").Address

	out := mustRun(t, dir, "faucet", "claim", "alice", "google-alice")
	assert.Contains(t, out, "Faucet")
	_, err := runCLI(t, dir, "faucet", "claim", "alice", "google-other")
	assert.Error(t, err)

	out = mustRun(t, dir, "quote", "buy", "MKR", "10")
	assert.Contains(t, out, "MKR")

	out = mustRun(t, dir, "buy", "MKR", "10", "--slippage", "1")
	assert.Contains(t, out, "Bought MKR")

	c := loadChain(t, dir)
	mkr, err := c.TaDa().Lookup("MKR")
	require.NoError(t, err)
	bought := mkr.BalanceOf(alice)
	assert.False(t, bought.IsZero())
	assert.Equal(t, "40000000000000000000", c.ShillToken().BalanceOf(alice).Dec())

	out = mustRun(t, dir, "balance")
	assert.Contains(t, out, "MKR")

	out = mustRun(t, dir, "sell", "MKR", "all")
	assert.Contains(t, out, "Sold MKR")

	c = loadChain(t, dir)
	mkr, err = c.TaDa().Lookup("MKR")
	require.NoError(t, err)
	assert.True(t, mkr.BalanceOf(alice).IsZero())
	// Rounding always favours the reserve.
	assert.True(t, c.ShillToken().BalanceOf(alice).Lt(ether(50)))
	require.NoError(t, c.CheckInvariants())

	out = mustRun(t, dir, "txs", "--last", "3")
	assert.Contains(t, out, "sell")
}

func TestCLIFailedTradeIsRecorded(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init", "--creator", "Mark Rober:MKR")
	mustRun(t, dir, "account", "create", "alice")
	mustRun(t, dir, "faucet", "claim", "alice", "google-alice")

	_, err := runCLI(t, dir, "buy", "MKR", "1000", "--from", "alice")
	require.Error(t, err)

	c := loadChain(t, dir)
	alice := getAccount(t, dir, "alice").Address
	// approve and the failed buy both consumed a nonce.
	assert.Equal(t, uint64(2), c.Nonce(alice))
	last := c.Receipts(1)
	require.Len(t, last, 1)
	assert.False(t, last[0].Succeeded())
	assert.Equal(t, "buy", last[0].Method)

	out := mustRun(t, dir, "txs", "--failed")
	assert.Contains(t, out, "buy")
}

func TestCLICallAndCreator(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init")
	mustRun(t, dir, "creator", "create", "Veritasium", "VRT")

	out := mustRun(t, dir, "call", "tada", "getCreatorToken")
	assert.Contains(t, out, "VRT")

	out = mustRun(t, dir, "call", "VRT", "spotPrice")
	assert.Contains(t, out, "Result")

	out = mustRun(t, dir, "call", "shill", "balanceOf", "relayer")
	assert.Contains(t, out, "Result")

	_, err := runCLI(t, dir, "creator", "create", "Another", "vrt")
	assert.Error(t, err)

	out = mustRun(t, dir, "creator", "list")
	assert.Contains(t, out, "VRT")

	out = mustRun(t, dir, "abi", "creator-token")
	assert.Contains(t, out, "estimateBuyPrice(uint256)")
}

package state_test

import (
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/contract"
	"github.com/marvinkome/tada/internal/state"
	"github.com/marvinkome/tada/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	deployer = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	alice    = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

func newStore(t *testing.T) *state.Store {
	t.Helper()
	return state.NewStore(t.TempDir(), 100*time.Millisecond, zaptest.NewLogger(t))
}

func genesis(t *testing.T) *chain.Chain {
	t.Helper()
	c, err := chain.Genesis(chain.GenesisConfig{
		Deployer: deployer,
		Creators: []chain.CreatorSpec{{Name: "Mark Rober", Symbol: "MKR"}},
		Logger:   zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return c
}

func TestLoadWithoutState(t *testing.T) {
	s := newStore(t)
	assert.False(t, s.Exists())
	_, err := s.Load()
	assert.ErrorIs(t, err, state.ErrNoState)
}

func TestSaveAndLoad(t *testing.T) {
	s := newStore(t)
	c := genesis(t)
	require.NoError(t, s.Save(c))
	assert.True(t, s.Exists())

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, c.Block(), loaded.Block())
	assert.Equal(t, c.Nonce(deployer), loaded.Nonce(deployer))
	assert.Equal(t, c.ShillToken().BalanceOf(deployer), loaded.ShillToken().BalanceOf(deployer))
	assert.Len(t, loaded.TaDa().CreatorTokens(), 1)

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLoadCorrupt(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))
	_, err := s.Load()
	assert.ErrorContains(t, err, "parsing state")
}

func TestLockContention(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	unlock, err := s.Lock(ctx)
	require.NoError(t, err)

	_, err = s.Lock(ctx)
	assert.ErrorIs(t, err, state.ErrLocked)

	unlock()
	unlock2, err := s.Lock(ctx)
	require.NoError(t, err)
	unlock2()
}

func TestLockWaitsForRelease(t *testing.T) {
	s := state.NewStore(t.TempDir(), 2*time.Second, zaptest.NewLogger(t))
	ctx := context.Background()

	unlock, err := s.Lock(ctx)
	require.NoError(t, err)
	go func() {
		time.Sleep(50 * time.Millisecond)
		unlock()
	}()

	unlock2, err := s.Lock(ctx)
	require.NoError(t, err)
	unlock2()
}

func TestUpdateSavesFailedTransactions(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(genesis(t)))
	ctx := context.Background()

	var shillAt common.Address
	err := s.Update(ctx, func(c *chain.Chain) error {
		shillAt = c.ShillToken().Address()
		// alice holds nothing, so this reverts
		_, _, err := c.Transact(ctx, alice, shillAt, contract.KindShillToken, "transfer", deployer, big.NewInt(1))
		return err
	})
	require.Error(t, err)

	err = s.View(ctx, func(c *chain.Chain) error {
		assert.Equal(t, uint64(1), c.Nonce(alice))
		receipts := c.Receipts(1)
		require.Len(t, receipts, 1)
		assert.False(t, receipts[0].Succeeded())
		return nil
	})
	require.NoError(t, err)
}

func TestUpdatePersists(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(genesis(t)))
	ctx := context.Background()

	sentinel := errors.New("stop")
	err := s.Update(ctx, func(c *chain.Chain) error {
		_, _, err := c.Transact(ctx, deployer, c.TaDa().Address(), contract.KindTaDa, "faucetToken", alice, "g-1")
		require.NoError(t, err)
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	c, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, units.Ether(50), c.ShillToken().BalanceOf(alice))
	assert.True(t, c.TaDa().HasFaucetAddress(alice))
}

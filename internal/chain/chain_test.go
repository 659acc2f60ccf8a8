package chain_test

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/contract"
	"github.com/marvinkome/tada/internal/market"
	"github.com/marvinkome/tada/internal/tada"
	"github.com/marvinkome/tada/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	deployer = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	alice    = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bob      = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

func newChain(t *testing.T) *chain.Chain {
	t.Helper()
	c, err := chain.Genesis(chain.GenesisConfig{
		Deployer: deployer,
		Creators: []chain.CreatorSpec{{Name: "Mark Rober", Symbol: "MKR"}, {Name: "Veritasium", Symbol: "VRT"}},
		Logger:   zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return c
}

func mustMarket(t *testing.T, c *chain.Chain, symbol string) *market.Market {
	t.Helper()
	m, err := c.TaDa().Lookup(symbol)
	require.NoError(t, err)
	return m
}

// ---------------------------------------------------------------------------
// Genesis
// ---------------------------------------------------------------------------

func TestGenesisLayout(t *testing.T) {
	c := newChain(t)

	assert.Equal(t, crypto.CreateAddress(deployer, 0), c.ShillToken().Address())
	assert.Equal(t, crypto.CreateAddress(deployer, 1), c.TaDa().Address())
	assert.Equal(t, deployer, c.TaDa().Owner())

	supply := units.Ether(10_000_000)
	assert.Equal(t, supply, c.ShillToken().TotalSupply())
	assert.Equal(t, units.Ether(8_000_000), c.ShillToken().BalanceOf(c.TaDa().Address()))
	assert.Equal(t, units.Ether(2_000_000), c.ShillToken().BalanceOf(deployer))

	infos := c.TaDa().CreatorTokens()
	require.Len(t, infos, 2)
	assert.Equal(t, "MKR", infos[0].Symbol)
	assert.Equal(t, uint64(2), c.Block())
	assert.Equal(t, uint64(4), c.Nonce(deployer))
	require.NoError(t, c.CheckInvariants())
}

func TestGenesisValidation(t *testing.T) {
	_, err := chain.Genesis(chain.GenesisConfig{})
	assert.Error(t, err)

	_, err = chain.Genesis(chain.GenesisConfig{Deployer: deployer, TreasuryShare: 101})
	assert.Error(t, err)

	_, err = chain.Genesis(chain.GenesisConfig{
		Deployer: deployer,
		Creators: []chain.CreatorSpec{{Name: "A", Symbol: "AAA"}, {Name: "B", Symbol: "aaa"}},
	})
	assert.ErrorIs(t, err, tada.ErrSymbolTaken)
}

func TestGenesisTreasuryOverflow(t *testing.T) {
	huge := new(uint256.Int).SetAllOne()
	_, err := chain.Genesis(chain.GenesisConfig{Deployer: deployer, InitialSupply: huge})
	assert.ErrorIs(t, err, market.ErrArithmeticOverflow)

	// The largest supply whose 80% share still fits.
	limit := new(uint256.Int).Div(huge, uint256.NewInt(80))
	c, err := chain.Genesis(chain.GenesisConfig{Deployer: deployer, InitialSupply: limit, TreasuryShare: 80})
	require.NoError(t, err)
	want := new(uint256.Int).Mul(limit, uint256.NewInt(80))
	want.Div(want, uint256.NewInt(100))
	assert.Equal(t, want, c.ShillToken().BalanceOf(c.TaDa().Address()))
}

// ---------------------------------------------------------------------------
// Execute / Call
// ---------------------------------------------------------------------------

func TestExecuteRecordsReceipts(t *testing.T) {
	c := newChain(t)
	ctx := context.Background()
	td := c.TaDa().Address()

	r, _, err := c.Transact(ctx, deployer, td, contract.KindTaDa, "faucetToken", alice, "105809056115901676361")
	require.NoError(t, err)
	assert.True(t, r.Succeeded())
	assert.Equal(t, "faucetToken", r.Method)
	assert.Equal(t, uint64(3), r.Block)

	r2, _, err := c.Transact(ctx, deployer, td, contract.KindTaDa, "faucetToken", alice, "105809056115901676361")
	assert.ErrorIs(t, err, tada.ErrAlreadySignedUp)
	require.NotNil(t, r2)
	assert.False(t, r2.Succeeded())
	assert.Contains(t, r2.Error, "user signed up already")
	assert.NotEqual(t, r.Hash, r2.Hash, "same calldata, different nonce")

	recent := c.Receipts(2)
	require.Len(t, recent, 2)
	assert.Equal(t, r2.Hash, recent[0].Hash)

	got, err := c.Receipt(r.Hash)
	require.NoError(t, err)
	assert.Equal(t, r.Block, got.Block)

	_, err = c.Receipt(common.Hash{})
	assert.ErrorIs(t, err, chain.ErrReceiptNotFound)
}

func TestTransactMethodWithoutOutputs(t *testing.T) {
	c := newChain(t)
	ctx := context.Background()
	td := c.TaDa().Address()

	r, vals, err := c.Transact(ctx, deployer, td, contract.KindTaDa, "faucetToken", alice, "g1")
	require.NoError(t, err)
	assert.True(t, r.Succeeded())
	assert.Empty(t, vals)
	assert.Equal(t, c.TaDa().FaucetAmount(), c.ShillToken().BalanceOf(alice))

	// A second claim is the only failure, and pays nothing.
	_, _, err = c.Transact(ctx, deployer, td, contract.KindTaDa, "faucetToken", alice, "g2")
	assert.ErrorIs(t, err, tada.ErrAlreadySignedUp)
	assert.Equal(t, c.TaDa().FaucetAmount(), c.ShillToken().BalanceOf(alice))
}

func TestExecuteUnknownTarget(t *testing.T) {
	c := newChain(t)
	data, err := contract.Pack(contract.KindShillToken, "transfer", bob, big.NewInt(1))
	require.NoError(t, err)

	r, err := c.Execute(context.Background(), alice, bob, data)
	assert.ErrorIs(t, err, contract.ErrUnknownContract)
	assert.Equal(t, "0xa9059cbb", r.Method)
	assert.Equal(t, uint64(1), c.Nonce(alice))
}

func TestExecuteCancelledContext(t *testing.T) {
	c := newChain(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Execute(ctx, alice, c.ShillToken().Address(), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(0), c.Nonce(alice))
}

func TestBuyAndSellThroughChain(t *testing.T) {
	c := newChain(t)
	ctx := context.Background()
	mkr := mustMarket(t, c, "MKR")
	shillAt := c.ShillToken().Address()

	_, _, err := c.Transact(ctx, deployer, c.TaDa().Address(), contract.KindTaDa, "faucetToken", alice, "g-1")
	require.NoError(t, err)

	payment := units.Ether(5).ToBig()
	_, _, err = c.Transact(ctx, alice, shillAt, contract.KindShillToken, "approve", mkr.Address(), payment)
	require.NoError(t, err)

	quote, err := c.Query(ctx, alice, mkr.Address(), contract.KindCreatorToken, "calculateSellPrice", units.Ether(1).ToBig())
	require.NoError(t, err)

	_, out, err := c.Transact(ctx, alice, mkr.Address(), contract.KindCreatorToken, "buy", payment)
	require.NoError(t, err)
	minted := out[0].(*big.Int)
	assert.Equal(t, 1, minted.Sign())

	after, err := c.Query(ctx, alice, mkr.Address(), contract.KindCreatorToken, "calculateSellPrice", units.Ether(1).ToBig())
	require.NoError(t, err)
	assert.Equal(t, 1, after[0].(*big.Int).Cmp(quote[0].(*big.Int)))

	_, _, err = c.Transact(ctx, alice, mkr.Address(), contract.KindCreatorToken, "sell", minted)
	require.NoError(t, err)
	require.NoError(t, c.CheckInvariants())
}

func TestCallRejectsWrites(t *testing.T) {
	c := newChain(t)
	data, err := contract.Pack(contract.KindShillToken, "transfer", bob, big.NewInt(1))
	require.NoError(t, err)

	_, err = c.Call(context.Background(), deployer, c.ShillToken().Address(), data)
	assert.ErrorIs(t, err, contract.ErrNotReadOnly)
	assert.Equal(t, uint64(0), c.ShillToken().BalanceOf(bob).Uint64())
}

func TestReceiptsAreBounded(t *testing.T) {
	c := newChain(t)
	ctx := context.Background()
	data, err := contract.Pack(contract.KindShillToken, "approve", bob, big.NewInt(1))
	require.NoError(t, err)

	for i := 0; i < chain.MaxReceipts+10; i++ {
		_, err := c.Execute(ctx, alice, c.ShillToken().Address(), data)
		require.NoError(t, err)
	}
	assert.Len(t, c.Receipts(0), chain.MaxReceipts)
}

// ---------------------------------------------------------------------------
// Snapshot
// ---------------------------------------------------------------------------

func TestSnapshotJSONRoundTrip(t *testing.T) {
	c := newChain(t)
	ctx := context.Background()
	mkr := mustMarket(t, c, "MKR")

	_, _, err := c.Transact(ctx, deployer, c.TaDa().Address(), contract.KindTaDa, "faucetToken", alice, "g-1")
	require.NoError(t, err)
	_, _, err = c.Transact(ctx, alice, c.ShillToken().Address(), contract.KindShillToken, "approve", mkr.Address(), new(uint256.Int).SetAllOne().ToBig())
	require.NoError(t, err)
	_, _, err = c.Transact(ctx, alice, mkr.Address(), contract.KindCreatorToken, "buy", units.Ether(7).ToBig())
	require.NoError(t, err)

	raw, err := json.Marshal(c.Snapshot())
	require.NoError(t, err)
	var snap chain.Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))

	restored, err := chain.Restore(&snap, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, c.Block(), restored.Block())
	assert.Equal(t, c.Nonce(alice), restored.Nonce(alice))
	assert.Equal(t, c.Receipts(0), restored.Receipts(0))
	rm := mustMarket(t, restored, "MKR")
	assert.Equal(t, mkr.BalanceOf(alice), rm.BalanceOf(alice))
	assert.Equal(t, mkr.ReserveBalance(), rm.ReserveBalance())
	assert.True(t, restored.TaDa().HasFaucetAddress(alice))

	// unlimited approval survives, so alice can keep buying
	_, _, err = restored.Transact(ctx, alice, rm.Address(), contract.KindCreatorToken, "buy", units.Ether(1).ToBig())
	require.NoError(t, err)
}

func TestRestoreRejectsOtherVersion(t *testing.T) {
	snap := newChain(t).Snapshot()
	snap.Version = 99
	_, err := chain.Restore(snap, nil)
	assert.Error(t, err)
}

package ledger_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/marvinkome/tada/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	alice     = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bob       = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	carol     = common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")
)

func u(n uint64) *uint256.Int { return uint256.NewInt(n) }

func newShill(t *testing.T) *ledger.Ledger {
	t.Helper()
	l := ledger.New("Shill", "SHILL", 18, tokenAddr)
	require.NoError(t, l.Mint(alice, u(1000)))
	return l
}

// ---------------------------------------------------------------------------
// Mint / Burn
// ---------------------------------------------------------------------------

func TestMintIncreasesSupplyAndBalance(t *testing.T) {
	l := newShill(t)
	assert.Equal(t, uint64(1000), l.TotalSupply().Uint64())
	assert.Equal(t, uint64(1000), l.BalanceOf(alice).Uint64())
	assert.True(t, l.Conserved())
}

func TestMintToZeroAddress(t *testing.T) {
	l := newShill(t)
	err := l.Mint(common.Address{}, u(1))
	assert.ErrorIs(t, err, ledger.ErrZeroAddress)
}

func TestMintOverflowLeavesStateUntouched(t *testing.T) {
	l := newShill(t)
	err := l.Mint(bob, new(uint256.Int).SetAllOne())
	assert.ErrorIs(t, err, ledger.ErrOverflow)
	assert.True(t, l.BalanceOf(bob).IsZero())
	assert.Equal(t, uint64(1000), l.TotalSupply().Uint64())
}

func TestBurn(t *testing.T) {
	l := newShill(t)
	require.NoError(t, l.Burn(alice, u(400)))
	assert.Equal(t, uint64(600), l.TotalSupply().Uint64())
	assert.Equal(t, uint64(600), l.BalanceOf(alice).Uint64())

	err := l.Burn(alice, u(601))
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Equal(t, uint64(600), l.TotalSupply().Uint64())
}

// ---------------------------------------------------------------------------
// Transfer / Approve / TransferFrom
// ---------------------------------------------------------------------------

func TestTransfer(t *testing.T) {
	l := newShill(t)
	require.NoError(t, l.Transfer(alice, bob, u(250)))
	assert.Equal(t, uint64(750), l.BalanceOf(alice).Uint64())
	assert.Equal(t, uint64(250), l.BalanceOf(bob).Uint64())
	assert.True(t, l.Conserved())
}

func TestTransferInsufficient(t *testing.T) {
	l := newShill(t)
	err := l.Transfer(bob, alice, u(1))
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}

func TestTransferToSelfIsNoop(t *testing.T) {
	l := newShill(t)
	require.NoError(t, l.Transfer(alice, alice, u(10)))
	assert.Equal(t, uint64(1000), l.BalanceOf(alice).Uint64())
}

func TestTransferFromSpendsAllowance(t *testing.T) {
	l := newShill(t)
	require.NoError(t, l.Approve(alice, bob, u(300)))
	assert.Equal(t, uint64(300), l.Allowance(alice, bob).Uint64())

	require.NoError(t, l.TransferFrom(bob, alice, carol, u(120)))
	assert.Equal(t, uint64(180), l.Allowance(alice, bob).Uint64())
	assert.Equal(t, uint64(120), l.BalanceOf(carol).Uint64())

	err := l.TransferFrom(bob, alice, carol, u(181))
	assert.ErrorIs(t, err, ledger.ErrInsufficientAllowance)
	assert.Equal(t, uint64(180), l.Allowance(alice, bob).Uint64(), "failed call must not spend allowance")
}

func TestTransferFromInsufficientBalanceKeepsAllowance(t *testing.T) {
	l := newShill(t)
	require.NoError(t, l.Approve(bob, alice, u(50)))

	err := l.TransferFrom(alice, bob, carol, u(50))
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Equal(t, uint64(50), l.Allowance(bob, alice).Uint64())
}

func TestUnlimitedAllowance(t *testing.T) {
	l := newShill(t)
	unlimited := new(uint256.Int).SetAllOne()
	require.NoError(t, l.Approve(alice, bob, unlimited))
	require.NoError(t, l.TransferFrom(bob, alice, bob, u(999)))
	assert.True(t, l.Allowance(alice, bob).Eq(unlimited))
}

func TestHoldersSortedByBalance(t *testing.T) {
	l := newShill(t)
	require.NoError(t, l.Transfer(alice, bob, u(600)))
	require.NoError(t, l.Transfer(alice, carol, u(400)))

	holders := l.Holders()
	require.Len(t, holders, 2, "alice is drained and drops out")
	assert.Equal(t, bob, holders[0].Address)
	assert.Equal(t, carol, holders[1].Address)
}

// ---------------------------------------------------------------------------
// Snapshot / Restore
// ---------------------------------------------------------------------------

func TestSnapshotRestore(t *testing.T) {
	l := newShill(t)
	require.NoError(t, l.Transfer(alice, bob, u(10)))
	require.NoError(t, l.Approve(alice, carol, u(5)))

	restored, err := ledger.Restore(l.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, "SHILL", restored.Symbol())
	assert.Equal(t, tokenAddr, restored.Address())
	assert.Equal(t, uint64(990), restored.BalanceOf(alice).Uint64())
	assert.Equal(t, uint64(10), restored.BalanceOf(bob).Uint64())
	assert.Equal(t, uint64(5), restored.Allowance(alice, carol).Uint64())
}

func TestRestoreRejectsUnbalancedSnapshot(t *testing.T) {
	snap := newShill(t).Snapshot()
	snap.TotalSupply = "999"
	_, err := ledger.Restore(snap)
	assert.Error(t, err)
}

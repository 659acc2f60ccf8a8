package contract

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustType(t *testing.T, s string) abi.Type {
	t.Helper()
	typ, err := abi.NewType(s, "", nil)
	require.NoError(t, err)
	return typ
}

// ---------------------------------------------------------------------------
// parseArg
// ---------------------------------------------------------------------------

func TestParseArgAddress(t *testing.T) {
	v, err := parseArg(mustType(t, "address"), "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"), v)

	_, err = parseArg(mustType(t, "address"), "0x1")
	assert.Error(t, err)
}

func TestParseArgUint(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		val     string
		want    interface{}
		wantErr bool
	}{
		{"decimal", "uint256", "1000000000000000000", big.NewInt(1e18), false},
		{"hex", "uint256", "0x64", big.NewInt(100), false},
		{"uint8", "uint8", "255", uint8(255), false},
		{"uint8 overflow", "uint8", "256", nil, true},
		{"negative", "uint256", "-1", nil, true},
		{"not a number", "uint256", "ten", nil, true},
		{"empty", "uint256", "", nil, true},
		{"int64", "int64", "-5", int64(-5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArg(mustType(t, tt.typ), tt.val)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgBoolAndString(t *testing.T) {
	v, err := parseArg(mustType(t, "bool"), "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = parseArg(mustType(t, "bool"), "yes")
	assert.Error(t, err)

	v, err = parseArg(mustType(t, "string"), " Mark Rober ")
	require.NoError(t, err)
	assert.Equal(t, "Mark Rober", v)
}

func TestParseArgUnsupported(t *testing.T) {
	_, err := parseArg(mustType(t, "uint256[]"), "1,2")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

// ---------------------------------------------------------------------------
// Caller
// ---------------------------------------------------------------------------

func TestCallerEncodeBalanceOf(t *testing.T) {
	c, err := NewCaller(KindShillToken)
	require.NoError(t, err)

	data, err := c.Encode("balanceOf", "0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)
	assert.Equal(t,
		"70a08231"+"0000000000000000000000001234567890abcdef1234567890abcdef12345678",
		hex.EncodeToString(data))
}

func TestCallerEncodeErrors(t *testing.T) {
	c, err := NewCaller(KindCreatorToken)
	require.NoError(t, err)

	_, err = c.Encode("mint", "1")
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = c.Encode("buy")
	assert.Error(t, err)

	_, err = c.Encode("buy", "lots")
	assert.Error(t, err)
}

func TestCallerDecodeCreatorList(t *testing.T) {
	c, err := NewCaller(KindTaDa)
	require.NoError(t, err)

	a, err := BuiltinABI(KindTaDa)
	require.NoError(t, err)
	addrs := []common.Address{
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
	}
	data, err := a.Methods["getCreatorToken"].Outputs.Pack(
		[]string{"Mark Rober", "Veritasium"}, []string{"MKR", "VRT"}, addrs)
	require.NoError(t, err)

	got, err := c.Decode("getCreatorToken", data)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Mark Rober,Veritasium", got[0])
	assert.Equal(t, "MKR,VRT", got[1])
	assert.Equal(t, addrs[0].Hex()+","+addrs[1].Hex(), got[2])
}

func TestDecodeMethodWithoutOutputs(t *testing.T) {
	vals, err := Unpack(KindTaDa, "faucetToken", nil)
	require.NoError(t, err)
	assert.Empty(t, vals)

	c, err := NewCaller(KindTaDa)
	require.NoError(t, err)
	got, err := c.Decode("faucetToken", nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Unpack(KindTaDa, "nope", nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)
	_, err = c.Decode("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestCallerFunction(t *testing.T) {
	c, err := NewCaller(KindCreatorToken)
	require.NoError(t, err)

	fn, ok := c.Function("sell")
	require.True(t, ok)
	assert.Equal(t, "sell(uint256)", fn.Signature())

	_, ok = c.Function("Bought")
	assert.False(t, ok, "events are not functions")

	_, err = NewCaller("nope")
	assert.ErrorIs(t, err, ErrUnknownContract)
}

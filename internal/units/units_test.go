package units_test

import (
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/marvinkome/tada/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// ParseUnits / ParseEther
// ---------------------------------------------------------------------------

func TestParseEther(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"1.5", "1500000000000000000"},
		{"0.000000000000000001", "1"},
		{".25", "250000000000000000"},
		{"10.", "10000000000000000000"},
		{"0", "0"},
		{"000.000", "0"},
		{"+2", "2000000000000000000"},
		{"  50 ", "50000000000000000000"},
		{"1.500000000000000000000", "1500000000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := units.ParseEther(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Dec())
		})
	}
}

func TestParseEtherErrors(t *testing.T) {
	tests := []struct {
		in  string
		err error
	}{
		{"", units.ErrEmpty},
		{"-1", units.ErrNegative},
		{"1.2.3", units.ErrMalformed},
		{"abc", units.ErrMalformed},
		{".", units.ErrMalformed},
		{"1e18", units.ErrMalformed},
		{"0.0000000000000000001", units.ErrPrecision},
		{"1" + strings.Repeat("0", 72), units.ErrRange},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := units.ParseEther(tt.in)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseUnitsCustomDecimals(t *testing.T) {
	v, err := units.ParseUnits("12.34", 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(12_340_000), v.Uint64())
}

// ---------------------------------------------------------------------------
// FormatUnits / Truncate
// ---------------------------------------------------------------------------

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "1", units.FormatEther(units.One))
	assert.Equal(t, "0.000000000000000001", units.FormatEther(uint256.NewInt(1)))
	assert.Equal(t, "0", units.FormatEther(new(uint256.Int)))
	assert.Equal(t, "0", units.FormatEther(nil))
	assert.Equal(t, "2.5", units.FormatEther(units.MustParseEther("2.5")))
	assert.Equal(t, "50", units.FormatEther(units.Ether(50)))
}

func TestFormatUnitsZeroDecimals(t *testing.T) {
	assert.Equal(t, "42", units.FormatUnits(uint256.NewInt(42), 0))
}

func TestTruncate(t *testing.T) {
	v := units.MustParseEther("3.14159")
	assert.Equal(t, "3.14", units.Truncate(v, units.Decimals, 2))
	assert.Equal(t, "3", units.Truncate(v, units.Decimals, 0))
	assert.Equal(t, "3.14159", units.Truncate(v, units.Decimals, 10))

	// Cutting never rounds up.
	assert.Equal(t, "0.99", units.Truncate(units.MustParseEther("0.999"), units.Decimals, 2))
	// A cut that leaves only zeros drops the fraction.
	assert.Equal(t, "1", units.Truncate(units.MustParseEther("1.001"), units.Decimals, 2))
}

// ---------------------------------------------------------------------------
// Fuzz
// ---------------------------------------------------------------------------

// FuzzParseFormatRoundTrip checks that any parsed amount formats back to a
// string that parses to the same value.
func FuzzParseFormatRoundTrip(f *testing.F) {
	f.Add("0")
	f.Add("1")
	f.Add("1.5")
	f.Add("0.000000000000000001")
	f.Add("115792089237316195423570985008687907853269984665640564039457.584007913129639935")

	f.Fuzz(func(t *testing.T, s string) {
		v, err := units.ParseEther(s)
		if err != nil {
			return
		}
		back, err := units.ParseEther(units.FormatEther(v))
		if err != nil {
			t.Fatalf("formatted value %q did not parse: %v", units.FormatEther(v), err)
		}
		if !back.Eq(v) {
			t.Fatalf("round trip mismatch: %s != %s", back.Dec(), v.Dec())
		}
	})
}

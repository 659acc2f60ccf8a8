// Package units converts between human decimal strings and 18-decimal
// fixed-point token amounts without going through floating point.
package units

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Decimals is the scale used by ShillToken and every creator token.
const Decimals = 18

var (
	ErrEmpty     = errors.New("empty amount")
	ErrMalformed = errors.New("malformed amount")
	ErrNegative  = errors.New("negative amount")
	ErrPrecision = errors.New("too many decimal places")
	ErrRange     = errors.New("amount out of uint256 range")
)

// One is 1.0 at 18 decimals (1e18).
var One = uint256.NewInt(1_000_000_000_000_000_000)

// Ether returns n whole units at 18 decimals.
func Ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), One)
}

// ParseEther parses a decimal string such as "1.5" into 18-decimal units.
func ParseEther(s string) (*uint256.Int, error) {
	return ParseUnits(s, Decimals)
}

// MustParseEther is ParseEther for constants and tests.
func MustParseEther(s string) *uint256.Int {
	v, err := ParseEther(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseUnits parses s into an integer scaled by 10^decimals.
func ParseUnits(s string, decimals int) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmpty
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("%w: %s", ErrNegative, s)
	}
	s = strings.TrimPrefix(s, "+")

	whole, frac, hasDot := strings.Cut(s, ".")
	if hasDot && strings.Contains(frac, ".") {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, s)
	}
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, s)
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, s)
	}

	// Trailing zeros never change the value, so "1.500000000000000000000" is fine.
	frac = strings.TrimRight(frac, "0")
	if len(frac) > decimals {
		return nil, fmt.Errorf("%w: %s has more than %d", ErrPrecision, s, decimals)
	}

	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return new(uint256.Int), nil
	}

	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRange, s)
	}
	return v, nil
}

// FormatEther renders an 18-decimal amount, trimming trailing zeros.
func FormatEther(v *uint256.Int) string {
	return FormatUnits(v, Decimals)
}

// FormatUnits renders v / 10^decimals as a decimal string, trimming trailing zeros.
func FormatUnits(v *uint256.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	digits := v.Dec()
	if decimals == 0 {
		return digits
	}
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	whole := digits[:len(digits)-decimals]
	frac := strings.TrimRight(digits[len(digits)-decimals:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// Truncate renders v with at most maxDigits fractional digits. Extra digits
// are cut, not rounded, so a displayed balance is never more than the real one.
func Truncate(v *uint256.Int, decimals, maxDigits int) string {
	s := FormatUnits(v, decimals)
	whole, frac, ok := strings.Cut(s, ".")
	if !ok || maxDigits <= 0 {
		return whole
	}
	if len(frac) > maxDigits {
		frac = strings.TrimRight(frac[:maxDigits], "0")
	}
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

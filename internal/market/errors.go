package market

import (
	"errors"

	"github.com/marvinkome/tada/internal/curve"
	"github.com/marvinkome/tada/internal/ledger"
)

// Errors. The amount and arithmetic errors are shared with the curve and the
// balance errors with the ledger, so errors.Is works whichever layer failed.
var (
	ErrInvalidAmount         = curve.ErrInvalidAmount
	ErrArithmeticOverflow    = curve.ErrArithmeticOverflow
	ErrInsufficientBalance   = ledger.ErrInsufficientBalance
	ErrInsufficientAllowance = ledger.ErrInsufficientAllowance

	ErrSlippageExceeded    = errors.New("slippage exceeded")
	ErrInsufficientReserve = errors.New("insufficient reserve")
	ErrInvalidTrader       = errors.New("invalid trader")
	ErrInvariant           = errors.New("market invariant violated")
)

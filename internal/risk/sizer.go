// Package risk converts an account balance and a stop distance into a
// position size bounded by a fixed risk fraction.
package risk

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidStop reports sizing preconditions violated for a long entry:
// the stop loss must sit strictly below the entry price.
var ErrInvalidStop = errors.New("stop loss price must be less than entry price for a long position")

// DefaultRiskFraction is the share of the account balance put at risk on a
// single trade.
var DefaultRiskFraction = decimal.RequireFromString("0.10")

// Sizer computes position sizes. It performs no I/O and holds no state
// beyond the configured balance; the engine is responsible for clamping the
// result to the available free balance.
type Sizer struct {
	balance  decimal.Decimal
	fraction decimal.Decimal
}

// NewSizer creates a sizer with the default 10% risk fraction.
func NewSizer(balance decimal.Decimal) *Sizer {
	return &Sizer{balance: balance, fraction: DefaultRiskFraction}
}

// NewSizerWithFraction creates a sizer with a custom risk fraction.
func NewSizerWithFraction(balance, fraction decimal.Decimal) *Sizer {
	return &Sizer{balance: balance, fraction: fraction}
}

// Balance returns the balance the sizer is currently using.
func (s *Sizer) Balance() decimal.Decimal {
	return s.balance
}

// SetBalance updates the account balance used for subsequent sizings.
func (s *Sizer) SetBalance(balance decimal.Decimal) {
	s.balance = balance
}

// PositionSize returns balance × fraction / (entry − stop). Only long
// entries are modeled: a stop at or above the entry is ErrInvalidStop.
func (s *Sizer) PositionSize(entryPrice, stopLossPrice decimal.Decimal) (decimal.Decimal, error) {
	if stopLossPrice.GreaterThanOrEqual(entryPrice) {
		return decimal.Zero, ErrInvalidStop
	}

	riskPerUnit := entryPrice.Sub(stopLossPrice)
	if riskPerUnit.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidStop
	}

	maxRiskAmount := s.balance.Mul(s.fraction)
	return maxRiskAmount.Div(riskPerUnit), nil
}

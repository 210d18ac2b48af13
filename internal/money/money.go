// Package money wraps shopspring/decimal with the scale rules the backtest
// core relies on: cash, prices and quantities are exact, never float64.
package money

import (
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits that Round, Mul and Div round
// their results to. Add and Sub on D keep full decimal precision.
const Scale = 8

// D is an exact decimal quantity: cash, price, order quantity, fee or tax.
type D = decimal.Decimal

// Zero is the additive identity.
var Zero = decimal.Zero

// New builds a D from an integer mantissa and exponent, e.g. New(1005, -2) == 10.05.
func New(value int64, exp int32) D { return decimal.New(value, exp) }

// FromFloat converts a float64 into a D. Used where a value starts out as
// a float: strategy parameters and the float-computed indicator
// statistics (band widths, RSI, z-scores).
func FromFloat(f float64) D { return decimal.NewFromFloat(f) }

// FromString parses a decimal literal, returning an error on malformed input.
func FromString(s string) (D, error) { return decimal.NewFromString(s) }

// Round rounds v to Scale fractional digits, rounding halves away from zero.
func Round(v D) D { return v.Round(Scale) }

// Mul multiplies two decimals and rounds the result to Scale digits.
func Mul(a, b D) D { return Round(a.Mul(b)) }

// Div divides a by b to Scale digits of precision. Panics are never raised;
// division by zero returns Zero.
func Div(a, b D) D {
	if b.IsZero() {
		return Zero
	}
	return a.DivRound(b, Scale)
}

// BPS converts an integer basis-points value into its decimal fraction,
// e.g. BPS(5) == 0.0005.
func BPS(bps int) D {
	return decimal.NewFromInt(int64(bps)).Div(decimal.NewFromInt(10000))
}

// Pct converts a percent value (e.g. 0.03 meaning 0.03%) into its decimal
// fraction, i.e. Pct(0.03) == 0.0003.
func Pct(pct float64) D {
	return decimal.NewFromFloat(pct).Div(decimal.NewFromInt(100))
}

// Max returns the larger of a and b.
func Max(a, b D) D {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b D) D {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Abs returns the absolute value of v.
func Abs(v D) D { return v.Abs() }

// Neg returns -v.
func Neg(v D) D { return v.Neg() }

// FloorStep floors v down to the nearest non-negative multiple of step.
// A non-positive step is a no-op (used where a venue declares no lot step).
func FloorStep(v, step D) D {
	if step.Sign() <= 0 {
		return v
	}
	n := v.Div(step).Floor()
	if n.Sign() < 0 {
		n = decimal.Zero
	}
	return n.Mul(step)
}

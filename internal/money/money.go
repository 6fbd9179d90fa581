// Package money holds the fixed-point helpers every derived amount goes through.
//
// All rounding is half-up in the commercial sense: a trailing 5 rounds away
// from zero, so -1.005 becomes -1.01. Currency values carry two places;
// ratios used as an intermediate step carry four.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// CurrencyPlaces is the scale of stored and reported amounts.
	CurrencyPlaces int32 = 2
	// RatioPlaces is the scale of intermediate ratios before they become percentages.
	RatioPlaces int32 = 4
)

// ErrInvalidAmount is returned by Parse for blank or malformed input.
var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

// Hundred returns the decimal constant 100.
func Hundred() decimal.Decimal {
	return hundred
}

// Round rounds d to currency precision.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// DivRound divides a by b and rounds the quotient to places.
// A zero divisor yields zero rather than a panic.
func DivRound(a, b decimal.Decimal, places int32) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, places)
}

// Percent returns part as a percentage of whole, rounded to two places.
// Whole == 0 yields 0.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(whole, CurrencyPlaces)
}

// RatioPercent rounds part/whole to four places first and then scales it to
// a 0-100 value, so 1/3 reports as 33.33. Whole == 0 yields 0.
func RatioPercent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.DivRound(whole, RatioPlaces).Mul(hundred)
}

// Sum adds the given values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Parse reads a decimal amount, accepting either a dot or a comma as the
// decimal separator.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

package decimal

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits carried by every money value
const Places = 2

// MaxExponent bounds the decimal exponent accepted by FromString. Rounding a
// value such as 1e999999999 would expand it digit by digit.
const MaxExponent = 30

// ErrOutOfRange is returned for values whose exponent exceeds MaxExponent
var ErrOutOfRange = errors.New("amount out of range")

// Zero is decimal zero
var Zero = decimal.Zero

// FromInt creates decimal from int
func FromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// FromString parses decimal from string. Values with an exponent beyond
// ±MaxExponent are rejected with ErrOutOfRange.
func FromString(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, err
	}
	if exp := d.Exponent(); exp > MaxExponent || exp < -MaxExponent {
		return Zero, fmt.Errorf("%w: exponent %d", ErrOutOfRange, exp)
	}
	return d, nil
}

// MustFromString parses decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round rounds to money precision
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Format renders d with exactly two fractional digits ("-1000.00")
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// Trim renders d without trailing fractional zeros ("3", "2.5")
func Trim(d decimal.Decimal) string {
	return d.String()
}

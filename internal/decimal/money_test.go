package decimal_test

import (
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/tally-connector/internal/decimal"
)

func TestFromInt(t *testing.T) {
	d := decimal.FromInt(100000)
	assert.True(t, d.Equal(dec.NewFromInt(100000)))
}

func TestFromString(t *testing.T) {
	d, err := decimal.FromString("123456.78")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec.RequireFromString("123456.78")))

	_, err = decimal.FromString("not-a-number")
	require.Error(t, err)
}

func TestFromString_ExponentRange(t *testing.T) {
	d, err := decimal.FromString("1.5e30")
	require.NoError(t, err)
	assert.Equal(t, int32(29), d.Exponent())

	for _, in := range []string{"1e999999999", "1e-999999999", "1e31", "0.0000000000000000000000000000001"} {
		_, err := decimal.FromString(in)
		assert.ErrorIs(t, err, decimal.ErrOutOfRange, in)
	}
}

func TestMustFromString(t *testing.T) {
	d := decimal.MustFromString("999.99")
	assert.True(t, d.Equal(dec.RequireFromString("999.99")))

	assert.Panics(t, func() {
		decimal.MustFromString("invalid")
	})
}

func TestRound(t *testing.T) {
	assert.Equal(t, "10.13", decimal.Round(dec.RequireFromString("10.125")).String())
	assert.Equal(t, "10", decimal.Round(dec.RequireFromString("10.001")).String())
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"1000", "1000.00"},
		{"-1000", "-1000.00"},
		{"74900.5", "74900.50"},
		{"0", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, decimal.Format(dec.RequireFromString(tt.in)))
		})
	}
}

func TestTrim(t *testing.T) {
	assert.Equal(t, "3", decimal.Trim(dec.RequireFromString("3.00")))
	assert.Equal(t, "2.5", decimal.Trim(dec.RequireFromString("2.50")))
}

func TestSum(t *testing.T) {
	values := []dec.Decimal{
		dec.NewFromInt(100),
		dec.NewFromInt(200),
		dec.NewFromInt(300),
	}
	result := decimal.Sum(values)
	assert.True(t, result.Equal(dec.NewFromInt(600)))
}

func TestSum_Empty(t *testing.T) {
	result := decimal.Sum([]dec.Decimal{})
	assert.True(t, result.IsZero())
}

func TestIsPositive(t *testing.T) {
	assert.True(t, decimal.IsPositive(dec.NewFromInt(1)))
	assert.False(t, decimal.IsPositive(dec.Zero))
	assert.False(t, decimal.IsPositive(dec.NewFromInt(-1)))
}

package normalize_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rezonia/tally-connector/internal/normalize"
)

func TestAmountNormalizer(t *testing.T) {
	n := normalize.NewAmountNormalizer(nil)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"thousands separator", "74,900.00", "74900.00"},
		{"indian grouping", "1,23,456.78", "123456.78"},
		{"rupee glyph", "₹13,715.52", "13715.52"},
		{"dollar glyph with space", "$ 9,999.00", "9999.00"},
		{"plain integer", "1000", "1000.00"},
		{"rounds half up", "10.125", "10.13"},
		{"negative", "-250.5", "-250.50"},
		{"exponent", "1.5e3", "1500.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.input)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"input=%q: got %s, want %s", tt.input, got.String(), tt.expected)
		})
	}
}

func TestAmountNormalizer_DegradesToZero(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	n := normalize.NewAmountNormalizer(zap.New(core))

	for _, in := range []string{"", "N/A", "Rs. 500", "12.3.4", "1e999999999", "5e-40"} {
		assert.True(t, n.Normalize(in).IsZero(), in)
	}

	assert.Equal(t, 6, logs.FilterMessage("could not parse amount, using 0.00").Len())
}

func BenchmarkAmountNormalizer(b *testing.B) {
	n := normalize.NewAmountNormalizer(nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n.Normalize("₹74,900.00")
	}
}

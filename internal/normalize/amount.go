package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	money "github.com/rezonia/tally-connector/internal/decimal"
)

var amountStripper = strings.NewReplacer("$", "", "₹", "", ",", "")

// AmountNormalizer parses money strings such as "₹ 74,900.00".
// Unparseable input yields zero and is logged, never returned as an error.
type AmountNormalizer struct {
	logger *zap.Logger
}

// NewAmountNormalizer creates an AmountNormalizer
func NewAmountNormalizer(logger *zap.Logger) *AmountNormalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmountNormalizer{logger: logger}
}

// Normalize strips currency glyphs and thousands separators and rounds to 2 places
func (n *AmountNormalizer) Normalize(input string) decimal.Decimal {
	clean := strings.TrimSpace(amountStripper.Replace(input))
	d, err := money.FromString(clean)
	if err != nil {
		n.logger.Warn("could not parse amount, using 0.00", zap.String("amount", input), zap.Error(err))
		return money.Zero
	}
	return money.Round(d)
}

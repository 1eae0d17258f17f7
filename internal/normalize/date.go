package normalize

import (
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
)

// Output layouts
const (
	DisplayLayout = "02 01 2006"
	NumericLayout = "20060102"
)

// dateLayouts are tried in order, first match wins:
// DD/MM/YYYY, DD-MM-YYYY, YYYY-MM-DD, MM/DD/YYYY, DDMMYYYY, YYYYMMDD
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2006-1-2",
	"1/2/2006",
	"02012006",
	"20060102",
}

// Date is one calendar date in the two renderings ledger imports expect
type Date struct {
	Display string // DD MM YYYY
	Numeric string // YYYYMMDD
}

// DateNormalizer turns free-form invoice dates into Date values.
// It never fails: unresolvable input degrades to the current date.
type DateNormalizer struct {
	logger *zap.Logger
	now    func() time.Time
}

// DateOption configures a DateNormalizer
type DateOption func(*DateNormalizer)

// WithDateLogger sets the logger used to report degradations
func WithDateLogger(logger *zap.Logger) DateOption {
	return func(n *DateNormalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithClock overrides the source of "today"
func WithClock(now func() time.Time) DateOption {
	return func(n *DateNormalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// NewDateNormalizer creates a DateNormalizer
func NewDateNormalizer(opts ...DateOption) *DateNormalizer {
	n := &DateNormalizer{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize resolves input to a Date
func (n *DateNormalizer) Normalize(input string) Date {
	s := strings.TrimSpace(input)
	if s == "" {
		n.logger.Debug("empty invoice date, using today")
		return fromTime(n.now())
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fromTime(t)
		}
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, s)

	if len(digits) == 8 {
		if strings.HasPrefix(digits, "19") || strings.HasPrefix(digits, "20") {
			// YYYYMMDD
			return Date{
				Display: digits[6:8] + " " + digits[4:6] + " " + digits[0:4],
				Numeric: digits,
			}
		}
		// DDMMYYYY
		return Date{
			Display: digits[0:2] + " " + digits[2:4] + " " + digits[4:8],
			Numeric: digits[4:8] + digits[2:4] + digits[0:2],
		}
	}

	n.logger.Warn("could not parse invoice date, using today", zap.String("date", input))
	return fromTime(n.now())
}

func fromTime(t time.Time) Date {
	return Date{
		Display: t.Format(DisplayLayout),
		Numeric: t.Format(NumericLayout),
	}
}

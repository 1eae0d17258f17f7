package response

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/rezonia/tally-connector/internal/model"
	"github.com/rezonia/tally-connector/internal/normalize"
)

// Parser salvages invoice records from free-text vision model output.
// It is stateless across calls and safe for concurrent use.
type Parser struct {
	strategies []Strategy
	logger     *zap.Logger
}

// Option configures the parser
type Option func(*Parser)

// WithLogger sets the logger for strategy misses and amount degradations
func WithLogger(logger *zap.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithStrategies replaces the salvage chain
func WithStrategies(strategies ...Strategy) Option {
	return func(p *Parser) {
		p.strategies = strategies
	}
}

// NewParser creates a parser with the default salvage chain
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		strategies: DefaultStrategies(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse tries each strategy in order and returns the first success.
// All failures are returned as a tagged outcome; Parse never panics on input.
func (p *Parser) Parse(raw string) model.ParseOutcome {
	var lastErr error

	for _, s := range p.strategies {
		elems, err := s.Extract(raw)
		if err != nil {
			if !errors.Is(err, errNoSpan) {
				lastErr = err
			}
			p.logger.Debug("strategy did not apply", zap.String("strategy", s.Name()), zap.Error(err))
			continue
		}

		records, err := p.decode(elems)
		if err != nil {
			lastErr = err
			p.logger.Debug("strategy produced undecodable records", zap.String("strategy", s.Name()), zap.Error(err))
			continue
		}

		p.logger.Debug("parsed model response",
			zap.String("strategy", s.Name()),
			zap.Int("records", len(records)),
		)
		return model.Parsed(records)
	}

	failure := p.failure(raw, lastErr)
	p.logger.Warn("could not salvage records from model response",
		zap.String("reason", failure.Reason),
		zap.Error(failure.Cause),
	)
	return model.Failed(failure)
}

// failure reports the span a strategy attempted when there is one
func (p *Parser) failure(raw string, cause error) *model.ParseError {
	var serr *SpanError
	if errors.As(cause, &serr) {
		return model.NewParseError(model.ReasonUnparseable, serr.Span, serr.Err)
	}
	if span, ok := ObjectSpan(raw); ok {
		return model.NewParseError(model.ReasonUnparseable, span, cause)
	}
	if cause != nil {
		return model.NewParseError(model.ReasonUnparseable, raw, cause)
	}
	return model.NewParseError(model.ReasonNoStructure, raw, nil)
}

func (p *Parser) decode(elems []json.RawMessage) ([]model.InvoiceRecord, error) {
	d := &decoder{amounts: normalize.NewAmountNormalizer(p.logger), logger: p.logger}

	records := make([]model.InvoiceRecord, 0, len(elems))
	for _, e := range elems {
		rec, err := d.record(e)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Parse salvages records with a default parser
func Parse(raw string) model.ParseOutcome {
	return NewParser().Parse(raw)
}

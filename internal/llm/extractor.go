package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/rezonia/tally-connector/internal/model"
	"github.com/rezonia/tally-connector/internal/parser/response"
)

// MethodVision tags extraction errors raised by the vision call
const MethodVision = "llm_vision"

// VisionClient is the part of Client the extractor needs
type VisionClient interface {
	ChatWithImages(ctx context.Context, model, prompt string, images []Image) (string, error)
}

// Extractor turns invoice page images into salvaged records
type Extractor struct {
	client VisionClient
	model  string
	prompt string
	parser *response.Parser
	logger *zap.Logger
}

// ExtractorOption configures the extractor
type ExtractorOption func(*Extractor)

// WithModel sets the vision model
func WithModel(model string) ExtractorOption {
	return func(e *Extractor) {
		e.model = model
	}
}

// WithPrompt replaces the extraction prompt
func WithPrompt(prompt string) ExtractorOption {
	return func(e *Extractor) {
		if prompt != "" {
			e.prompt = prompt
		}
	}
}

// WithParser sets the response parser
func WithParser(p *response.Parser) ExtractorOption {
	return func(e *Extractor) {
		if p != nil {
			e.parser = p
		}
	}
}

// WithExtractorLogger sets the logger
func WithExtractorLogger(logger *zap.Logger) ExtractorOption {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor creates an extractor backed by client
func NewExtractor(client VisionClient, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		client: client,
		prompt: PromptInvoiceExtraction,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.parser == nil {
		e.parser = response.NewParser(response.WithLogger(e.logger))
	}
	return e
}

// Extract sends all pages of one invoice to the model and parses the reply.
// Transport failures are returned as *model.ExtractionError; a reply that
// cannot be salvaged comes back as a failed outcome with a nil error.
func (e *Extractor) Extract(ctx context.Context, images []Image) (model.ParseOutcome, error) {
	if len(images) == 0 {
		err := model.NewExtractionError(MethodVision, "no pages to extract", nil)
		return model.Failed(model.NewParseError(model.ReasonNoStructure, "", err)), err
	}

	e.logger.Debug("calling vision model", zap.String("model", e.model), zap.Int("pages", len(images)))

	raw, err := e.client.ChatWithImages(ctx, e.model, e.prompt, images)
	if err != nil {
		xerr := model.NewExtractionError(MethodVision, "vision request failed", err)
		return model.Failed(model.NewParseError(model.ReasonNoStructure, "", xerr)), xerr
	}

	outcome := e.parser.Parse(raw)
	if outcome.OK() {
		e.logger.Info("extracted invoices", zap.Int("records", len(outcome.Records)))
	}
	return outcome, nil
}

package tallylib

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rezonia/tally-connector/internal/llm"
	"github.com/rezonia/tally-connector/internal/processor"
)

// Options configures a Converter
type Options struct {
	// APIKey enables image processing through the vision model
	APIKey      string
	BaseURL     string
	VisionModel string
	Timeout     time.Duration

	// OutputDir receives json/ and xml/ subdirectories
	OutputDir string
	Workers   int
	Logger    *zap.Logger
}

// DefaultOptions returns offline options writing to the default output directory
func DefaultOptions() Options {
	return Options{
		OutputDir: processor.DefaultOutputDir,
		Workers:   processor.DefaultWorkers,
	}
}

// Conversion is the offline result of converting model output
type Conversion = processor.Conversion

// Result is the outcome of processing one invoice file
type Result = processor.Result

// Converter runs the full conversion pipeline
type Converter struct {
	pipeline *processor.Pipeline
}

// NewConverter creates a converter with the given options
func NewConverter(opts Options) *Converter {
	popts := []processor.Option{
		processor.WithOutputDir(opts.OutputDir),
		processor.WithWorkers(opts.Workers),
		processor.WithLogger(opts.Logger),
	}

	if opts.APIKey != "" {
		var clientOpts []llm.ClientOption
		if opts.BaseURL != "" {
			clientOpts = append(clientOpts, llm.WithBaseURL(opts.BaseURL))
		}
		if opts.Timeout > 0 {
			clientOpts = append(clientOpts, llm.WithTimeout(opts.Timeout))
		}
		client := llm.NewClient(opts.APIKey, clientOpts...)

		var extractorOpts []llm.ExtractorOption
		if opts.VisionModel != "" {
			extractorOpts = append(extractorOpts, llm.WithModel(opts.VisionModel))
		}
		extractorOpts = append(extractorOpts, llm.WithExtractorLogger(opts.Logger))

		popts = append(popts, processor.WithExtractor(llm.NewExtractor(client, extractorOpts...)))
	}

	return &Converter{pipeline: processor.NewPipeline(popts...)}
}

// Convert parses raw model output and builds vouchers without touching disk
func (c *Converter) Convert(raw string) *Conversion {
	return c.pipeline.ConvertText(raw)
}

// ProcessFile extracts, converts and saves one invoice file.
// It needs an API key; without one the result fails with ErrNoExtractor.
func (c *Converter) ProcessFile(ctx context.Context, path string) *Result {
	return c.pipeline.ProcessFile(ctx, path)
}

// ProcessImage extracts, converts and saves an in-memory image or PDF
func (c *Converter) ProcessImage(ctx context.Context, data []byte, name string) *Result {
	return c.pipeline.ProcessImage(ctx, data, name)
}

// ErrNoExtractor is returned when image processing is attempted without an API key
var ErrNoExtractor = processor.ErrNoExtractor

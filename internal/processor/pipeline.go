package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rezonia/tally-connector/internal/llm"
	"github.com/rezonia/tally-connector/internal/model"
	"github.com/rezonia/tally-connector/internal/parser/response"
	"github.com/rezonia/tally-connector/internal/tally"
)

// Pipeline defaults
const (
	DefaultOutputDir = "invoice_output"
	DefaultWorkers   = 4
)

// ErrNoExtractor is returned when a file needs the vision model but none is configured
var ErrNoExtractor = errors.New("vision extractor not configured")

// Extractor turns the pages of one invoice into salvaged records
type Extractor interface {
	Extract(ctx context.Context, images []llm.Image) (model.ParseOutcome, error)
}

// Pipeline orchestrates extract, convert and save
type Pipeline struct {
	extractor Extractor
	parser    *response.Parser
	builder   *tally.Builder
	outputDir string
	workers   int
	logger    *zap.Logger
}

// Option configures the pipeline
type Option func(*Pipeline)

// WithExtractor sets the vision extractor
func WithExtractor(e Extractor) Option {
	return func(p *Pipeline) {
		p.extractor = e
	}
}

// WithParser sets the response parser used by the offline conversion path
func WithParser(parser *response.Parser) Option {
	return func(p *Pipeline) {
		if parser != nil {
			p.parser = parser
		}
	}
}

// WithBuilder sets the voucher builder
func WithBuilder(b *tally.Builder) Option {
	return func(p *Pipeline) {
		if b != nil {
			p.builder = b
		}
	}
}

// WithOutputDir sets where json/ and xml/ artifacts are written
func WithOutputDir(dir string) Option {
	return func(p *Pipeline) {
		if dir != "" {
			p.outputDir = dir
		}
	}
}

// WithWorkers bounds concurrent files in ProcessDirectory
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a new processing pipeline
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		outputDir: DefaultOutputDir,
		workers:   DefaultWorkers,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.parser == nil {
		p.parser = response.NewParser(response.WithLogger(p.logger))
	}
	if p.builder == nil {
		p.builder = tally.NewBuilder(tally.WithLogger(p.logger), tally.WithWorkers(p.workers))
	}

	return p
}

// OutputDir returns the output root
func (p *Pipeline) OutputDir() string {
	return p.outputDir
}

// JSONDir returns the directory extracted records are written to
func (p *Pipeline) JSONDir() string {
	return filepath.Join(p.outputDir, "json")
}

// XMLDir returns the directory voucher documents are written to
func (p *Pipeline) XMLDir() string {
	return filepath.Join(p.outputDir, "xml")
}

// HasExtractor reports whether image processing is available
func (p *Pipeline) HasExtractor() bool {
	return p.extractor != nil
}

// ProcessFile runs one invoice file through the whole pipeline
func (p *Pipeline) ProcessFile(ctx context.Context, path string) *Result {
	return p.ProcessPages(ctx, path)
}

// ProcessPages treats several image files as the pages of one invoice and
// extracts them in a single model call. The first path names the result.
func (p *Pipeline) ProcessPages(ctx context.Context, paths ...string) *Result {
	if len(paths) == 0 {
		return failed("", errors.New("no input files"))
	}
	result := newResult(paths[0])

	var pages []llm.Image
	for _, path := range paths {
		imgs, err := p.loadPages(path)
		if err != nil {
			p.logger.Error("load invoice", zap.String("file", path), zap.Error(err))
			return result.fail(err)
		}
		pages = append(pages, imgs...)
	}

	return p.extract(ctx, result, pages)
}

// ProcessImage processes an in-memory image or PDF; name is used for output file names
func (p *Pipeline) ProcessImage(ctx context.Context, data []byte, name string) *Result {
	result := newResult(name)

	var pages []llm.Image
	switch DetectFormat(data) {
	case FormatPDF:
		imgs, err := PDFPages(data)
		if err != nil {
			return result.fail(err)
		}
		pages = imgs
	case FormatImage:
		pages = []llm.Image{{Data: data, MIMEType: ImageMIMEType(data)}}
	default:
		return result.fail(fmt.Errorf("unsupported content in %s", name))
	}

	return p.extract(ctx, result, pages)
}

func (p *Pipeline) loadPages(path string) ([]llm.Image, error) {
	if !IsSupported(path) {
		return nil, fmt.Errorf("unsupported file format: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if formatFromExt(path) == FormatPDF {
		return PDFPages(data)
	}

	mime := ImageMIMEType(data)
	if mime == "" {
		mime = "image/png"
	}
	return []llm.Image{{Data: data, MIMEType: mime}}, nil
}

func (p *Pipeline) extract(ctx context.Context, result *Result, pages []llm.Image) *Result {
	log := p.logger.With(zap.String("file", result.File))

	if p.extractor == nil {
		return result.fail(ErrNoExtractor)
	}
	if err := ctx.Err(); err != nil {
		return result.fail(err)
	}

	log.Info("extracting data via vision model", zap.Int("pages", len(pages)))
	outcome, err := p.extractor.Extract(ctx, pages)
	if err != nil {
		log.Error("extraction failed", zap.Error(err))
		return result.fail(err)
	}
	if !outcome.OK() {
		log.Error("failed to extract invoice data", zap.Error(outcome.Err()))
		return result.fail(outcome.Err())
	}

	result.Records = outcome.Records
	log.Info("extracted invoices", zap.Int("records", len(outcome.Records)))

	return p.finish(result, outcome.Results())
}

// finish builds, balance-checks and saves documents for an extracted result
func (p *Pipeline) finish(result *Result, records []model.RecordResult) *Result {
	log := p.logger.With(zap.String("file", result.File))

	jsonPath, err := p.SaveRecords(stem(result.File), result.Records)
	if err != nil {
		return result.fail(err)
	}
	result.JSONPath = jsonPath
	log.Info("saved JSON", zap.String("path", jsonPath))

	for i := range result.Records {
		if verr := tally.CheckBalance(&result.Records[i]); verr != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("invoice %s: %s", result.Records[i].VoucherNumber(), verr.Message))
		}
	}

	result.Documents = p.builder.BuildAll(records)
	paths, err := p.SaveDocuments(result.Documents)
	if err != nil {
		return result.fail(err)
	}
	result.XMLPaths = paths
	for _, path := range paths {
		log.Info("saved XML", zap.String("path", path))
	}

	result.Status = StatusSuccess
	return result
}

// ProcessDirectory processes every supported file in dir. Files run
// concurrently; results keep the sorted file order.
func (p *Pipeline) ProcessDirectory(ctx context.Context, dir string) ([]*Result, error) {
	files, err := ListInvoices(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		p.logger.Warn("no invoice files found", zap.String("dir", dir))
		return nil, nil
	}
	p.logger.Info("found invoice files", zap.String("dir", dir), zap.Int("count", len(files)))

	return p.ProcessFiles(ctx, files), nil
}

// ProcessFiles processes each path as a separate invoice
func (p *Pipeline) ProcessFiles(ctx context.Context, paths []string) []*Result {
	results := make([]*Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = p.ProcessFile(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ListInvoices returns the supported files directly inside dir, sorted by name
func ListInvoices(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

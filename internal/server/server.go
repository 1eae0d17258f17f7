package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rezonia/tally-connector/internal/llm"
	"github.com/rezonia/tally-connector/internal/model"
	"github.com/rezonia/tally-connector/internal/processor"
	"github.com/rezonia/tally-connector/internal/tally"
)

// DefaultFilename names uploads that arrive without one
const DefaultFilename = "invoice.png"

// Config holds server configuration
type Config struct {
	Address        string
	APIKey         string
	LLMBaseURL     string
	LLMVisionModel string
	LLMTimeout     time.Duration
	LLMMaxTokens   int64
	OutputDir      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Debug          bool
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *processor.Pipeline
	logger   *zap.Logger
}

// Option configures the server
type Option func(*Server)

// WithPipeline replaces the pipeline built from Config
func WithPipeline(p *processor.Pipeline) Option {
	return func(s *Server) {
		s.pipeline = p
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new API server
func NewServer(config *Config, opts ...Option) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: config,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.pipeline == nil {
		s.pipeline = newPipeline(config, s.logger)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(s.logger))
	router.Use(CORS())
	s.router = router

	s.setupRoutes()
	return s
}

func newPipeline(config *Config, logger *zap.Logger) *processor.Pipeline {
	opts := []processor.Option{
		processor.WithOutputDir(config.OutputDir),
		processor.WithLogger(logger),
	}

	// Image processing is only available with an API key
	if config.APIKey != "" {
		client := llm.NewClient(config.APIKey,
			llm.WithBaseURL(config.LLMBaseURL),
			llm.WithTimeout(config.LLMTimeout),
			llm.WithMaxTokens(config.LLMMaxTokens),
		)
		opts = append(opts, processor.WithExtractor(llm.NewExtractor(client,
			llm.WithModel(config.LLMVisionModel),
			llm.WithExtractorLogger(logger),
		)))
	}

	return processor.NewPipeline(opts...)
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/parse", s.handleParse)
		v1.POST("/convert", s.handleConvert)
		v1.POST("/validate", s.handleValidate)
		v1.POST("/process", s.handleProcess)
	}
}

// Run starts the HTTP server and shuts it down gracefully when ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("address", s.config.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"time":      time.Now().UTC().Format(time.RFC3339),
		"extractor": s.pipeline.HasExtractor(),
	})
}

func (s *Server) readBody(c *gin.Context) (string, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return "", false
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return "", false
	}
	return string(body), true
}

func (s *Server) handleParse(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	conv := s.pipeline.ConvertText(body)
	if len(conv.Records) == 0 && len(conv.Skipped) > 0 {
		c.JSON(http.StatusUnprocessableEntity, parseFailure(conv.Skipped[0]))
		return
	}

	c.JSON(http.StatusOK, ParseResponse{Records: conv.Records})
}

func (s *Server) handleConvert(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	conv := s.pipeline.ConvertText(body)
	if len(conv.Documents) == 0 && len(conv.Skipped) > 0 {
		c.JSON(http.StatusUnprocessableEntity, parseFailure(conv.Skipped[0]))
		return
	}

	resp := ConvertResponse{Documents: make(map[string]string, len(conv.Documents))}
	for num, doc := range conv.Documents {
		resp.Documents[num] = doc.String()
	}
	for _, err := range conv.Skipped {
		resp.Skipped = append(resp.Skipped, err.Error())
	}
	for _, verr := range conv.Unbalanced {
		resp.Unbalanced = append(resp.Unbalanced, verr.Error())
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleValidate(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	conv := s.pipeline.ConvertText(body)
	if len(conv.Records) == 0 && len(conv.Skipped) > 0 {
		c.JSON(http.StatusUnprocessableEntity, parseFailure(conv.Skipped[0]))
		return
	}

	resp := ValidationResponse{Valid: true, Results: make([]BalanceResult, 0, len(conv.Records))}
	for i := range conv.Records {
		rec := &conv.Records[i]
		res := BalanceResult{InvoiceNumber: rec.VoucherNumber(), Balanced: true}
		if verr := tally.CheckBalance(rec); verr != nil {
			res.Balanced = false
			res.Error = verr.Message
			resp.Valid = false
		}
		resp.Results = append(resp.Results, res)
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleProcess(c *gin.Context) {
	if !s.pipeline.HasExtractor() {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "image processing unavailable",
			Details: "no vision model API key configured",
		})
		return
	}

	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}
	if req.Image == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No image data provided"})
		return
	}

	data, err := DecodeImage(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image data", Details: err.Error()})
		return
	}

	name := filepath.Base(req.Filename)
	if req.Filename == "" || name == "." || name == string(filepath.Separator) {
		name = DefaultFilename
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Minute)
	defer cancel()

	result := s.pipeline.ProcessImage(ctx, data, name)

	resp := ProcessResponse{
		File:          result.File,
		Status:        string(result.Status),
		ExtractedData: result.Records,
		Warnings:      result.Warnings,
	}
	if result.Error != nil {
		resp.Error = result.Error.Error()
		_ = c.Error(result.Error)
	}
	if len(result.Documents) > 0 {
		resp.TallyXML = make(map[string]string, len(result.Documents))
		for num, doc := range result.Documents {
			resp.TallyXML[num] = doc.String()
		}
	}

	c.JSON(http.StatusOK, resp)
}

// DecodeImage decodes a base64 payload, accepting a data-URL prefix and
// missing padding.
func DecodeImage(s string) ([]byte, error) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[i+1:]
	}
	s = strings.Join(strings.Fields(s), "")
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("image is empty")
	}
	return data, nil
}

func parseFailure(err error) ParseErrorResponse {
	resp := ParseErrorResponse{Error: err.Error()}
	var perr *model.ParseError
	if errors.As(err, &perr) {
		resp.Reason = perr.Reason
		resp.Fragment = perr.Fragment
	}
	return resp
}

// Package server exposes the analyzer over HTTP.
package server

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/panbanda/codepulse/pkg/analyzer"
	"github.com/panbanda/codepulse/pkg/config"
)

//go:embed schema/analyze_request.json
var analyzeRequestSchema []byte

const requestIDHeader = "X-Request-ID"

// Error messages returned in the "error" field of 4xx responses.
const (
	msgNoCode      = "No code provided"
	msgInvalidBody = "Invalid request body"
	msgTooLarge    = "Request body too large"
)

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Server serves analyses over HTTP. Create one with New.
type Server struct {
	engine   *analyzer.Engine
	cfg      config.ServerConfig
	logger   *slog.Logger
	schema   *jsonschema.Schema
	registry *prometheus.Registry
	metrics  *metrics
	router   *gin.Engine
}

// Option is a functional option for configuring Server.
type Option func(*Server)

// WithConfig sets the listen address and body limit.
func WithConfig(cfg config.ServerConfig) Option {
	return func(s *Server) {
		s.cfg = cfg
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a server backed by engine.
func New(engine *analyzer.Engine, opts ...Option) (*Server, error) {
	s := &Server{
		engine:   engine,
		cfg:      config.DefaultConfig().Server,
		logger:   slog.New(slog.DiscardHandler),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	s.schema = schema
	s.metrics = newMetrics(s.registry)
	s.router = s.routes()
	return s, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(analyzeRequestSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to read request schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("analyze_request.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add request schema: %w", err)
	}
	schema, err := c.Compile("analyze_request.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile request schema: %w", err)
	}
	return schema, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.logRequests())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	r.POST("/api/analyze", s.handleAnalyze)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set("request_id", id)
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"request_id", c.GetString("request_id"),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	logger := s.logger.With("request_id", c.GetString("request_id"))

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: msgTooLarge})
			return
		}
		logger.Warn("failed to read body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidBody})
		return
	}

	req, status, resp := s.decode(body)
	if resp != nil {
		logger.Debug("rejected request", "error", resp.Error, "details", resp.Details)
		c.JSON(status, resp)
		return
	}

	start := time.Now()
	analysis := s.engine.AnalyzeContext(c.Request.Context(), req.Code, req.Language)
	lang := analysis.Language.String()

	outcome := "ok"
	if analysis.Degraded() {
		outcome = "parse_error"
	}
	s.metrics.analyses.WithLabelValues(lang, outcome).Inc()
	s.metrics.duration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	s.metrics.score.WithLabelValues(lang).Observe(float64(analysis.OverallScore))

	c.JSON(http.StatusOK, analysis)
}

// decode validates body against the request schema. On failure it returns
// the status and error body to send.
func (s *Server) decode(body []byte) (AnalyzeRequest, int, *ErrorResponse) {
	var req AnalyzeRequest

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return req, http.StatusBadRequest, &ErrorResponse{Error: msgInvalidBody}
	}

	obj, ok := inst.(map[string]any)
	if !ok {
		return req, http.StatusBadRequest, &ErrorResponse{Error: msgInvalidBody}
	}
	if code, present := obj["code"]; !present || code == nil || code == "" {
		return req, http.StatusBadRequest, &ErrorResponse{Error: msgNoCode}
	}

	if err := s.schema.Validate(inst); err != nil {
		return req, http.StatusBadRequest, &ErrorResponse{Error: msgInvalidBody, Details: err.Error()}
	}

	req.Code, _ = obj["code"].(string)
	// A null language falls back to the default like an absent one.
	req.Language, _ = obj["language"].(string)
	return req, 0, nil
}

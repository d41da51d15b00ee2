// Package http provides the HTTP API for geoextract.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/geoextract/internal/document"
	"github.com/fyrsmithlabs/geoextract/internal/logging"
	"github.com/fyrsmithlabs/geoextract/internal/service"
)

// Client-facing error messages.
const (
	MsgMissingText    = `Missing "text" parameter.`
	MsgDecodingError  = "Decoding error. Data must be encoded as UTF-8."
	MsgUnknownFormat  = `Unknown "format"; use "text" or "html".`
	MsgUploadTooLarge = "Upload too large."
)

var errMissingText = errors.New("missing text parameter")

// Extractor finds locations in a decoded document.
type Extractor = service.Extractor

// Server provides HTTP endpoints for geoextract.
type Server struct {
	echo    *echo.Echo
	service *service.Service
	logger  *zap.Logger
	config  *Config
}

// Config holds HTTP server configuration.
//
// RateLimit is in requests per second per client IP; zero disables it.
type Config struct {
	Host           string
	Port           int
	MaxUploadBytes int64
	RateLimit      float64
	Version        string

	// Meter receives the request metrics. Nil uses the global provider.
	Meter metric.Meter
}

// DefaultConfig returns the settings used when NewServer gets a nil config.
func DefaultConfig() *Config {
	return &Config{
		Host:           "127.0.0.1",
		Port:           5000,
		MaxUploadBytes: 1 << 20,
		Version:        "dev",
	}
}

// NewServer creates a new HTTP server.
func NewServer(ex Extractor, logger *zap.Logger, cfg *Config) (*Server, error) {
	if ex == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive, got %d", cfg.MaxUploadBytes)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
			c.SetRequest(req.WithContext(logging.WithRequestID(ctx, id)))
		},
	}))
	e.Use(accessLog(logger))
	e.Use(newRequestMetrics(cfg.Meter, logger).middleware())
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     int(math.Ceil(cfg.RateLimit)),
				ExpiresIn: 3 * time.Minute,
			}),
		}))
	}

	s := &Server{
		echo:    e,
		service: service.New(ex, logger),
		logger:  logger,
		config:  cfg,
	}
	s.registerRoutes()

	return s, nil
}

func accessLog(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}


			fields := append(logging.ContextFields(c.Request().Context()),
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Int64("bytes_in", c.Request().ContentLength),
				zap.Duration("duration", time.Since(start)),
			)
			logger.Info("http request", fields...)

			return err
		}
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/extract", s.handleExtract)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.String(http.StatusOK, "GeoExtract "+s.config.Version)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleExtract takes a multipart upload in field "text" (a plain form value
// is accepted too) and an optional "format" of text or html, and responds
// with the JSON array of locations.
func (s *Server) handleExtract(c echo.Context) error {
	req := c.Request()
	if req.ContentLength > s.config.MaxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, MsgUploadTooLarge)
	}
	req.Body = http.MaxBytesReader(c.Response(), req.Body, s.config.MaxUploadBytes)

	data, name, err := readText(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, MsgUploadTooLarge)
		case errors.Is(err, errMissingText):
			return echo.NewHTTPError(http.StatusBadRequest, MsgMissingText)
		}
		s.logger.Warn("invalid extract request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if !logging.ValidID(name) {
		name = uuid.NewString()
	}
	ctx := logging.WithDocumentID(req.Context(), name)

	locs, err := s.service.Extract(ctx, data, c.FormValue("format"))
	switch {
	case errors.Is(err, document.ErrNotUTF8):
		return echo.NewHTTPError(http.StatusBadRequest, MsgDecodingError)
	case errors.Is(err, document.ErrUnknownFormat):
		return echo.NewHTTPError(http.StatusBadRequest, MsgUnknownFormat)
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "extraction failed").SetInternal(err)
	}

	return c.JSON(http.StatusOK, locs)
}

// readText returns the uploaded document and its file name.
func readText(c echo.Context) ([]byte, string, error) {
	fh, err := c.FormFile("text")
	if err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		return data, fh.Filename, err
	}
	if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return nil, "", err
	}
	if v := c.FormValue("text"); v != "" {
		return []byte(v), "", nil
	}
	return nil, "", errMissingText
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

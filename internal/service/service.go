// Package service decodes uploaded documents and runs them through an
// extractor with tracing, metrics and correlated logging. The HTTP and MCP
// surfaces share it.
package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/geoextract/internal/document"
	"github.com/fyrsmithlabs/geoextract/internal/location"
	"github.com/fyrsmithlabs/geoextract/internal/logging"
)

const instrumentationName = "github.com/fyrsmithlabs/geoextract/internal/service"

// SpanName names the span around one document extraction.
const SpanName = "geoextract.extract"

// Extractor finds locations in a decoded document. *pipeline.Pipeline and
// *reload.Watcher satisfy it.
type Extractor interface {
	Extract(document string) []location.Location
}

// Service wraps an Extractor.
type Service struct {
	ex     Extractor
	logger *zap.Logger
	tracer trace.Tracer

	documents metric.Int64Counter
	failures  metric.Int64Counter
	duration  metric.Float64Histogram
	found     metric.Int64Histogram
}

// New creates a Service using the global otel providers.
func New(ex Extractor, logger *zap.Logger) *Service {
	return NewWithProviders(ex, logger, otel.GetTracerProvider(), otel.GetMeterProvider())
}

// NewWithProviders creates a Service using explicit otel providers.
func NewWithProviders(ex Extractor, logger *zap.Logger, tp trace.TracerProvider, mp metric.MeterProvider) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		ex:     ex,
		logger: logger,
		tracer: tp.Tracer(instrumentationName),
	}
	s.initMetrics(mp.Meter(instrumentationName))
	return s
}

func (s *Service) initMetrics(meter metric.Meter) {
	var err error

	s.documents, err = meter.Int64Counter(
		"geoextract.documents",
		metric.WithDescription("Documents processed, labeled by format."),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		s.logger.Warn("failed to create documents counter", zap.Error(err))
	}

	s.failures, err = meter.Int64Counter(
		"geoextract.document_errors",
		metric.WithDescription("Documents rejected during decoding, labeled by format."),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		s.logger.Warn("failed to create errors counter", zap.Error(err))
	}

	s.duration, err = meter.Float64Histogram(
		"geoextract.extract_duration",
		metric.WithDescription("Time spent extracting locations from one document."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		s.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	s.found, err = meter.Int64Histogram(
		"geoextract.locations_per_document",
		metric.WithDescription("Locations returned per document."),
		metric.WithUnit("{location}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 5, 10, 25, 50, 100),
	)
	if err != nil {
		s.logger.Warn("failed to create locations histogram", zap.Error(err))
	}
}

// Extract decodes data in the given format (document.FormatText when empty)
// and returns the locations found. Decoding errors wrap document.ErrNotUTF8
// or document.ErrUnknownFormat.
func (s *Service) Extract(ctx context.Context, data []byte, format string) ([]location.Location, error) {
	if format == "" {
		format = document.FormatText
	}
	attrs := metric.WithAttributes(attribute.String("format", format))

	ctx, span := s.tracer.Start(ctx, SpanName, trace.WithAttributes(
		attribute.String("geoextract.format", format),
		attribute.Int("geoextract.document_bytes", len(data)),
	))
	defer span.End()

	text, err := document.Load(data, format)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		if s.failures != nil {
			s.failures.Add(ctx, 1, attrs)
		}
		s.logger.Info("document rejected", append(logging.ContextFields(ctx),
			zap.String("format", format),
			zap.Error(err),
		)...)
		return nil, err
	}

	start := time.Now()
	locs := s.ex.Extract(text)
	elapsed := time.Since(start)

	span.SetAttributes(attribute.Int("geoextract.locations", len(locs)))
	if s.documents != nil {
		s.documents.Add(ctx, 1, attrs)
	}
	if s.duration != nil {
		s.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
	if s.found != nil {
		s.found.Record(ctx, int64(len(locs)), attrs)
	}

	s.logger.Debug("document processed", append(logging.ContextFields(ctx),
		zap.String("format", format),
		zap.Int("bytes", len(data)),
		zap.Int("locations", len(locs)),
		zap.Duration("duration", elapsed),
	)...)

	if locs == nil {
		locs = []location.Location{}
	}
	return locs, nil
}

package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/geoextract/internal/http"

// requestMetrics are the OpenTelemetry instruments of the HTTP surface.
// Instruments that fail to register are skipped.
type requestMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	upload   metric.Int64Histogram
	inFlight metric.Int64UpDownCounter
}

func newRequestMetrics(meter metric.Meter, logger *zap.Logger) *requestMetrics {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	warn := func(name string, err error) {
		if err != nil {
			logger.Warn("failed to create instrument", zap.String("instrument", name), zap.Error(err))
		}
	}

	m := &requestMetrics{}
	var err error
	m.requests, err = meter.Int64Counter("geoextract.http.requests",
		metric.WithDescription("HTTP requests by method, route and status"),
		metric.WithUnit("{request}"))
	warn("requests", err)
	m.duration, err = meter.Float64Histogram("geoextract.http.request.duration",
		metric.WithDescription("HTTP request duration by method, route and status"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10))
	warn("request.duration", err)
	// Bounded by MaxUploadBytes on the extract route.
	m.upload, err = meter.Int64Histogram("geoextract.http.request.body.size",
		metric.WithDescription("Declared Content-Length of HTTP requests"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(1e3, 1e4, 5e4, 1e5, 2.5e5, 5e5, 1e6))
	warn("request.body.size", err)
	m.inFlight, err = meter.Int64UpDownCounter("geoextract.http.in_flight",
		metric.WithDescription("HTTP requests in progress"),
		metric.WithUnit("{request}"))
	warn("in_flight", err)
	return m
}

// middleware records every request. Handler errors are rendered first so
// the recorded status is the one the client sees.
func (m *requestMetrics) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			ctx := req.Context()

			if m.inFlight != nil {
				m.inFlight.Add(ctx, 1)
				defer m.inFlight.Add(ctx, -1)
			}

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			attrs := metric.WithAttributes(
				attribute.String("method", req.Method),
				attribute.String("route", routeLabel(c.Path())),
				attribute.Int("status", c.Response().Status),
			)
			if m.requests != nil {
				m.requests.Add(ctx, 1, attrs)
			}
			if m.duration != nil {
				m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
			}
			if m.upload != nil && req.ContentLength > 0 {
				m.upload.Record(ctx, req.ContentLength, attrs)
			}
			return err
		}
	}
}

// routeLabel keeps unmatched paths from becoming distinct label values.
func routeLabel(path string) string {
	if path == "" {
		return "unmatched"
	}
	return path
}

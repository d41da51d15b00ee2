package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Telemetry owns the trace and meter providers of a geoextract process.
// A provider that fails to start is left out and the instance reports
// itself degraded; extraction keeps working either way.
type Telemetry struct {
	config *Config

	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider

	closed  atomic.Bool
	lastErr atomic.Pointer[error]
}

// Status describes the state of a Telemetry instance.
type Status struct {
	Enabled  bool   `json:"enabled"`
	Degraded bool   `json:"degraded"`
	Error    string `json:"error,omitempty"`
}

// Option overrides provider construction.
type Option func(*options)

type options struct {
	spanExporter trace.SpanExporter
	metricReader sdkmetric.Reader
}

// WithSpanExporter replaces the OTLP trace exporter.
func WithSpanExporter(exp trace.SpanExporter) Option {
	return func(o *options) { o.spanExporter = exp }
}

// WithMetricReader replaces the periodic OTLP metric reader.
func WithMetricReader(r sdkmetric.Reader) Option {
	return func(o *options) { o.metricReader = r }
}

// New starts the providers described by cfg and installs them as the otel
// globals, together with the W3C trace context propagator. A disabled
// config yields an instance that only hands out the global providers.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}
	t := &Telemetry{config: cfg}
	if !cfg.Enabled {
		return t, nil
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	res := newResource(cfg)
	if tp, err := newTracerProvider(ctx, cfg, res, &o); err != nil {
		t.setDegraded("tracer provider failed: %w", err)
	} else {
		t.tracerProvider = tp
		otel.SetTracerProvider(tp)
	}
	if mp, err := newMeterProvider(ctx, cfg, res, &o); err != nil {
		t.setDegraded("meter provider failed: %w", err)
	} else if mp != nil {
		t.meterProvider = mp
		otel.SetMeterProvider(mp)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return t, nil
}

// Tracer returns a tracer from the owned provider, or from the global one
// when tracing is not running.
func (t *Telemetry) Tracer(name string, opts ...oteltrace.TracerOption) oteltrace.Tracer {
	if t == nil || t.tracerProvider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return t.tracerProvider.Tracer(name, opts...)
}

// Meter returns a meter from the owned provider, or from the global one
// when metric export is not running.
func (t *Telemetry) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if t == nil || t.meterProvider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return t.meterProvider.Meter(name, opts...)
}

// Shutdown flushes and stops the providers. Without a deadline on ctx the
// configured shutdown timeout applies.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok && t.config != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Shutdown.Timeout.Duration())
		defer cancel()
	}
	return t.each(
		func() error { return t.tracerProvider.Shutdown(ctx) },
		func() error { return t.meterProvider.Shutdown(ctx) },
		"shutdown")
}

// ForceFlush exports everything buffered so far.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.each(
		func() error { return t.tracerProvider.ForceFlush(ctx) },
		func() error { return t.meterProvider.ForceFlush(ctx) },
		"flush")
}

// each runs the trace and meter operations for the providers that exist.
func (t *Telemetry) each(traces, metrics func() error, op string) error {
	var errs []error
	if t.tracerProvider != nil {
		if err := traces(); err != nil {
			errs = append(errs, fmt.Errorf("trace %s: %w", op, err))
		}
	}
	if t.meterProvider != nil {
		if err := metrics(); err != nil {
			errs = append(errs, fmt.Errorf("meter %s: %w", op, err))
		}
	}
	return errors.Join(errs...)
}

// Status reports whether export is running and the last start failure.
func (t *Telemetry) Status() Status {
	if t == nil || t.config == nil {
		return Status{}
	}
	s := Status{Enabled: t.config.Enabled && !t.closed.Load()}
	if err := t.LastError(); err != nil {
		s.Degraded = true
		s.Error = err.Error()
	}
	return s
}

// LastError returns the most recent provider start failure.
func (t *Telemetry) LastError() error {
	if t == nil {
		return nil
	}
	if err := t.lastErr.Load(); err != nil {
		return *err
	}
	return nil
}

func (t *Telemetry) setDegraded(format string, args ...any) {
	err := fmt.Errorf(format, args...)
	t.lastErr.Store(&err)
}

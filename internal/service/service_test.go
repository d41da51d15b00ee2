package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/fyrsmithlabs/geoextract/internal/document"
	"github.com/fyrsmithlabs/geoextract/internal/location"
	"github.com/fyrsmithlabs/geoextract/internal/logging"
)

// wordExtractor returns a location for every known word in the document.
type wordExtractor struct {
	seen []string
}

func (w *wordExtractor) Extract(doc string) []location.Location {
	w.seen = append(w.seen, doc)
	var out []location.Location
	for _, word := range strings.Fields(doc) {
		if word == "Rathaus" || word == "Bahnhof" {
			out = append(out, location.Location{"name": word})
		}
	}
	return out
}

type fixture struct {
	svc    *Service
	ex     *wordExtractor
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *logging.TestLogger
}

func newFixture() *fixture {
	f := &fixture{
		ex:     &wordExtractor{},
		spans:  tracetest.NewSpanRecorder(),
		reader: sdkmetric.NewManualReader(),
		logs:   logging.NewTestLogger(),
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(f.spans))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(f.reader))
	f.svc = NewWithProviders(f.ex, f.logs.Underlying(), tp, mp)
	return f
}

func (f *fixture) sum(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			var total int64
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	return 0
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
		want   []location.Location
		input  string
	}{
		{
			name:  "plain text",
			data:  "Treffpunkt Rathaus",
			want:  []location.Location{{"name": "Rathaus"}},
			input: "Treffpunkt Rathaus",
		},
		{
			name:   "html",
			data:   "<html><head><title>Bahnhof</title></head><body><p>vor dem Rathaus</p></body></html>",
			format: document.FormatHTML,
			want:   []location.Location{{"name": "Rathaus"}},
			input:  "vor dem Rathaus",
		},
		{
			name:  "byte order mark",
			data:  "\xEF\xBB\xBFBahnhof",
			want:  []location.Location{{"name": "Bahnhof"}},
			input: "Bahnhof",
		},
		{
			name:  "nothing found",
			data:  "nichts",
			want:  []location.Location{},
			input: "nichts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			got, err := f.svc.Extract(context.Background(), []byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.Len(t, f.ex.seen, 1)
			assert.Equal(t, tt.input, strings.TrimSpace(f.ex.seen[0]))
		})
	}
}

func TestExtract_DecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		format  string
		wantErr error
	}{
		{"invalid utf-8", []byte{'a', 0xff, 'b'}, "", document.ErrNotUTF8},
		{"unknown format", []byte("Rathaus"), "pdf", document.ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Extract(context.Background(), tt.data, tt.format)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.ex.seen)

			spans := f.spans.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, codes.Error, spans[0].Status().Code)
			assert.Equal(t, int64(1), f.sum(t, "geoextract.document_errors"))
			assert.Equal(t, int64(0), f.sum(t, "geoextract.documents"))
		})
	}
}

func TestExtract_Instrumentation(t *testing.T) {
	f := newFixture()
	ctx := logging.WithRequestID(context.Background(), "req-1")

	_, err := f.svc.Extract(ctx, []byte("Rathaus und Bahnhof"), "")
	require.NoError(t, err)

	spans := f.spans.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanName, spans[0].Name())
	attrs := map[string]any{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "text", attrs["geoextract.format"])
	assert.Equal(t, int64(19), attrs["geoextract.document_bytes"])
	assert.Equal(t, int64(2), attrs["geoextract.locations"])

	assert.Equal(t, int64(1), f.sum(t, "geoextract.documents"))
	f.logs.AssertField(t, "document processed", "request.id", "req-1")
	f.logs.AssertField(t, "document processed", "locations", int64(2))
}

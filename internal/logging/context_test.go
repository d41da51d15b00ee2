package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestContextFields_Empty(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))
}

func TestContextFields_Correlation(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})

	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithRequestID(ctx, "req-123")
	ctx = WithDocumentID(ctx, "letter.txt")

	got := map[string]any{}
	for _, f := range ContextFields(ctx) {
		if f.Interface != nil {
			got[f.Key] = f.Interface
		} else if f.String != "" {
			got[f.Key] = f.String
		} else {
			got[f.Key] = f.Integer
		}
	}

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", got["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", got["span_id"])
	assert.Equal(t, int64(1), got["trace_sampled"])
	assert.Equal(t, "req-123", got["request.id"])
	assert.Equal(t, "letter.txt", got["document.id"])
}

func TestWithIDs_InvalidIgnored(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"spaces", "has spaces"},
		{"newline", "a\nb"},
		{"too long", strings.Repeat("a", maxIDLen+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithRequestID(context.Background(), tt.id)
			ctx = WithDocumentID(ctx, tt.id)
			assert.Empty(t, RequestIDFromContext(ctx))
			assert.Empty(t, DocumentIDFromContext(ctx))
		})
	}
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("9b2f6c1e-2a0d-4c57-9b55-1f0b8d1b7c11"))
	assert.True(t, ValidID("scans/2024/page_01.txt"))
	assert.False(t, ValidID("x y"))
}

func TestLoggerInContext(t *testing.T) {
	logger := NewTestLogger()
	ctx := WithLogger(context.Background(), logger.Logger)
	assert.Same(t, logger.Logger, FromContext(ctx))

	nop := FromContext(context.Background())
	assert.NotNil(t, nop)
	nop.Info(ctx, "discarded")
	assert.Empty(t, logger.All())
}

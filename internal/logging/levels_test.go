package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"trace", TraceLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LevelFromString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeLevel(t *testing.T) {
	enc := &sliceEncoder{}
	encodeLevel(TraceLevel, enc)
	encodeLevel(zapcore.WarnLevel, enc)
	assert.Equal(t, []string{"trace", "warn"}, enc.elems)
}

type sliceEncoder struct {
	zapcore.PrimitiveArrayEncoder
	elems []string
}

func (s *sliceEncoder) AppendString(v string) { s.elems = append(s.elems, v) }

package logging

import (
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// TruncatingEncoder wraps a zapcore.Encoder and shortens string values
// longer than a byte limit, so document text attached to an entry cannot
// flood the log.
type TruncatingEncoder struct {
	zapcore.Encoder
	max int
}

// NewTruncatingEncoder wraps base. A max of zero or less disables
// truncation.
func NewTruncatingEncoder(base zapcore.Encoder, max int) *TruncatingEncoder {
	return &TruncatingEncoder{Encoder: base, max: max}
}

// Truncate cuts s to at most max bytes on a rune boundary and appends a
// marker with the number of dropped bytes.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...[+" + strconv.Itoa(len(s)-cut) + " bytes]"
}

// AddString truncates long values.
func (e *TruncatingEncoder) AddString(key, val string) {
	e.Encoder.AddString(key, Truncate(val, e.max))
}

// AddByteString truncates long values.
func (e *TruncatingEncoder) AddByteString(key string, val []byte) {
	if e.max > 0 && len(val) > e.max {
		e.Encoder.AddString(key, Truncate(string(val), e.max))
		return
	}
	e.Encoder.AddByteString(key, val)
}

// Clone creates a copy of the encoder.
func (e *TruncatingEncoder) Clone() zapcore.Encoder {
	return &TruncatingEncoder{Encoder: e.Encoder.Clone(), max: e.max}
}

// EncodeEntry truncates string fields before delegating. Fields passed to a
// log call reach the encoder here rather than through AddString.
func (e *TruncatingEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	if e.max <= 0 {
		return e.Encoder.EncodeEntry(ent, fields)
	}
	copied := false
	for i, f := range fields {
		if f.Type != zapcore.StringType || len(f.String) <= e.max {
			continue
		}
		if !copied {
			fields = append([]zapcore.Field(nil), fields...)
			copied = true
		}
		fields[i].String = Truncate(f.String, e.max)
	}
	return e.Encoder.EncodeEntry(ent, fields)
}

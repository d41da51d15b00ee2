package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fyrsmithlabs/geoextract/internal/location"
)

func TestKeyFilter(t *testing.T) {
	f := NewKeyFilter("a", "b")

	tests := []struct {
		in   location.Location
		want location.Location
	}{
		{location.Location{}, location.Location{}},
		{location.Location{"a": 1}, location.Location{"a": 1}},
		{location.Location{"a": 1, "b": 2}, location.Location{"a": 1, "b": 2}},
		{location.Location{"a": 1, "b": 2, "c": 3}, location.Location{"a": 1, "b": 2}},
		{location.Location{"c": 3}, location.Location{}},
	}

	for _, tt := range tests {
		got, keep := f.Postprocess(tt.in)
		assert.True(t, keep)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, []string{"a", "b"}, f.Keys())
}

func TestKeyFilter_DoesNotModifyInput(t *testing.T) {
	in := location.Location{"a": 1, "c": 3}
	_, _ = NewKeyFilter("a").Postprocess(in)
	assert.Equal(t, location.Location{"a": 1, "c": 3}, in)
}

func TestDropEmpty(t *testing.T) {
	_, keep := DropEmpty{}.Postprocess(location.Location{})
	assert.False(t, keep)
	_, keep = DropEmpty{}.Postprocess(location.Location{"a": 1})
	assert.True(t, keep)
}

func TestFunc(t *testing.T) {
	upper := Func(func(loc location.Location) (location.Location, bool) {
		loc["seen"] = true
		return loc, loc["name"] != "drop"
	})

	got, keep := upper.Postprocess(location.Location{"name": "x"})
	assert.True(t, keep)
	assert.Equal(t, true, got["seen"])

	_, keep = upper.Postprocess(location.Location{"name": "drop"})
	assert.False(t, keep)
}

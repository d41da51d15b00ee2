// Package postprocess transforms or drops pipeline results after
// deduplication.
package postprocess

import (
	"github.com/fyrsmithlabs/geoextract/internal/location"
)

// Postprocessor receives each result in order. Returning false drops the
// location.
type Postprocessor interface {
	Postprocess(loc location.Location) (location.Location, bool)
}

// Func adapts a plain function to the Postprocessor interface.
type Func func(location.Location) (location.Location, bool)

// Postprocess calls f(loc).
func (f Func) Postprocess(loc location.Location) (location.Location, bool) {
	return f(loc)
}

// KeyFilter keeps only the configured attributes of each location.
type KeyFilter struct {
	keys []string
}

// NewKeyFilter returns a filter keeping keys.
func NewKeyFilter(keys ...string) *KeyFilter {
	return &KeyFilter{keys: keys}
}

// Keys returns the retained attribute names.
func (f *KeyFilter) Keys() []string {
	return f.keys
}

// Postprocess implements Postprocessor. It never drops a location.
func (f *KeyFilter) Postprocess(loc location.Location) (location.Location, bool) {
	out := make(location.Location, len(f.keys))
	for _, k := range f.keys {
		if v, ok := loc[k]; ok {
			out[k] = v
		}
	}
	return out, true
}

// DropEmpty drops locations without attributes, e.g. after a KeyFilter.
type DropEmpty struct{}

// Postprocess implements Postprocessor.
func (DropEmpty) Postprocess(loc location.Location) (location.Location, bool) {
	return loc, len(loc) > 0
}

var (
	_ Postprocessor = (*KeyFilter)(nil)
	_ Postprocessor = DropEmpty{}
)

// Package location defines the location record and the registry of known
// locations that extraction results are resolved against.
package location

import (
	"errors"
	"fmt"
)

// Attribute keys with a fixed meaning.
const (
	KeyName        = "name"
	KeyStreet      = "street"
	KeyHouseNumber = "house_number"
	KeyPostcode    = "postcode"
	KeyCity        = "city"
	KeyType        = "type"
	KeyAliases     = "aliases"
)

// ErrMissingName is returned when a location record has no usable name.
var ErrMissingName = errors.New("location has no name")

// Location is a flat attribute map. Every registry entry carries a string
// "name"; extraction results may carry any subset of the address keys.
type Location map[string]any

// Name returns the "name" attribute if it is a string.
func (l Location) Name() (string, bool) {
	return l.String(KeyName)
}

// String returns the attribute stored under key if it is a string.
func (l Location) String(key string) (string, bool) {
	v, ok := l[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Aliases returns the alternative names of the location in declaration order.
// Non-string entries are skipped.
func (l Location) Aliases() []string {
	switch v := l[KeyAliases].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, a := range v {
			if s, ok := a.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Clone returns a shallow copy of the location.
func (l Location) Clone() Location {
	out := make(Location, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Validate checks that the location carries a non-empty string name.
func (l Location) Validate() error {
	name, ok := l.Name()
	if !ok || name == "" {
		return fmt.Errorf("%w: %v", ErrMissingName, l)
	}
	return nil
}

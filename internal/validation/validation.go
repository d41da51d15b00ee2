// Package validation decides which extracted candidates are kept.
package validation

import (
	"github.com/fyrsmithlabs/geoextract/internal/location"
)

// Validator accepts or rejects the attributes of a candidate after they have
// been augmented with registry data.
type Validator interface {
	Validate(attrs location.Location) bool
}

// AcceptAll accepts every candidate. Use it to disable validation.
type AcceptAll struct{}

// Validate returns true.
func (AcceptAll) Validate(location.Location) bool { return true }

// Func adapts a plain function to the Validator interface.
type Func func(location.Location) bool

// Validate calls f(attrs).
func (f Func) Validate(attrs location.Location) bool { return f(attrs) }

// typedFields must name a registry location whose type equals the field.
var typedFields = []string{location.KeyStreet, location.KeyCity}

// NameValidator accepts candidates that carry a name. Otherwise every street
// or city attribute must be the canonical name of a known location of
// matching type.
type NameValidator struct {
	registry *location.Registry
}

// NewNameValidator returns a validator that knows no locations until Setup
// is called.
func NewNameValidator() *NameValidator {
	return &NameValidator{}
}

// Setup stores the registry used for lookups.
func (v *NameValidator) Setup(reg *location.Registry) error {
	v.registry = reg
	return nil
}

// Validate implements Validator.
func (v *NameValidator) Validate(attrs location.Location) bool {
	if _, ok := attrs[location.KeyName]; ok {
		return true
	}
	for _, field := range typedFields {
		value, ok := attrs[field]
		if !ok {
			continue
		}
		name, ok := value.(string)
		if !ok || v.registry == nil {
			return false
		}
		loc, ok := v.registry.Lookup(name)
		if !ok {
			return false
		}
		if typ, _ := loc.String(location.KeyType); typ != field {
			return false
		}
	}
	return true
}

var (
	_ Validator = AcceptAll{}
	_ Validator = (*NameValidator)(nil)
)

package location

import "fmt"

// NormalizeFunc maps a raw name to its normalized lookup key.
type NormalizeFunc func(string) string

// Registry indexes locations by canonical name and by normalized name or
// alias. It is read-only after construction and safe for concurrent use.
type Registry struct {
	byName       map[string]Location
	byNormalized map[string]Location
	// normalized keys in first-registration order
	keys []string
}

// NewRegistry builds a registry from locs. Later locations replace earlier
// ones with the same name, and a later name or alias replaces an earlier
// entry with the same normalized form.
func NewRegistry(locs []Location, normalize NormalizeFunc) (*Registry, error) {
	if normalize == nil {
		normalize = func(s string) string { return s }
	}

	r := &Registry{
		byName:       make(map[string]Location, len(locs)),
		byNormalized: make(map[string]Location, len(locs)),
	}

	for i, loc := range locs {
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("location %d: %w", i, err)
		}
		loc = loc.Clone()
		name, _ := loc.Name()
		r.byName[name] = loc

		r.register(normalize(name), loc)
		for _, alias := range loc.Aliases() {
			r.register(normalize(alias), loc)
		}
	}

	return r, nil
}

func (r *Registry) register(key string, loc Location) {
	if _, exists := r.byNormalized[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.byNormalized[key] = loc
}

// Lookup returns a copy of the location with the given canonical name.
func (r *Registry) Lookup(name string) (Location, bool) {
	loc, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return loc.Clone(), true
}

// LookupNormalized returns a copy of the location registered under the
// normalized name or alias.
func (r *Registry) LookupNormalized(normalized string) (Location, bool) {
	loc, ok := r.byNormalized[normalized]
	if !ok {
		return nil, false
	}
	return loc.Clone(), true
}

// NormalizedNames returns every normalized name and alias once.
func (r *Registry) NormalizedNames() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of distinct canonical names.
func (r *Registry) Len() int {
	return len(r.byName)
}

// Locations returns copies of all locations keyed by canonical name.
func (r *Registry) Locations() map[string]Location {
	out := make(map[string]Location, len(r.byName))
	for name, loc := range r.byName {
		out[name] = loc.Clone()
	}
	return out
}

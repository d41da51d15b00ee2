package extraction

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrUnknownBlock is returned when a template references an undefined block.
var ErrUnknownBlock = errors.New("unknown template block")

var placeholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// DefaultBlocks returns the building blocks of German-style addresses: a
// house number with optional suffix or range (12, 12c, 12-23), a five digit
// postcode, a street of letters and single spaces and a one-word city.
func DefaultBlocks() map[string]string {
	return map[string]string{
		"house_number": `[1-9]\d*[\pL\d-]*`,
		"postcode":     `\d{5}`,
		"street":       `\pL(?:\pL| )*\pL`,
		"city":         `\pL+`,
	}
}

// DefaultTemplates returns the default address templates, most specific
// first.
func DefaultTemplates() []string {
	return []string{
		"{street} {house_number} {postcode} {city}",
		"{street} {house_number}",
	}
}

// CompileTemplate turns every {block} of tmpl into a named group holding the
// block's expression and anchors the result at both ends.
func CompileTemplate(blocks map[string]string, tmpl string) (*regexp.Regexp, error) {
	var missing error
	expanded := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := m[1 : len(m)-1]
		expr, ok := blocks[name]
		if !ok {
			if missing == nil {
				missing = fmt.Errorf("%w %q in template %q", ErrUnknownBlock, name, tmpl)
			}
			return m
		}
		return "(?P<" + name + ">" + expr + ")"
	})
	if missing != nil {
		return nil, missing
	}

	re, err := regexp.Compile("^" + expanded + "$")
	if err != nil {
		return nil, fmt.Errorf("invalid template %q: %w", tmpl, err)
	}
	return re, nil
}

// CompileTemplates compiles templates in order.
func CompileTemplates(blocks map[string]string, templates []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(templates))
	for _, tmpl := range templates {
		re, err := CompileTemplate(blocks, tmpl)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

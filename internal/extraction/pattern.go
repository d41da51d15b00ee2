package extraction

import (
	"regexp"

	"github.com/fyrsmithlabs/geoextract/internal/location"
)

// PatternExtractor matches regular expressions against word windows. Each
// pattern that matches a window yields one candidate whose attributes are
// the named groups that took part in the match.
type PatternExtractor struct {
	*WindowExtractor
	patterns []*regexp.Regexp
}

// NewPatternExtractor returns an extractor for patterns over windows of
// minWords to maxWords words.
func NewPatternExtractor(patterns []*regexp.Regexp, minWords, maxWords int) (*PatternExtractor, error) {
	e := &PatternExtractor{patterns: patterns}
	w, err := NewWindowExtractor(minWords, maxWords, e.match)
	if err != nil {
		return nil, err
	}
	e.WindowExtractor = w
	return e, nil
}

// Patterns returns the compiled patterns in evaluation order.
func (e *PatternExtractor) Patterns() []*regexp.Regexp {
	return e.patterns
}

func (e *PatternExtractor) match(window string) []location.Location {
	var out []location.Location
	for _, re := range e.patterns {
		idx := re.FindStringSubmatchIndex(window)
		if idx == nil {
			continue
		}
		attrs := location.Location{}
		for i, name := range re.SubexpNames() {
			if name == "" || idx[2*i] < 0 {
				continue
			}
			attrs[name] = window[idx[2*i]:idx[2*i+1]]
		}
		out = append(out, attrs)
	}
	return out
}

var _ Extractor = (*PatternExtractor)(nil)

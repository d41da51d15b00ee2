package extraction

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fyrsmithlabs/geoextract/internal/location"
)

// NameExtractor finds the normalized names and aliases of known locations
// as complete words.
type NameExtractor struct {
	matcher Matcher
}

// NewNameExtractor returns an extractor that finds nothing until Setup is
// called.
func NewNameExtractor() *NameExtractor {
	return &NameExtractor{}
}

// Setup indexes the normalized names of reg.
func (e *NameExtractor) Setup(reg *location.Registry) error {
	names := reg.NormalizedNames()
	patterns := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		patterns = append(patterns, " "+name+" ")
	}
	e.matcher = NewAhoCorasickMatcher(patterns)
	return nil
}

// Extract implements Extractor. The text is padded with one space on each
// side so that names at the edges count as complete words.
func (e *NameExtractor) Extract(text string) []Candidate {
	if e.matcher == nil {
		return nil
	}

	matches := e.matcher.Search(" " + text + " ")
	if len(matches) == 0 {
		return nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})

	out := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(m.Pattern, " "), " ")
		out = append(out, Candidate{
			Start:  m.Start,
			Length: utf8.RuneCountInString(name),
			Attrs:  location.Location{location.KeyName: name},
		})
	}
	return out
}

var _ Extractor = (*NameExtractor)(nil)

package extraction

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/geoextract/internal/location"
)

// ErrInvalidWindow is returned for window sizes outside 1 <= min <= max.
var ErrInvalidWindow = errors.New("invalid window size")

// Default window sizes, in words.
const (
	DefaultMinWords = 2
	DefaultMaxWords = 7
)

// Candidate is a possible location found in a piece of text. Start and
// Length are rune offsets into the text the extractor was given.
type Candidate struct {
	Start  int               `json:"start"`
	Length int               `json:"length"`
	Attrs  location.Location `json:"attributes"`
}

// End returns the offset just past the candidate.
func (c Candidate) End() int {
	return c.Start + c.Length
}

// Extractor finds location candidates in a normalized text block.
type Extractor interface {
	Extract(text string) []Candidate
}

// Pattern is a configured address template.
type Pattern struct {
	Name     string `koanf:"name" json:"name"`
	Template string `koanf:"template" json:"template"`
}

// Config selects and configures the extractors of a pipeline.
type Config struct {
	// Names enables the name extractor.
	Names bool `koanf:"names" json:"names"`

	// Patterns enables the pattern extractor with the given templates.
	// Blocks extends or overrides DefaultBlocks.
	Patterns []Pattern         `koanf:"patterns" json:"patterns,omitempty"`
	Blocks   map[string]string `koanf:"blocks" json:"blocks,omitempty"`
	MinWords int               `koanf:"min_words" json:"min_words"`
	MaxWords int               `koanf:"max_words" json:"max_words"`
}

// DefaultConfig returns the name extractor plus the default address
// templates.
func DefaultConfig() Config {
	templates := DefaultTemplates()
	patterns := make([]Pattern, 0, len(templates))
	for i, tmpl := range templates {
		patterns = append(patterns, Pattern{Name: fmt.Sprintf("address_%d", i+1), Template: tmpl})
	}
	return Config{
		Names:    true,
		Patterns: patterns,
		MinWords: DefaultMinWords,
		MaxWords: DefaultMaxWords,
	}
}

func validateWindow(minWords, maxWords int) error {
	if minWords < 1 || maxWords < minWords {
		return fmt.Errorf("%w: min=%d max=%d", ErrInvalidWindow, minWords, maxWords)
	}
	return nil
}

package extraction

import (
	"fmt"
	"maps"
)

// NewExtractors builds the extractors selected by cfg. Extractors that need
// the registry still have to be set up by the caller.
func NewExtractors(cfg Config) ([]Extractor, error) {
	var out []Extractor
	if cfg.Names {
		out = append(out, NewNameExtractor())
	}

	if len(cfg.Patterns) > 0 {
		blocks := DefaultBlocks()
		maps.Copy(blocks, cfg.Blocks)

		templates := make([]string, 0, len(cfg.Patterns))
		for _, p := range cfg.Patterns {
			templates = append(templates, p.Template)
		}
		patterns, err := CompileTemplates(blocks, templates)
		if err != nil {
			return nil, err
		}

		minWords, maxWords := cfg.MinWords, cfg.MaxWords
		if minWords == 0 {
			minWords = DefaultMinWords
		}
		if maxWords == 0 {
			maxWords = DefaultMaxWords
		}
		ex, err := NewPatternExtractor(patterns, minWords, maxWords)
		if err != nil {
			return nil, fmt.Errorf("pattern extractor: %w", err)
		}
		out = append(out, ex)
	}

	if len(out) == 0 {
		out = append(out, NoOpExtractor{})
	}
	return out, nil
}

// NoOpExtractor finds nothing.
type NoOpExtractor struct{}

// Extract returns no candidates.
func (NoOpExtractor) Extract(string) []Candidate {
	return nil
}

var _ Extractor = NoOpExtractor{}

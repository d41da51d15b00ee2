package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/geoextract/internal/extraction"
	"github.com/fyrsmithlabs/geoextract/internal/normalize"
	"github.com/fyrsmithlabs/geoextract/internal/postprocess"
	"github.com/fyrsmithlabs/geoextract/internal/segment"
	"github.com/fyrsmithlabs/geoextract/internal/validation"
)

// Config is the file/environment form of Options.
type Config struct {
	Workers     int               `koanf:"workers" json:"workers"`
	Normalizer  NormalizerConfig  `koanf:"normalizer" json:"normalizer"`
	Splitter    SplitterConfig    `koanf:"splitter" json:"splitter"`
	Validation  ValidationConfig  `koanf:"validation" json:"validation"`
	Extraction  extraction.Config `koanf:"extraction" json:"extraction"`
	Postprocess PostprocessConfig `koanf:"postprocess" json:"postprocess"`
}

// NormalizerConfig configures the BasicNormalizer. Stem names a snowball
// language; empty disables stemming.
type NormalizerConfig struct {
	Enabled        bool                     `koanf:"enabled" json:"enabled"`
	Lowercase      bool                     `koanf:"lowercase" json:"lowercase"`
	ToASCII        bool                     `koanf:"to_ascii" json:"to_ascii"`
	RejoinLines    bool                     `koanf:"rejoin_lines" json:"rejoin_lines"`
	RemoveHyphens  bool                     `koanf:"remove_hyphens" json:"remove_hyphens"`
	RemoveSpecials bool                     `koanf:"remove_specials" json:"remove_specials"`
	Stem           string                   `koanf:"stem" json:"stem,omitempty"`
	Substitutions  []normalize.Substitution `koanf:"substitutions" json:"substitutions,omitempty"`
}

// SplitterConfig configures the WhitespaceSplitter.
type SplitterConfig struct {
	Enabled       bool `koanf:"enabled" json:"enabled"`
	MarginColumns int  `koanf:"margin_columns" json:"margin_columns"`
	MarginRows    int  `koanf:"margin_rows" json:"margin_rows"`
}

// ValidationConfig toggles the NameValidator.
type ValidationConfig struct {
	Enabled bool `koanf:"enabled" json:"enabled"`
}

// PostprocessConfig selects postprocessors. Keys enables a KeyFilter.
type PostprocessConfig struct {
	Keys      []string `koanf:"keys" json:"keys,omitempty"`
	DropEmpty bool     `koanf:"drop_empty" json:"drop_empty"`
}

// DefaultConfig enables every stage with the default settings, the default
// address templates and a street abbreviation substitution.
func DefaultConfig() Config {
	return Config{
		Workers: 1,
		Normalizer: NormalizerConfig{
			Enabled:        true,
			Lowercase:      true,
			ToASCII:        true,
			RejoinLines:    true,
			RemoveHyphens:  true,
			RemoveSpecials: true,
			Substitutions: []normalize.Substitution{
				{Pattern: `str\b`, Replacement: "strasse"},
			},
		},
		Splitter: SplitterConfig{
			Enabled:       true,
			MarginColumns: segment.DefaultMarginColumns,
			MarginRows:    segment.DefaultMarginRows,
		},
		Validation: ValidationConfig{Enabled: true},
		Extraction: extraction.DefaultConfig(),
		Postprocess: PostprocessConfig{
			Keys: []string{"name", "street", "house_number", "postcode", "city"},
		},
	}
}

// Validate checks value ranges. Component construction reports the rest.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Splitter.Enabled && (c.Splitter.MarginColumns < 1 || c.Splitter.MarginRows < 1) {
		return fmt.Errorf("splitter margins must be >= 1, got (%d, %d)",
			c.Splitter.MarginColumns, c.Splitter.MarginRows)
	}
	return nil
}

// Options builds the components described by c.
func (c Config) Options(logger *zap.Logger) (Options, error) {
	if err := c.Validate(); err != nil {
		return Options{}, err
	}

	opts := Options{Workers: c.Workers, Logger: logger}

	if c.Normalizer.Enabled {
		nopts := normalize.Options{
			Lowercase:      c.Normalizer.Lowercase,
			ToASCII:        c.Normalizer.ToASCII,
			RejoinLines:    c.Normalizer.RejoinLines,
			RemoveHyphens:  c.Normalizer.RemoveHyphens,
			RemoveSpecials: c.Normalizer.RemoveSpecials,
			Substitutions:  c.Normalizer.Substitutions,
		}
		if c.Normalizer.Stem != "" {
			stemmer, err := normalize.NewSnowballStemmer(c.Normalizer.Stem)
			if err != nil {
				return Options{}, err
			}
			nopts.Stemmer = stemmer
		}
		n, err := normalize.New(nopts)
		if err != nil {
			return Options{}, err
		}
		opts.Normalizer = n
	} else {
		opts.Normalizer = normalize.Identity{}
	}

	if c.Splitter.Enabled {
		s, err := segment.NewWhitespaceSplitter(c.Splitter.MarginColumns, c.Splitter.MarginRows)
		if err != nil {
			return Options{}, err
		}
		opts.Splitter = s
	} else {
		opts.Splitter = segment.Single{}
	}

	if c.Validation.Enabled {
		opts.Validator = validation.NewNameValidator()
	} else {
		opts.Validator = validation.AcceptAll{}
	}

	extractors, err := extraction.NewExtractors(c.Extraction)
	if err != nil {
		return Options{}, err
	}
	opts.Extractors = extractors

	if len(c.Postprocess.Keys) > 0 {
		opts.Postprocessors = append(opts.Postprocessors, postprocess.NewKeyFilter(c.Postprocess.Keys...))
	}
	if c.Postprocess.DropEmpty {
		opts.Postprocessors = append(opts.Postprocessors, postprocess.DropEmpty{})
	}

	return opts, nil
}

package location

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Supported location file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// ErrUnsupportedFormat is returned for file extensions without a decoder.
var ErrUnsupportedFormat = errors.New("unsupported location file format")

// tomlFile is the TOML layout: one [[locations]] table per record.
type tomlFile struct {
	Locations []map[string]any `toml:"locations"`
}

// FormatFromPath derives the decoder format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// LoadFile reads location records from a JSON, YAML or TOML file.
func LoadFile(path string) ([]Location, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open location file: %w", err)
	}
	defer f.Close()

	locs, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return locs, nil
}

// Load decodes location records in the given format and checks that each
// record has a name.
func Load(r io.Reader, format string) ([]Location, error) {
	var raw []map[string]any

	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
	case FormatTOML:
		var doc tomlFile
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode TOML: %w", err)
		}
		raw = doc.Locations
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	locs := make([]Location, 0, len(raw))
	for i, rec := range raw {
		loc := Location(rec)
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

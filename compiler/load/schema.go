// Package load reads format descriptions from YAML or JSON files into
// raw, unvalidated descriptors. Validation happens in package gen.
package load

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Schema represents a format description as it was read from disk.
type Schema struct {
	Root      string    `yaml:"root"`
	Delimiter string    `yaml:"delimiter"`
	Records   []*Record `yaml:"records"`
}

// Record is a named sequence of lines.
type Record struct {
	Name  string  `yaml:"name"`
	Lines []*Line `yaml:"lines"`
}

// Line describes one physical line of a record, or one repeated block.
// Exactly one of Empty, Fields or Repeat is expected to be set.
type Line struct {
	Empty  bool     `yaml:"empty,omitempty"`
	Fields []*Field `yaml:"fields,omitempty"`
	Repeat *Repeat  `yaml:"repeat,omitempty"`
}

// Field is a name and the spelling of its type, e.g. "int" or "list(float)".
type Field struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Repeat describes a repeating line.
type Repeat struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Count Count  `yaml:"count"`
	// Split requires a blank line between repetitions.
	Split bool `yaml:"split,omitempty"`
}

// Count is the raw repetition count: an integer literal, the name of
// an earlier int field, "*" (zero or more) or "+" (one or more).
type Count string

// Count spellings for unbounded repetitions.
const (
	ZeroOrMore Count = "*"
	OneOrMore  Count = "+"
)

// ErrUnknownFormat is returned by ReadFile for unsupported file extensions.
var ErrUnknownFormat = errors.New("load: unknown descriptor format")

// ReadFile reads the descriptor at path. The decoder is chosen by
// the file extension: .yaml, .yml or .json.
func ReadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, ext)
	}
}

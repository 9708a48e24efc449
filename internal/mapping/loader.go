package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"mapper-engine/internal/relation"
)

// DefaultVersion is given to definitions without a version.
const DefaultVersion = "1.0"

// LoadFile loads a definition from path. Files ending in .json are read
// as JSON, everything else as YAML.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapper file %s: %w", path, err)
	}

	if isJSON(path) {
		return ParseJSON(data)
	}

	return Parse(data)
}

// Parse parses YAML data into a Definition.
func Parse(data []byte) (*Definition, error) {
	var d Definition

	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse mapper YAML: %w", err)
	}

	applyDefaults(&d)

	return &d, nil
}

// ParseJSON parses JSON data into a Definition.
func ParseJSON(data []byte) (*Definition, error) {
	var d Definition

	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse mapper JSON: %w", err)
	}

	applyDefaults(&d)

	return &d, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(d *Definition) {
	if d.Version == "" {
		d.Version = DefaultVersion
	}

	if d.Fields == nil {
		d.Fields = relation.Table{}
	}
}

// Marshal serializes a Definition to YAML.
func Marshal(d *Definition) ([]byte, error) {
	return yaml.Marshal(d)
}

// MarshalJSON serializes a Definition to indented JSON.
func MarshalJSON(d *Definition) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// WriteFile writes a Definition to path in the format its extension names.
func WriteFile(d *Definition, path string) error {
	marshal := Marshal
	if isJSON(path) {
		marshal = MarshalJSON
	}

	data, err := marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal mapper: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapper file %s: %w", path, err)
	}

	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

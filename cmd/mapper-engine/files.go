package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

// readFields loads a schema tree. Files ending in .json are read as JSON,
// everything else as YAML.
func readFields(path string) (schema.Fields, error) {
	var fields schema.Fields
	if err := decodeFile(path, &fields); err != nil {
		return schema.Fields{}, err
	}

	return fields, nil
}

// readKeys loads a mapper key vocabulary.
func readKeys(path string) (relation.MapperKeys, error) {
	var keys relation.MapperKeys
	if err := decodeFile(path, &keys); err != nil {
		return nil, err
	}

	return keys, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, v)
	} else {
		err = yaml.Unmarshal(data, v)
	}

	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}

package schema

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// MarshalJSON writes the fields as a JSON object in insertion order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, name := range f.order {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(f.items[name])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping its key order. The object key
// wins over any "name" attribute of the value.
func (f *Fields) UnmarshalJSON(data []byte) error {
	*f = Fields{}

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if tok == nil {
		return nil
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object for fields, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected field name, got %v", tok)
		}

		var field Field
		if err := dec.Decode(&field); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}

		field.Name = name
		f.Set(&field)
	}

	_, err = dec.Token()

	return err
}

// MarshalYAML writes the fields as a YAML mapping in insertion order.
func (f Fields) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, name := range f.order {
		var val yaml.Node
		if err := val.Encode(f.items[name]); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&val,
		)
	}

	return node, nil
}

// UnmarshalYAML reads a YAML mapping keeping its key order.
func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	*f = Fields{}

	switch node.Kind {
	case yaml.MappingNode:
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}

		return fmt.Errorf("expected mapping for fields, got scalar %q", node.Value)
	default:
		return errors.New("expected mapping for fields")
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value

		var field Field
		if err := node.Content[i+1].Decode(&field); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}

		field.Name = name
		f.Set(&field)
	}

	return nil
}

// IsZero lets omitempty drop empty field maps when encoding YAML.
func (f Fields) IsZero() bool {
	return len(f.order) == 0
}

package mapping

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"mapper-engine/internal/common"
)

// Authors is a list of author names. Documents may hold a single name, a
// list of names or a list of {name: ...} objects.
type Authors []string

type authorEntry struct {
	Name string `json:"name" yaml:"name"`
}

// UnmarshalYAML accepts every author form.
func (a *Authors) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string

		if err := node.Decode(&name); err != nil {
			return err
		}

		*a = Authors{}
		if name != "" {
			*a = Authors{name}
		}

		return nil

	case yaml.SequenceNode:
		out := make(Authors, 0, len(node.Content))

		for _, item := range node.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				out = append(out, item.Value)
			case yaml.MappingNode:
				var entry authorEntry
				if err := item.Decode(&entry); err != nil {
					return err
				}

				out = append(out, entry.Name)
			default:
				return fmt.Errorf("line %d: expected author name or object", item.Line)
			}
		}

		*a = out

		return nil

	default:
		return fmt.Errorf("expected author name or list, got %v", node.Kind)
	}
}

// MarshalYAML writes the object form read by the host.
func (a Authors) MarshalYAML() (any, error) {
	return a.entries(), nil
}

// UnmarshalJSON accepts every author form.
func (a *Authors) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}

		*a = Authors{}
		if name != "" {
			*a = Authors{name}
		}

		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	out := make(Authors, 0, len(items))

	for _, item := range items {
		item = bytes.TrimSpace(item)

		if len(item) > 0 && item[0] == '"' {
			var name string
			if err := json.Unmarshal(item, &name); err != nil {
				return err
			}

			out = append(out, name)

			continue
		}

		var entry authorEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			return err
		}

		out = append(out, entry.Name)
	}

	*a = out

	return nil
}

// MarshalJSON writes the object form read by the host.
func (a Authors) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.entries())
}

// First returns the first author or "".
func (a Authors) First() string {
	if v, ok := common.First(a); ok {
		return v
	}

	return ""
}

func (a Authors) entries() []authorEntry {
	out := make([]authorEntry, 0, len(a))
	for _, name := range a {
		out = append(out, authorEntry{Name: name})
	}

	return out
}

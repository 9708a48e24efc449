package provider

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

// Child is one selectable object of a level. The host sends either a
// bare name or an object with flags.
type Child struct {
	Name  string
	Desc  string
	attrs map[string]any
}

// Flag returns true if the child carries the boolean attribute key set.
func (c Child) Flag(key string) bool {
	b, _ := c.attrs[key].(bool)
	return b
}

// UnmarshalJSON accepts a string or an object with "name" and "desc".
func (c *Child) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*c = Child{}
		return json.Unmarshal(data, &c.Name)
	}

	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return err
	}

	name, _ := attrs["name"].(string)
	desc, _ := attrs["desc"].(string)
	*c = Child{Name: name, Desc: desc, attrs: attrs}

	return nil
}

// MarshalJSON writes the object form.
func (c Child) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.attrs)+2)
	for k, v := range c.attrs {
		out[k] = v
	}

	out["name"] = c.Name
	out["desc"] = c.Desc

	return json.Marshal(out)
}

// Listing is a list of children. The host sends either an array or an
// object with a "children" array.
type Listing []Child

// UnmarshalJSON accepts both listing forms.
func (l *Listing) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Children []Child `json:"children"`
		}

		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}

		*l = wrapped.Children

		return nil
	}

	var children []Child
	if err := json.Unmarshal(data, &children); err != nil {
		return err
	}

	*l = children

	return nil
}

// Details describes the object picked at one level.
type Details struct {
	Desc     string         `json:"desc,omitempty"`
	Children []Child        `json:"children,omitempty"`
	Fields   *schema.Fields `json:"fields,omitempty"`

	// HasType is nil when the host did not say.
	HasType          *bool `json:"has_type,omitempty"`
	HasRecord        bool  `json:"has_record,omitempty"`
	SupportsChildren bool  `json:"supports_children,omitempty"`
	SupportsRequest  bool  `json:"supports_request,omitempty"`
	SupportsRead     bool  `json:"supports_read,omitempty"`
	SupportsUpdate   bool  `json:"supports_update,omitempty"`
	SupportsCreate   bool  `json:"supports_create,omitempty"`
	SupportsDelete   bool  `json:"supports_delete,omitempty"`
	CanManageFields  bool  `json:"can_manage_fields,omitempty"`

	MapperKeys relation.MapperKeys `json:"mapper_keys,omitempty"`
}

func (d Details) hasType() bool {
	return d.HasType != nil && *d.HasType
}

func (d Details) hasTypeFalse() bool {
	return d.HasType != nil && !*d.HasType
}

// Record is a resolved field schema.
type Record struct {
	Fields          schema.Fields
	CanManageFields bool
}

// DecodeRecord reads a record response. Kinds that require an explicit
// record step answer with the field map itself; the others wrap it in
// {"fields": ..., "can_manage_fields": ...}.
func DecodeRecord(data []byte, bare bool) (Record, error) {
	if bare {
		var fields schema.Fields
		if err := json.Unmarshal(data, &fields); err != nil {
			return Record{}, fmt.Errorf("decode record: %w", err)
		}

		return Record{Fields: fields}, nil
	}

	var wrapped struct {
		Fields          schema.Fields `json:"fields"`
		CanManageFields bool          `json:"can_manage_fields"`
	}

	if err := json.Unmarshal(data, &wrapped); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}

	return Record{Fields: wrapped.Fields, CanManageFields: wrapped.CanManageFields}, nil
}

// DecodeFields reads a schema response that is either {"fields": {...}}
// or the field map itself.
func DecodeFields(data []byte) (schema.Fields, error) {
	var probe struct {
		Fields json.RawMessage `json:"fields"`
	}

	if err := json.Unmarshal(data, &probe); err == nil && len(probe.Fields) > 0 && probe.Fields[0] == '{' {
		var fields schema.Fields
		if err := json.Unmarshal(probe.Fields, &fields); err != nil {
			return schema.Fields{}, err
		}

		return fields, nil
	}

	var fields schema.Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return schema.Fields{}, err
	}

	return fields, nil
}

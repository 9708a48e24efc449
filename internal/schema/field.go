package schema

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

const (
	// TypeAny matches every type on either side of a connection.
	TypeAny = "any"
	// TypeAuto takes its type from the value it is bound to.
	TypeAuto = "auto"
	// TypeNothing marks a type set as optional.
	TypeNothing = "nothing"
	// MaybePrefix is the display prefix of optional type names.
	MaybePrefix = "*"
)

// SupportedOption describes one provider-specific option knob a field accepts.
type SupportedOption struct {
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Desc     string `json:"desc,omitempty" yaml:"desc,omitempty"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// FieldType is the type facet of a schema node.
type FieldType struct {
	// Name is the full type name, e.g. "*string" or "hash<auto>".
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Typename is the catalog name of base types, e.g. "*string".
	Typename string `json:"typename,omitempty" yaml:"typename,omitempty"`
	// BaseType is the display type name.
	BaseType string `json:"base_type,omitempty" yaml:"base_type,omitempty"`
	// TypesReturned lists what a value of this type can be read as.
	TypesReturned []string `json:"types_returned,omitempty" yaml:"types_returned,omitempty"`
	// TypesAccepted lists what this type accepts when written.
	TypesAccepted []string `json:"types_accepted,omitempty" yaml:"types_accepted,omitempty"`
	// Fields is the nested sub-schema; empty for leaves.
	Fields Fields `json:"fields" yaml:"fields,omitempty"`
	// CanManageFields allows custom fields to be grafted under this node.
	CanManageFields bool `json:"can_manage_fields,omitempty" yaml:"can_manage_fields,omitempty"`

	Options          map[string]any             `json:"options,omitempty" yaml:"options,omitempty"`
	SupportedOptions map[string]SupportedOption `json:"supported_options,omitempty" yaml:"supported_options,omitempty"`
}

// IsMaybe returns true if the type is optional, either by its name or
// by carrying "nothing" in its returned or accepted sets.
func (t FieldType) IsMaybe() bool {
	return strings.HasPrefix(t.Name, MaybePrefix) ||
		slices.Contains(t.TypesReturned, TypeNothing) ||
		slices.Contains(t.TypesAccepted, TypeNothing)
}

// DisplayName returns the base type, prefixed with "*" for optional types.
func (t FieldType) DisplayName() string {
	base := t.BaseType
	if base == "" {
		base = strings.TrimPrefix(t.Name, MaybePrefix)
	}

	if t.IsMaybe() {
		return MaybePrefix + base
	}

	return base
}

// HasFields returns true if the type carries a nested sub-schema.
func (t FieldType) HasFields() bool {
	return t.Fields.Len() > 0
}

// Clone returns a deep copy of the type.
func (t FieldType) Clone() FieldType {
	out := t
	out.TypesReturned = slices.Clone(t.TypesReturned)
	out.TypesAccepted = slices.Clone(t.TypesAccepted)
	out.Fields = t.Fields.Clone()
	out.Options = maps.Clone(t.Options)
	out.SupportedOptions = maps.Clone(t.SupportedOptions)

	return out
}

// Field is a node of a schema tree.
type Field struct {
	// Name is always equal to the key the field is stored under.
	Name string    `json:"name" yaml:"name"`
	Desc string    `json:"desc,omitempty" yaml:"desc,omitempty"`
	Type FieldType `json:"type" yaml:"type"`

	// IsCustom marks fields authored by the user rather than the provider.
	IsCustom bool `json:"isCustom,omitempty" yaml:"isCustom,omitempty"`
	// CanBeNull is set on custom fields created with an optional type.
	CanBeNull bool `json:"canBeNull,omitempty" yaml:"canBeNull,omitempty"`
	// FirstCustomInHierarchy marks a custom field whose parent is not custom.
	// Only these are persisted as custom fields; their subtrees travel with them.
	FirstCustomInHierarchy bool `json:"firstCustomInHierarchy,omitempty" yaml:"firstCustomInHierarchy,omitempty"`
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}

	out := *f
	out.Type = f.Type.Clone()

	return &out
}

// Fields is an insertion-ordered map of fields keyed by name.
// The zero value is an empty map ready to use.
type Fields struct {
	order []string
	items map[string]*Field
}

// NewFields builds a Fields map from fields in the given order.
func NewFields(fields ...*Field) Fields {
	var out Fields
	for _, f := range fields {
		out.Set(f)
	}

	return out
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	return len(f.order)
}

// Get returns the field stored under name.
func (f *Fields) Get(name string) (*Field, bool) {
	field, ok := f.items[name]
	return field, ok
}

// Has returns true if a field is stored under name.
func (f *Fields) Has(name string) bool {
	_, ok := f.items[name]
	return ok
}

// Set stores field under field.Name. A new name is appended; an existing
// name keeps its position.
func (f *Fields) Set(field *Field) {
	if f.items == nil {
		f.items = make(map[string]*Field)
	}

	if _, exists := f.items[field.Name]; !exists {
		f.order = append(f.order, field.Name)
	}

	f.items[field.Name] = field
}

// Delete removes the field stored under name and reports whether it existed.
func (f *Fields) Delete(name string) bool {
	if _, ok := f.items[name]; !ok {
		return false
	}

	delete(f.items, name)
	f.order = slices.DeleteFunc(f.order, func(n string) bool { return n == name })

	return true
}

// Names returns the field names in order.
func (f *Fields) Names() []string {
	return slices.Clone(f.order)
}

// LastName returns the name of the last field in order.
func (f *Fields) LastName() (string, bool) {
	if len(f.order) == 0 {
		return "", false
	}

	return f.order[len(f.order)-1], true
}

// All iterates the fields in order.
func (f *Fields) All() iter.Seq2[string, *Field] {
	return func(yield func(string, *Field) bool) {
		for _, name := range f.order {
			if !yield(name, f.items[name]) {
				return
			}
		}
	}
}

// Clone returns a deep copy preserving order.
func (f Fields) Clone() Fields {
	var out Fields
	for _, name := range f.order {
		out.Set(f.items[name].Clone())
	}

	return out
}

package mapping

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"mapper-engine/internal/provider"
	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

// ErrNotSubmittable is returned when a definition fails the submit gate.
var ErrNotSubmittable = errors.New("mapper cannot be submitted")

// SideSchema is one resolved side of a mapper being edited.
type SideSchema struct {
	Provider *provider.Descriptor
	Fields   schema.FlatList
}

// Build assembles the definition sent to the host: empty relations are
// dropped, each side carries its provider and custom fields, and the value
// type of every decoration key is recorded.
func Build(meta Metadata, relations relation.Table, input, output SideSchema, keys relation.MapperKeys) *Definition {
	fields := relations.FilterEmpty()

	return &Definition{
		Metadata: meta,
		Fields:   fields,
		Options: MapperOptions{
			Input:  sideOptions(input),
			Output: sideOptions(output),
		},
		OptionTypes: keys.OptionTypes(fields, output.Fields),
	}
}

func sideOptions(s SideSchema) *SideOptions {
	if s.Provider == nil {
		return nil
	}

	return &SideOptions{
		Descriptor:   *s.Provider,
		CustomFields: CustomFields(s.Fields),
	}
}

// CustomFields collects the roots of custom subtrees keyed by their path.
func CustomFields(list schema.FlatList) map[string]*schema.Field {
	roots := list.CustomRoots()
	if len(roots) == 0 {
		return nil
	}

	out := make(map[string]*schema.Field, len(roots))
	for _, f := range roots {
		out[f.Key()] = f.Field.Clone()
	}

	return out
}

// CanSubmit reports whether the metadata is valid and at least one
// relation is non-empty.
func (d *Definition) CanSubmit() bool {
	return d != nil && ValidateMetadata(&d.Metadata) == nil && len(d.Fields.FilterEmpty()) != 0
}

// Payload returns d ready for submission, or ErrNotSubmittable.
func (d *Definition) Payload() (*Definition, error) {
	if d == nil {
		return nil, ErrNotSubmittable
	}

	if err := ValidateMetadata(&d.Metadata); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotSubmittable, err)
	}

	out := *d
	out.Fields = d.Fields.FilterEmpty()

	if len(out.Fields) == 0 {
		return nil, fmt.Errorf("%w: no relations", ErrNotSubmittable)
	}

	return &out, nil
}

// Graft adds the saved custom fields of a side to a freshly fetched
// record. Fields already present are left alone; parents are created by
// the provider, so a missing parent is an error.
func (o *SideOptions) Graft(fields *schema.Fields) error {
	if o == nil || len(o.CustomFields) == 0 {
		return nil
	}

	for _, key := range sortedPaths(o.CustomFields) {
		path := schema.ParsePath(key)

		container := fields
		if parent := path.Parent(); !parent.IsEmpty() {
			p, err := fields.Walk(parent)
			if err != nil {
				return fmt.Errorf("graft custom field %s: %w", key, err)
			}

			container = &p.Type.Fields
		}

		if container.Has(path.Name()) {
			continue
		}

		container.Set(o.CustomFields[key].Clone())
	}

	return nil
}

func sortedPaths(m map[string]*schema.Field) []string {
	return slices.Sorted(maps.Keys(m))
}

package relation

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"mapper-engine/internal/schema"
)

// ErrMultipleSources is returned when a serialized relation populates more
// than one of the source keys.
var ErrMultipleSources = errors.New("relation has more than one source")

// Relation is the binding of one output field.
type Relation struct {
	Source Source
	// Keys holds decoration keys such as "constant" or "code".
	Keys map[string]any
}

// IsEmpty returns true if the relation has neither a source nor keys.
func (r Relation) IsEmpty() bool {
	return r.Source.IsZero() && len(r.Keys) == 0
}

// KeyNames returns the serialized keys of the relation, source first,
// decorations sorted.
func (r Relation) KeyNames() []string {
	names := make([]string, 0, len(r.Keys)+1)
	if key := r.Source.Kind.Key(); key != "" {
		names = append(names, key)
	}

	decorations := slices.Collect(maps.Keys(r.Keys))
	sort.Strings(decorations)

	return append(names, decorations...)
}

// Clone returns a copy that shares no maps or paths with r.
func (r Relation) Clone() Relation {
	out := Relation{Source: r.Source, Keys: maps.Clone(r.Keys)}
	out.Source.Field = slices.Clone(r.Source.Field)

	return out
}

// Without returns a copy of r lacking key. Removing a source key clears
// the source.
func (r Relation) Without(key string) Relation {
	out := r.Clone()
	if key != "" && out.Source.Kind.Key() == key {
		out.Source = Source{}
	}

	delete(out.Keys, key)

	return out
}

// Equals compares sources and decoration keys. Decoration values are
// compared by their JSON form.
func (r Relation) Equals(other Relation) bool {
	if !r.Source.Equals(other.Source) || len(r.Keys) != len(other.Keys) {
		return false
	}

	for k, v := range r.Keys {
		ov, ok := other.Keys[k]
		if !ok {
			return false
		}

		a, errA := json.Marshal(v)
		b, errB := json.Marshal(ov)

		if errA != nil || errB != nil || string(a) != string(b) {
			return false
		}
	}

	return true
}

// ToMap returns the serialized object form of the relation.
func (r Relation) ToMap() map[string]any {
	out := make(map[string]any, len(r.Keys)+1)
	for k, v := range r.Keys {
		out[k] = v
	}

	if key := r.Source.Kind.Key(); key != "" {
		out[key] = r.Source.Value()
	}

	return out
}

// FromMap reads the serialized object form of a relation.
func FromMap(m map[string]any) (Relation, error) {
	var (
		r     Relation
		found []string
	)

	for k, v := range m {
		switch k {
		case KeyName:
			s, ok := v.(string)
			if !ok {
				return Relation{}, fmt.Errorf("%s must be a string, got %T", KeyName, v)
			}

			r.Source = FieldSource(schema.ParsePath(s))
			found = append(found, k)
		case KeyUseInputRecord:
			b, ok := v.(bool)
			if !ok {
				return Relation{}, fmt.Errorf("%s must be a boolean, got %T", KeyUseInputRecord, v)
			}

			if b {
				r.Source = InputRecordSource()
				found = append(found, k)
			}
		case KeyContext:
			s, ok := v.(string)
			if !ok {
				return Relation{}, fmt.Errorf("%s must be a string, got %T", KeyContext, v)
			}

			r.Source = Source{Kind: SourceContext, Context: s}
			found = append(found, k)
		default:
			if r.Keys == nil {
				r.Keys = make(map[string]any)
			}

			r.Keys[k] = v
		}
	}

	if len(found) > 1 {
		sort.Strings(found)
		return Relation{}, fmt.Errorf("%w: %v", ErrMultipleSources, found)
	}

	return r, nil
}

// MarshalJSON writes the flat object form.
func (r Relation) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// UnmarshalJSON reads the flat object form.
func (r *Relation) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	parsed, err := FromMap(m)
	if err != nil {
		return err
	}

	*r = parsed

	return nil
}

// MarshalYAML writes the flat object form.
func (r Relation) MarshalYAML() (any, error) {
	return r.ToMap(), nil
}

// UnmarshalYAML reads the flat object form.
func (r *Relation) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]any
	if err := node.Decode(&m); err != nil {
		return err
	}

	parsed, err := FromMap(m)
	if err != nil {
		return err
	}

	*r = parsed

	return nil
}

package relation

import (
	"slices"
	"sort"

	"mapper-engine/internal/schema"
)

// RoleAll is the unique role that excludes every other key.
const RoleAll = "*"

// MapperKey describes one relation key declared by the host.
type MapperKey struct {
	Desc              string   `json:"desc,omitempty" yaml:"desc,omitempty"`
	ValueType         string   `json:"value_type,omitempty" yaml:"value_type,omitempty"`
	RequiresFieldType bool     `json:"requires_field_type,omitempty" yaml:"requires_field_type,omitempty"`
	UniqueRoles       []string `json:"unique_roles,omitempty" yaml:"unique_roles,omitempty"`
	RequiresRoles     []string `json:"requires_roles,omitempty" yaml:"requires_roles,omitempty"`
}

// MapperKeys is the host's relation key vocabulary, keyed by key name.
type MapperKeys map[string]MapperKey

// RoleSet is a set of unique roles.
type RoleSet map[string]struct{}

// Has returns true if role is in the set.
func (s RoleSet) Has(role string) bool {
	_, ok := s[role]
	return ok
}

// HasAny returns true if any of roles is in the set.
func (s RoleSet) HasAny(roles []string) bool {
	return slices.ContainsFunc(roles, s.Has)
}

// HasAll returns true if every one of roles is in the set.
func (s RoleSet) HasAll(roles []string) bool {
	for _, role := range roles {
		if !s.Has(role) {
			return false
		}
	}

	return true
}

// Roles collects the unique roles of every key present on r.
// Keys unknown to the vocabulary contribute nothing.
func (k MapperKeys) Roles(r Relation) RoleSet {
	roles := make(RoleSet)

	for _, name := range r.KeyNames() {
		for _, role := range k[name].UniqueRoles {
			roles[role] = struct{}{}
		}
	}

	return roles
}

// IsAvailableForDrop reports whether a field binding may be added to r:
// none of the roles of the "name" key may be taken and no key may hold
// the exclusive role.
func (k MapperKeys) IsAvailableForDrop(r Relation) bool {
	roles := k.Roles(r)

	return !roles.Has(RoleAll) && !roles.HasAny(k[KeyName].UniqueRoles)
}

// CanAddKey reports whether key may be added to r.
func (k MapperKeys) CanAddKey(r Relation, key string) bool {
	if slices.Contains(r.KeyNames(), key) {
		return false
	}

	mk := k[key]
	roles := k.Roles(r)

	if !roles.HasAll(mk.RequiresRoles) {
		return false
	}

	switch {
	case len(mk.UniqueRoles) == 0:
		return !roles.Has(RoleAll)
	case slices.Contains(mk.UniqueRoles, RoleAll):
		return r.IsEmpty()
	default:
		return !roles.Has(RoleAll) && !roles.HasAny(mk.UniqueRoles)
	}
}

// Conflicts returns the keys of r that could not have been added next to
// the others: keys sharing a unique role, keys beside an exclusive key and
// keys missing a required role.
func (k MapperKeys) Conflicts(r Relation) []string {
	var out []string

	for _, name := range r.KeyNames() {
		if !k.CanAddKey(r.Without(name), name) {
			out = append(out, name)
		}
	}

	return out
}

// KeyType resolves the value type of key for the given output field.
// Keys typed "any" or "auto" that require the field type take the
// output's base type.
func (k MapperKeys) KeyType(key string, output *schema.Field) string {
	mk := k[key]

	if (mk.ValueType == schema.TypeAny || mk.ValueType == schema.TypeAuto) && mk.RequiresFieldType && output != nil {
		return output.Type.BaseType
	}

	return mk.ValueType
}

// OptionType records the value type of one decoration key on one output.
type OptionType struct {
	OutputField string `json:"outputField" yaml:"outputField"`
	Field       string `json:"field" yaml:"field"`
	Type        string `json:"type" yaml:"type"`
}

// OptionTypes lists the value type of every decoration key in t, sorted by
// output path then key.
func (k MapperKeys) OptionTypes(t Table, outputs schema.FlatList) []OptionType {
	paths := make([]string, 0, len(t))
	for p := range t {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	var out []OptionType

	for _, p := range paths {
		r := t[p]

		var field *schema.Field
		if f, ok := outputs.Find(p); ok {
			field = f.Field
		}

		decorations := make([]string, 0, len(r.Keys))
		for key := range r.Keys {
			decorations = append(decorations, key)
		}

		sort.Strings(decorations)

		for _, key := range decorations {
			out = append(out, OptionType{OutputField: p, Field: key, Type: k.KeyType(key, field)})
		}
	}

	return out
}

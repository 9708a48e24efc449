package relation

import (
	"maps"
	"sort"
	"strings"

	"mapper-engine/internal/common"
	"mapper-engine/internal/schema"
)

// Store owns the relation table of one editing session.
// It is not safe for concurrent use.
type Store struct {
	table Table
}

// NewStore returns a store holding a copy of t.
func NewStore(t Table) *Store {
	s := &Store{}
	s.Replace(t)

	return s
}

// Replace swaps the whole table for a copy of t.
func (s *Store) Replace(t Table) {
	s.table = t.Clone()
	if s.table == nil {
		s.table = make(Table)
	}
}

// Reset drops every relation.
func (s *Store) Reset() {
	s.table = make(Table)
}

// Table returns a copy of the current table.
func (s *Store) Table() Table {
	return s.table.Clone()
}

// Len returns the number of entries, empty ones included.
func (s *Store) Len() int {
	return len(s.table)
}

// Get returns the relation of an output path.
func (s *Store) Get(output string) (Relation, bool) {
	r, ok := s.table[output]
	if !ok {
		return Relation{}, false
	}

	return r.Clone(), true
}

// OutputPaths returns the keys of the table in sorted order.
func (s *Store) OutputPaths() []string {
	keys := make([]string, 0, len(s.table))
	for k := range s.table {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Set stores data as the relation of output. With merge, a source in data
// replaces the current one and its keys are merged over the current keys;
// otherwise data replaces the relation wholesale.
func (s *Store) Set(output string, data Relation, merge bool) {
	data = data.Clone()

	current, ok := s.table[output]
	if !merge || !ok {
		s.table[output] = data
		return
	}

	if !data.Source.IsZero() {
		current.Source = data.Source
	}

	if len(data.Keys) > 0 {
		if current.Keys == nil {
			current.Keys = make(map[string]any, len(data.Keys))
		}

		maps.Copy(current.Keys, data.Keys)
	}

	s.table[output] = current
}

// Remove clears the source of output picked by the call site: the context
// when usesContext, else the whole-record binding when isInputHash, else
// the field binding. Decoration keys stay.
func (s *Store) Remove(output string, usesContext, isInputHash bool) {
	r, ok := s.table[output]
	if !ok {
		return
	}

	want := SourceField

	switch {
	case usesContext:
		want = SourceContext
	case isInputHash:
		want = SourceInputRecord
	}

	if r.Source.Kind == want {
		r.Source = Source{}
		s.table[output] = r
	}
}

// RemoveKey deletes a decoration key from output, together with any key
// whose required roles are no longer provided by the remaining keys.
func (s *Store) RemoveKey(output, key string, keys MapperKeys) {
	r, ok := s.table[output]
	if !ok {
		return
	}

	if key == r.Source.Kind.Key() {
		r.Source = Source{}
	}

	r.Keys = maps.Clone(r.Keys)
	delete(r.Keys, key)

	roles := keys.Roles(r)

	for k := range r.Keys {
		if !roles.HasAll(keys[k].RequiresRoles) {
			delete(r.Keys, k)
		}
	}

	s.table[output] = r
}

// RemoveFieldRelations unbinds a removed field and its descendants.
// On the outputs side the entries are deleted; on the inputs side only
// the field binding is cleared; on the context side the matching static
// references are cleared. It returns the number of touched entries.
func (s *Store) RemoveFieldRelations(path string, side common.Side) int {
	prefix := schema.ParsePath(path)
	count := 0

	for key, r := range s.table {
		switch side {
		case common.SideOutputs:
			if schema.ParsePath(key).HasPrefix(prefix) {
				delete(s.table, key)
				count++
			}
		case common.SideInputs:
			if r.Source.Kind == SourceField && r.Source.Field.HasPrefix(prefix) {
				r.Source = Source{}
				s.table[key] = r
				count++
			}
		case common.SideContext:
			if name, ok := staticFieldPath(r.Source); ok && name.HasPrefix(prefix) {
				r.Source = Source{}
				s.table[key] = r
				count++
			}
		}
	}

	return count
}

// RenameFieldRelation re-paths every relation under oldPath to newPath.
// On the outputs side entries are rekeyed; on the inputs and context sides
// the source reference is rewritten. It returns the number of touched
// entries.
func (s *Store) RenameFieldRelation(oldPath, newPath string, side common.Side) int {
	from, to := schema.ParsePath(oldPath), schema.ParsePath(newPath)
	if from.Equals(to) {
		return 0
	}

	count := 0

	switch side {
	case common.SideOutputs:
		renamed := make(Table, len(s.table))

		for key, r := range s.table {
			if p, ok := schema.ParsePath(key).ReplacePrefix(from, to); ok {
				key = p.String()
				count++
			}

			renamed[key] = r
		}

		s.table = renamed
	case common.SideInputs:
		for key, r := range s.table {
			if r.Source.Kind != SourceField {
				continue
			}

			if p, ok := r.Source.Field.ReplacePrefix(from, to); ok {
				r.Source.Field = p
				s.table[key] = r
				count++
			}
		}
	case common.SideContext:
		for key, r := range s.table {
			name, ok := staticFieldPath(r.Source)
			if !ok {
				continue
			}

			if p, ok := name.ReplacePrefix(from, to); ok {
				r.Source = ContextSource(p)
				s.table[key] = r
				count++
			}
		}
	}

	return count
}

// PruneIncompatibleContext clears context references to static fields
// missing from contextFields and returns how many were cleared. A nil
// list means there is no context at all. References to the whole
// context are kept.
func (s *Store) PruneIncompatibleContext(contextFields schema.FlatList) int {
	count := 0

	for key, r := range s.table {
		if r.Source.Kind != SourceContext || !HasStaticDataField(r.Source.Context) {
			continue
		}

		name, _ := StaticDataFieldname(r.Source.Context)
		if contextFields != nil && contextFields.Has(name) {
			continue
		}

		r.Source = Source{}
		s.table[key] = r
		count++
	}

	return count
}

// FilterEmpty returns the non-empty relations.
func (s *Store) FilterEmpty() Table {
	return s.table.FilterEmpty()
}

// HasInputRelation returns true if some relation reads the input or
// context field at path.
func (s *Store) HasInputRelation(path string) bool {
	p := schema.ParsePath(path)

	for _, r := range s.table {
		if r.Source.Kind == SourceField && r.Source.Field.Equals(p) {
			return true
		}

		if name, ok := staticFieldPath(r.Source); ok && name.Equals(p) {
			return true
		}
	}

	return false
}

// HasOutputRelation returns true if the output at path is bound to an
// input field or to the context.
func (s *Store) HasOutputRelation(path string) bool {
	r, ok := s.table[path]
	if !ok {
		return false
	}

	switch r.Source.Kind {
	case SourceField:
		return true
	case SourceContext:
		return strings.HasPrefix(r.Source.Context, StaticPrefix+":")
	default:
		return false
	}
}

func staticFieldPath(src Source) (schema.Path, bool) {
	if src.Kind != SourceContext || !HasStaticDataField(src.Context) {
		return nil, false
	}

	name, ok := StaticDataFieldname(src.Context)
	if !ok {
		return nil, false
	}

	return schema.ParsePath(name), true
}

package relation

import (
	"strings"

	"mapper-engine/internal/schema"
)

// Table maps serialized output field paths to their relations.
type Table map[string]Relation

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}

	out := make(Table, len(t))
	for k, r := range t {
		out[k] = r.Clone()
	}

	return out
}

// FilterEmpty returns the entries holding a source or at least one key.
func (t Table) FilterEmpty() Table {
	out := make(Table, len(t))

	for k, r := range t {
		if !r.IsEmpty() {
			out[k] = r.Clone()
		}
	}

	return out
}

// Equals compares two tables entry by entry.
func (t Table) Equals(other Table) bool {
	if len(t) != len(other) {
		return false
	}

	for k, r := range t {
		o, ok := other[k]
		if !ok || !r.Equals(o) {
			return false
		}
	}

	return true
}

// FixRelations repairs tables written before field names were escaped.
// Output keys and input names that do not resolve against the flattened
// schemas are taken to be a single field name and get their bare dots
// escaped.
func FixRelations(t Table, outputs, inputs schema.FlatList) Table {
	out := make(Table, len(t))

	for key, r := range t {
		r = r.Clone()

		if !outputs.Has(key) {
			key = escapeBareDots(key)
		}

		if r.Source.Kind == SourceField && inputs.Index(r.Source.Field) < 0 {
			r.Source.Field = schema.ParsePath(escapeBareDots(r.Source.Field.String()))
		}

		out[key] = r
	}

	return out
}

func escapeBareDots(s string) string {
	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '.' && (i == 0 || s[i-1] != '\\') {
			sb.WriteString(`\.`)
			continue
		}

		sb.WriteByte(s[i])
	}

	return sb.String()
}

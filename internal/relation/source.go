package relation

import (
	"regexp"
	"strings"

	"mapper-engine/internal/schema"
)

// Source keys as they appear in the serialized relation object.
const (
	KeyName           = "name"
	KeyUseInputRecord = "use_input_record"
	KeyContext        = "context"
)

const (
	// StaticPrefix starts every context reference.
	StaticPrefix = "$static"
	// StaticAll references the whole context record.
	StaticAll = "$static:*"
)

// SourceKind tells which source variant a relation holds.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceField
	SourceInputRecord
	SourceContext
)

// Key returns the serialized key of the source variant, "" for SourceNone.
func (k SourceKind) Key() string {
	switch k {
	case SourceField:
		return KeyName
	case SourceInputRecord:
		return KeyUseInputRecord
	case SourceContext:
		return KeyContext
	default:
		return ""
	}
}

// String returns the serialized key, or "none".
func (k SourceKind) String() string {
	if key := k.Key(); key != "" {
		return key
	}

	return "none"
}

// Source is the binding of an output field to its origin.
type Source struct {
	Kind SourceKind
	// Field is the input field path for SourceField.
	Field schema.Path
	// Context is the raw "$static:..." reference for SourceContext.
	Context string
}

// FieldSource binds to the input field at path.
func FieldSource(path schema.Path) Source {
	return Source{Kind: SourceField, Field: path}
}

// InputRecordSource binds to the whole input record.
func InputRecordSource() Source {
	return Source{Kind: SourceInputRecord}
}

// ContextSource binds to a single static context field.
func ContextSource(path schema.Path) Source {
	return Source{Kind: SourceContext, Context: StaticField(path.String())}
}

// ContextAllSource binds to the whole static context.
func ContextAllSource() Source {
	return Source{Kind: SourceContext, Context: StaticAll}
}

// IsZero returns true if no source is set.
func (s Source) IsZero() bool {
	return s.Kind == SourceNone
}

// Equals compares two sources by variant and payload.
func (s Source) Equals(other Source) bool {
	return s.Kind == other.Kind && s.Field.Equals(other.Field) && s.Context == other.Context
}

// Value returns the serialized value of the source.
func (s Source) Value() any {
	switch s.Kind {
	case SourceField:
		return s.Field.String()
	case SourceInputRecord:
		return true
	case SourceContext:
		return s.Context
	default:
		return nil
	}
}

// StaticField builds the context reference of a single static field.
func StaticField(path string) string {
	return StaticPrefix + ":{" + path + "}"
}

// HasStaticDataField returns true if context references one static field
// rather than the whole context.
func HasStaticDataField(context string) bool {
	return strings.HasPrefix(context, StaticPrefix) && !strings.HasPrefix(context, StaticAll)
}

// staticFieldRe takes everything between the prefix brace and the last
// closing brace, so field names may contain braces.
var staticFieldRe = regexp.MustCompile(`^` + regexp.QuoteMeta(StaticPrefix) + `:\{(.+)\}$`)

// StaticDataFieldname extracts the field path from a context reference.
func StaticDataFieldname(context string) (string, bool) {
	m := staticFieldRe.FindStringSubmatch(context)
	if m == nil {
		return "", false
	}

	return m[1], true
}

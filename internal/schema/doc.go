// Package schema models the nested field trees a mapper connects and the
// operations performed on them.
//
// # Trees
//
// A tree is an ordered map of named fields ([Fields]). Every field carries
// a [FieldType]; a field whose type holds a non-empty Fields map is a
// hierarchy node. Insertion order is preserved through JSON and YAML
// round trips because display order and flattening depend on it.
//
// # Paths
//
// A field is addressed by its [Path], the ordered list of names from the
// root down to the field. The serialized form joins segments with "." and
// escapes literal dots inside a segment as "\.", so "a\.b.c" names field
// "c" under the top-level field "a.b".
//
// # Flattening
//
// [Flatten] turns a tree into a pre-order list where a field is followed
// immediately by the contiguous block of its descendants. Rendering and
// lookups by path work on this list.
//
// # Editing
//
// [Fields.AddField], [Fields.EditField] and [Fields.RemoveField] graft, rename
// and delete user-authored (custom) fields at any depth. Callers are
// responsible for keeping relations in step with the edit.
package schema

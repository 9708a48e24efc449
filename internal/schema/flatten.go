package schema

// FlatField is a tree field annotated with its position in the hierarchy.
// Field points into the tree it was flattened from.
type FlatField struct {
	*Field

	// Path addresses the field from the root of its tree.
	Path Path
	// ParentPath is nil for top-level fields.
	ParentPath Path
	// Parent is the name of the direct parent, "" for top-level fields.
	Parent string
	// Level is the depth of the field; top-level fields are at 0.
	Level   int
	IsChild bool
}

// Key returns the serialized path of the field.
func (f FlatField) Key() string {
	return f.Path.String()
}

// FlatList is the pre-order flattening of a tree.
type FlatList []FlatField

// Flatten walks fields depth-first in insertion order. Each field is
// emitted before the contiguous block of its descendants.
func Flatten(fields *Fields) FlatList {
	if fields == nil {
		return nil
	}

	return flatten(fields, false, "", 0, nil)
}

func flatten(fields *Fields, isChild bool, parent string, level int, prefix Path) FlatList {
	var out FlatList

	for name, field := range fields.All() {
		path := prefix.Child(name)

		var parentPath Path
		if level > 0 {
			parentPath = prefix
		}

		out = append(out, FlatField{
			Field:      field,
			Path:       path,
			ParentPath: parentPath,
			Parent:     parent,
			Level:      level,
			IsChild:    isChild,
		})

		if field.Type.HasFields() {
			out = append(out, flatten(&field.Type.Fields, true, name, level+1, path)...)
		}
	}

	return out
}

// Index returns the position of the field at path, or -1.
func (l FlatList) Index(path Path) int {
	for i := range l {
		if l[i].Path.Equals(path) {
			return i
		}
	}

	return -1
}

// Find returns the field whose serialized path equals key.
func (l FlatList) Find(key string) (FlatField, bool) {
	i := l.Index(ParsePath(key))
	if i < 0 {
		return FlatField{}, false
	}

	return l[i], true
}

// Has returns true if a field with the serialized path key exists.
func (l FlatList) Has(key string) bool {
	_, ok := l.Find(key)
	return ok
}

// LastChildIndex returns the index in list of the last direct child of
// field. Fields without children yield 0; a child missing from list
// yields -1.
func LastChildIndex(field FlatField, list FlatList) int {
	if field.Field == nil || !field.Type.HasFields() {
		return 0
	}

	name, _ := field.Type.Fields.LastName()

	return list.Index(field.Path.Child(name))
}

// CustomRoots returns the custom fields that start a custom subtree,
// in flattening order.
func (l FlatList) CustomRoots() []FlatField {
	var out []FlatField

	for _, f := range l {
		if f.FirstCustomInHierarchy {
			out = append(out, f)
		}
	}

	return out
}

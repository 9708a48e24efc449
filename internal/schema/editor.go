package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFieldNotFound is returned when a path does not resolve in the tree.
	ErrFieldNotFound = errors.New("field not found")
	// ErrNoNestedFields is returned when a field is grafted under a parent
	// whose type cannot hold nested fields. It signals a caller bug; the
	// tree is left untouched.
	ErrNoNestedFields = errors.New("parent field cannot hold nested fields")
	// ErrDuplicateField is returned when a sibling already uses the name.
	ErrDuplicateField = errors.New("a sibling field with this name already exists")
	// ErrEmptyName is returned for fields without a name.
	ErrEmptyName = errors.New("field name is empty")
)

// Walk resolves path to the field it addresses. Every hop after the first
// descends into the previous field's nested map.
func (f *Fields) Walk(path Path) (*Field, error) {
	if path.IsEmpty() {
		return nil, fmt.Errorf("%w: empty path", ErrFieldNotFound)
	}

	current := f

	var field *Field

	for i, name := range path {
		next, ok := current.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, path[:i+1])
		}

		field = next
		current = &next.Type.Fields
	}

	return field, nil
}

// container returns the map that holds the field at path.
func (f *Fields) container(path Path) (*Fields, error) {
	parent := path.Parent()
	if parent.IsEmpty() {
		return f, nil
	}

	field, err := f.Walk(parent)
	if err != nil {
		return nil, err
	}

	return &field.Type.Fields, nil
}

// AddField grafts field under the field at parent. An empty parent adds a
// top-level field. The parent must allow managing fields.
func (f *Fields) AddField(parent Path, field *Field) (Path, error) {
	if field == nil || field.Name == "" {
		return nil, ErrEmptyName
	}

	target := f

	if !parent.IsEmpty() {
		pf, err := f.Walk(parent)
		if err != nil {
			return nil, err
		}

		if !pf.Type.CanManageFields {
			return nil, fmt.Errorf("%w: %s", ErrNoNestedFields, parent)
		}

		target = &pf.Type.Fields
	}

	if target.Has(field.Name) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateField, parent.Child(field.Name))
	}

	target.Set(field)

	return parent.Child(field.Name), nil
}

// EditField replaces the field at path with updated, keeping its position
// among its siblings, and returns the new path. The new path keeps the old
// ancestry with updated.Name as the last segment. When updated carries no
// nested fields the old subtree is kept. With remove set the field is
// deleted and updated is ignored.
func (f *Fields) EditField(path Path, updated *Field, remove bool) (Path, error) {
	container, err := f.container(path)
	if err != nil {
		return nil, err
	}

	old, ok := container.Get(path.Name())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, path)
	}

	if remove {
		container.Delete(path.Name())
		return nil, nil
	}

	if updated == nil || updated.Name == "" {
		return nil, ErrEmptyName
	}

	if updated.Name != old.Name && container.Has(updated.Name) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateField, path.Parent().Child(updated.Name))
	}

	if !updated.Type.HasFields() && old.Type.HasFields() {
		updated.Type.Fields = old.Type.Fields
	}

	container.replace(old.Name, updated)

	return path.Parent().Child(updated.Name), nil
}

// RemoveField deletes the field at path together with its subtree.
func (f *Fields) RemoveField(path Path) error {
	_, err := f.EditField(path, nil, true)
	return err
}

// replace swaps the field stored under name for field, in place.
func (f *Fields) replace(name string, field *Field) {
	for i, n := range f.order {
		if n == name {
			f.order[i] = field.Name
			break
		}
	}

	delete(f.items, name)
	f.items[field.Name] = field
}

// CustomFieldSpec is the user input for a new or edited custom field.
type CustomFieldSpec struct {
	Name      string
	Desc      string
	Type      FieldType
	CanBeNull bool
}

// NewCustomField builds a custom field from spec. Optional fields switch
// to the maybe variant of their type when types lists one. parentCustom
// tells whether the field is grafted under another custom field.
func NewCustomField(spec CustomFieldSpec, types BaseTypes, parentCustom bool) *Field {
	typ := spec.Type.Clone()

	if typ.Name == TypeAuto {
		spec.CanBeNull = false
	}

	if spec.CanBeNull {
		if maybe, ok := types.Maybe(typ.Name); ok {
			typ = maybe.Clone()
		}
	}

	return &Field{
		Name:                   spec.Name,
		Desc:                   spec.Desc,
		Type:                   typ,
		IsCustom:               true,
		CanBeNull:              spec.CanBeNull,
		FirstCustomInHierarchy: !parentCustom,
	}
}

// ValidateCustomField checks a custom field before it is grafted among
// siblings. original is the current name when editing, "" when adding.
func ValidateCustomField(siblings *Fields, field *Field, original string) error {
	if strings.TrimSpace(field.Name) == "" {
		return ErrEmptyName
	}

	if field.Type.Name == "" && field.Type.BaseType == "" {
		return fmt.Errorf("field %q has no type", field.Name)
	}

	if field.Name != original && siblings != nil && siblings.Has(field.Name) {
		return fmt.Errorf("%w: %s", ErrDuplicateField, field.Name)
	}

	return nil
}

// BaseTypes is the catalog of types a custom field may use.
type BaseTypes []FieldType

// Find returns the type with the given name or catalog name.
func (b BaseTypes) Find(name string) (FieldType, bool) {
	for _, t := range b {
		if t.Name == name || (t.Typename != "" && t.Typename == name) {
			return t, true
		}
	}

	return FieldType{}, false
}

// Maybe returns the optional variant of the named type. Type parameters
// ("hash<auto>") and the "soft" prefix are ignored when matching.
func (b BaseTypes) Maybe(name string) (FieldType, bool) {
	base := strings.TrimPrefix(name, MaybePrefix)
	if pos := strings.Index(base, "<"); pos > 0 {
		base = base[:pos]
	}

	base = strings.Replace(base, "soft", "", 1)

	return b.Find(MaybePrefix + base)
}

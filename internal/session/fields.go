package session

import (
	"context"
	"fmt"

	"mapper-engine/internal/common"
	"mapper-engine/internal/schema"
)

// AddField grafts a custom field under parent on side. An empty parent
// adds a top-level field, which the side's record must allow.
func (s *Session) AddField(ctx context.Context, side common.Side, parent string, spec schema.CustomFieldSpec) (string, error) {
	types, err := s.resolveType(ctx, side, &spec)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sides[side]
	if !ok {
		return "", ErrUnknownSide
	}

	parentPath := schema.ParsePath(parent)
	siblings := &st.fields
	parentCustom := false

	if parentPath.IsEmpty() {
		if !st.canManage && (st.descriptor == nil || !st.descriptor.CanManageFields) {
			return "", ErrFieldsLocked
		}
	} else {
		pf, err := st.fields.Walk(parentPath)
		if err != nil {
			return "", err
		}

		siblings = &pf.Type.Fields
		parentCustom = pf.IsCustom
	}

	field := schema.NewCustomField(spec, types, parentCustom)
	if err := schema.ValidateCustomField(siblings, field, ""); err != nil {
		return "", err
	}

	path, err := st.fields.AddField(parentPath, field)
	if err != nil {
		return "", err
	}

	s.log.WithField("side", side.String()).WithField("path", path.String()).Debug("Custom field added")
	s.changed()

	return path.String(), nil
}

// EditField replaces the custom field at path on side and re-paths the
// relations of the field and its descendants. It returns the new path.
func (s *Session) EditField(ctx context.Context, side common.Side, path string, spec schema.CustomFieldSpec) (string, error) {
	types, err := s.resolveType(ctx, side, &spec)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sides[side]
	if !ok {
		return "", ErrUnknownSide
	}

	oldPath := schema.ParsePath(path)

	old, err := s.customField(st, oldPath)
	if err != nil {
		return "", err
	}

	siblings := &st.fields
	if parent := oldPath.Parent(); !parent.IsEmpty() {
		pf, err := st.fields.Walk(parent)
		if err != nil {
			return "", err
		}

		siblings = &pf.Type.Fields
	}

	field := schema.NewCustomField(spec, types, !old.FirstCustomInHierarchy)
	if err := schema.ValidateCustomField(siblings, field, old.Name); err != nil {
		return "", err
	}

	newPath, err := st.fields.EditField(oldPath, field, false)
	if err != nil {
		return "", err
	}

	moved := s.relations.RenameFieldRelation(oldPath.String(), newPath.String(), side)

	s.log.WithField("side", side.String()).
		WithField("from", oldPath.String()).
		WithField("to", newPath.String()).
		WithField("relations", moved).
		Debug("Custom field edited")
	s.changed()

	return newPath.String(), nil
}

// RemoveField deletes the custom field at path on side with its subtree
// and the relations that used them.
func (s *Session) RemoveField(side common.Side, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sides[side]
	if !ok {
		return ErrUnknownSide
	}

	p := schema.ParsePath(path)

	if _, err := s.customField(st, p); err != nil {
		return err
	}

	if err := st.fields.RemoveField(p); err != nil {
		return err
	}

	removed := s.relations.RemoveFieldRelations(p.String(), side)

	s.log.WithField("side", side.String()).
		WithField("path", p.String()).
		WithField("relations", removed).
		Debug("Custom field removed")
	s.changed()

	return nil
}

// LoadSchema installs fields as the tree of side without a provider, as
// when a schema comes from a file. Relations to fields missing from the
// new tree are removed.
func (s *Session) LoadSchema(side common.Side, fields schema.Fields) error {
	if side == common.SideContext {
		s.SetContext(&fields)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sides[side]; !ok {
		return ErrUnknownSide
	}

	s.sides[side] = &sideState{fields: fields.Clone()}
	s.pruneDangling(side)
	s.changed()

	return nil
}

// resolveType swaps the type named in spec for its base types entry.
func (s *Session) resolveType(ctx context.Context, side common.Side, spec *schema.CustomFieldSpec) (schema.BaseTypes, error) {
	if side != common.SideInputs && side != common.SideOutputs {
		return nil, ErrUnknownSide
	}

	types, err := s.BaseTypes(ctx, side)
	if err != nil {
		return nil, err
	}

	t, ok := types.Find(spec.Type.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, spec.Type.Name)
	}

	spec.Type = t

	return types, nil
}

// customField returns the field at path when it is a custom one.
func (s *Session) customField(st *sideState, path schema.Path) (*schema.Field, error) {
	f, err := st.fields.Walk(path)
	if err != nil {
		return nil, err
	}

	if !f.IsCustom {
		return nil, fmt.Errorf("%w: %s", ErrNotCustom, path)
	}

	return f, nil
}

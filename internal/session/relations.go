package session

import (
	"context"
	"fmt"

	"mapper-engine/internal/common"
	"mapper-engine/internal/host"
	"mapper-engine/internal/match"
	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

// RecordTypes are the types a whole input record or the whole context
// returns when dropped.
var RecordTypes = []string{"hash<auto>"}

// Drop binds output to src. The drop is checked against the output's
// accepted types and the unique roles of its current keys; a rejected
// drop writes nothing and returns ErrDropRejected. Field bindings merge
// into the relation, whole-record bindings replace it. A relation holds a
// single source, so a source already bound is displaced and logged.
func (s *Session) Drop(output string, src relation.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	outputs := s.flat(common.SideOutputs)

	target, ok := outputs.Find(output)
	if !ok {
		return fmt.Errorf("output %s: %w", output, schema.ErrFieldNotFound)
	}

	types, err := s.sourceTypes(src)
	if err != nil {
		return err
	}

	if !match.NewEvaluator(s.relations, s.keys).CanDropOn(types, target) {
		return fmt.Errorf("%w: %s on %s", ErrDropRejected, src.Kind, output)
	}

	merge := src.Kind == relation.SourceField ||
		(src.Kind == relation.SourceContext && src.Context != relation.StaticAll)

	prev, _ := s.relations.Get(output)

	s.relations.Set(output, relation.Relation{Source: src}, merge)

	log := s.log.WithField("output", output).WithField("source", src.Value())
	if !prev.Source.IsZero() && !prev.Source.Equals(src) {
		log.WithField("replaced", prev.Source.Kind.String()).
			WithField("replaced_value", prev.Source.Value()).
			Warn("Relation source replaced")
	}

	if !merge && len(prev.Keys) > 0 {
		log.WithField("keys", prev.KeyNames()).Warn("Relation keys dropped")
	}

	log.Debug("Relation set")

	s.changed()

	return nil
}

// sourceTypes returns the types src yields. Callers hold s.mu.
func (s *Session) sourceTypes(src relation.Source) ([]string, error) {
	switch src.Kind {
	case relation.SourceField:
		in, ok := s.flat(common.SideInputs).Find(src.Field.String())
		if !ok {
			return nil, fmt.Errorf("input %s: %w", src.Field, schema.ErrFieldNotFound)
		}

		return in.Type.TypesReturned, nil
	case relation.SourceInputRecord:
		return RecordTypes, nil
	case relation.SourceContext:
		if src.Context == relation.StaticAll {
			return RecordTypes, nil
		}

		name, ok := relation.StaticDataFieldname(src.Context)
		if !ok {
			return nil, fmt.Errorf("context %q: %w", src.Context, schema.ErrFieldNotFound)
		}

		in, ok := s.flat(common.SideContext).Find(name)
		if !ok {
			return nil, fmt.Errorf("context %s: %w", name, schema.ErrFieldNotFound)
		}

		return in.Type.TypesReturned, nil
	default:
		return nil, fmt.Errorf("%w: empty source", ErrDropRejected)
	}
}

// RemoveRelation clears the source of kind from output. Keys stay.
func (s *Session) RemoveRelation(output string, kind relation.SourceKind) {
	s.mu.Lock()
	s.relations.Remove(output, kind == relation.SourceContext, kind == relation.SourceInputRecord)
	s.mu.Unlock()

	s.changed()
}

// SetRelationKey sets a decoration key on output. The key must be known
// and must not share a unique role with the keys already present.
func (s *Session) SetRelationKey(output, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	switch key {
	case relation.KeyName, relation.KeyUseInputRecord, relation.KeyContext:
		return fmt.Errorf("%w: %s is a source key, drop a field instead", ErrKeyConflict, key)
	}

	if !s.flat(common.SideOutputs).Has(output) {
		return fmt.Errorf("output %s: %w", output, schema.ErrFieldNotFound)
	}

	current, _ := s.relations.Get(output)
	if !s.keys.CanAddKey(current.Without(key), key) {
		return fmt.Errorf("%w: %s on %s", ErrKeyConflict, key, output)
	}

	s.relations.Set(output, relation.Relation{Keys: map[string]any{key: value}}, true)
	s.changed()

	return nil
}

// RemoveRelationKey deletes key from output together with the keys that
// depended on it.
func (s *Session) RemoveRelationKey(output, key string) {
	s.mu.Lock()
	s.relations.RemoveKey(output, key, s.keys)
	s.mu.Unlock()

	s.changed()
}

// ClearRelation drops every binding and key of output.
func (s *Session) ClearRelation(output string) {
	s.mu.Lock()
	s.relations.Set(output, relation.Relation{}, false)
	s.mu.Unlock()

	s.changed()
}

// DropTargets returns the outputs a field of side at path may be dropped on.
func (s *Session) DropTargets(side common.Side, path string) (schema.FlatList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.flat(side).Find(path)
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", side, path, schema.ErrFieldNotFound)
	}

	return match.NewEvaluator(s.relations, s.keys).DropTargets(in.Type.TypesReturned, s.flat(common.SideOutputs)), nil
}

// HasInputRelation reports whether an input or context field is bound.
func (s *Session) HasInputRelation(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.relations.HasInputRelation(path)
}

// HasOutputRelation reports whether an output field is bound to a field.
func (s *Session) HasOutputRelation(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.relations.HasOutputRelation(path)
}

// Suggest ranks the input fields that may be dropped on output, best
// first, keeping at most limit of them. Outputs whose keys block a drop
// get no suggestions.
func (s *Session) Suggest(output string, limit int) (match.CandidateList, error) {
	return s.suggest(output, limit, false)
}

// SuggestBindable is Suggest restricted to the inputs a name binding
// accepts, where "any" is no wildcard.
func (s *Session) SuggestBindable(output string, limit int) (match.CandidateList, error) {
	return s.suggest(output, limit, true)
}

func (s *Session) suggest(output string, limit int, bindable bool) (match.CandidateList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.flat(common.SideOutputs).Find(output)
	if !ok {
		return nil, fmt.Errorf("output %s: %w", output, schema.ErrFieldNotFound)
	}

	if !match.NewEvaluator(s.relations, s.keys).IsAvailableForDrop(output) {
		return nil, nil
	}

	inputs := s.flat(common.SideInputs)
	if bindable {
		inputs = match.PossibleInputs(target, inputs)
	}

	candidates := match.RankCandidates(target, inputs)
	if limit > 0 {
		candidates = candidates.Top(limit)
	}

	return candidates, nil
}

// SetContext replaces the static data tree. A nil tree means the mapper
// has no context. Relations to static fields that are gone are removed;
// the number removed is returned so it can be shown once.
func (s *Session) SetContext(fields *schema.Fields) int {
	s.mu.Lock()

	var flat schema.FlatList

	if fields == nil {
		s.context = nil
	} else {
		c := fields.Clone()
		s.context = &c
		flat = schema.Flatten(s.context)
		if flat == nil {
			flat = schema.FlatList{}
		}
	}

	removed := s.relations.PruneIncompatibleContext(flat)
	s.mu.Unlock()

	if removed > 0 {
		s.log.WithField("count", removed).Warn("Incompatible context relations removed")
	}

	s.changed()

	return removed
}

// LoadContext fetches the static data tree of the interface kind and
// installs it with SetContext. An answer for another kind leaves the
// context and its relations untouched.
func (s *Session) LoadContext(ctx context.Context, kind string) (int, error) {
	msg, err := s.host.GetInterfaceFields(ctx, kind, true)
	if err != nil {
		return 0, fmt.Errorf("load context %s: %w", kind, err)
	}

	if !msg.Answers(kind) {
		s.log.WithField("kind", kind).WithField("answered", msg.Kind).Debug("Interface fields of another kind ignored")
		return 0, fmt.Errorf("load context %s: %w: %s", kind, host.ErrOtherKind, msg.Kind)
	}

	return s.SetContext(&msg.Fields), nil
}

// AwaitContext installs the fields of the first pushed answer for kind,
// skipping answers left over from requests for other kinds.
func (s *Session) AwaitContext(ctx context.Context, kind string, pushes <-chan host.InterfaceFields) (int, error) {
	fields, err := host.AwaitInterfaceFields(ctx, kind, pushes)
	if err != nil {
		return 0, fmt.Errorf("await context %s: %w", kind, err)
	}

	return s.SetContext(&fields), nil
}

// flat flattens the tree of side. Callers hold s.mu.
func (s *Session) flat(side common.Side) schema.FlatList {
	if side == common.SideContext {
		return schema.Flatten(s.context)
	}

	st, ok := s.sides[side]
	if !ok {
		return nil
	}

	return schema.Flatten(&st.fields)
}

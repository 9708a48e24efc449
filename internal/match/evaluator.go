package match

import (
	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

// Relations is the read side of a relation store.
type Relations interface {
	Get(output string) (relation.Relation, bool)
}

// Evaluator answers drop questions against the current relations.
// It keeps no state of its own, so every answer reflects the relations
// at the time of the call.
type Evaluator struct {
	relations Relations
	keys      relation.MapperKeys
}

// NewEvaluator returns an evaluator over relations and the key vocabulary.
func NewEvaluator(relations Relations, keys relation.MapperKeys) *Evaluator {
	return &Evaluator{relations: relations, keys: keys}
}

// IsAvailableForDrop reports whether the output at path may take a new
// field binding under the uniqueness roles of its current keys.
func (e *Evaluator) IsAvailableForDrop(output string) bool {
	r, _ := e.relations.Get(output)
	return e.keys.IsAvailableForDrop(r)
}

// CanDropOn reports whether a field returning types may be dropped on output.
func (e *Evaluator) CanDropOn(types []string, output schema.FlatField) bool {
	return CanDrop(types, output.Type.TypesAccepted, !e.IsAvailableForDrop(output.Key()))
}

// DropTargets returns the outputs a field returning types may be dropped on.
func (e *Evaluator) DropTargets(types []string, outputs schema.FlatList) schema.FlatList {
	var out schema.FlatList

	for _, o := range outputs {
		if e.CanDropOn(types, o) {
			out = append(out, o)
		}
	}

	return out
}

// HasAvailableRelation returns true if at least one output can still take
// a field returning types.
func (e *Evaluator) HasAvailableRelation(types []string, outputs schema.FlatList) bool {
	for _, o := range outputs {
		if e.CanDropOn(types, o) {
			return true
		}
	}

	return false
}

// PossibleInputs lists the inputs that may be bound by name to output.
func PossibleInputs(output schema.FlatField, inputs schema.FlatList) schema.FlatList {
	var out schema.FlatList

	for _, in := range inputs {
		if Accepts(in.Type, output.Type) {
			out = append(out, in)
		}
	}

	return out
}

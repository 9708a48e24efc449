package match

import (
	"slices"

	"mapper-engine/internal/schema"
)

// Compatibility is how well a set of candidate types fits an accepted set.
type Compatibility int

const (
	// Incompatible means the sets share no type.
	Incompatible Compatibility = iota
	// Overlapping means the sets share a type but the candidate set is
	// larger than the accepted one, so a drop is refused.
	Overlapping
	// Accepted means every drop rule is satisfied by a shared type.
	Accepted
	// Wildcard means one of the sets contains "any".
	Wildcard
	// Identical means both sets hold the same types.
	Identical
)

const (
	VerdictIncompatible = "incompatible"
	VerdictOverlapping  = "overlapping"
	VerdictAccepted     = "accepted"
	VerdictWildcard     = "wildcard"
	VerdictIdentical    = "identical"
)

// String returns the verdict name of the level.
func (c Compatibility) String() string {
	switch c {
	case Incompatible:
		return VerdictIncompatible
	case Overlapping:
		return VerdictOverlapping
	case Accepted:
		return VerdictAccepted
	case Wildcard:
		return VerdictWildcard
	case Identical:
		return VerdictIdentical
	default:
		return "unknown"
	}
}

// Droppable returns true for the levels that allow a drop.
func (c Compatibility) Droppable() bool {
	return c >= Accepted
}

// Score maps the level onto 0..1 for ranking.
func (c Compatibility) Score() float64 {
	switch c {
	case Identical:
		return 1
	case Accepted:
		return 0.9
	case Wildcard:
		return 0.7
	case Overlapping:
		return 0.2
	default:
		return 0
	}
}

// Score compares candidate types with accepted types.
func Score(candidate, accepted []string) Compatibility {
	if sameSet(candidate, accepted) && len(candidate) > 0 {
		return Identical
	}

	if slices.Contains(candidate, schema.TypeAny) || slices.Contains(accepted, schema.TypeAny) {
		return Wildcard
	}

	if !slices.ContainsFunc(accepted, func(t string) bool { return slices.Contains(candidate, t) }) {
		return Incompatible
	}

	if len(candidate) > len(accepted) {
		return Overlapping
	}

	return Accepted
}

// CanDrop reports whether a field returning candidate types may be
// dropped on an output accepting accepted types. blocked is set when the
// output already holds a relation that excludes a field binding.
func CanDrop(candidate, accepted []string, blocked bool) bool {
	return !blocked && Score(candidate, accepted).Droppable()
}

// Accepts reports whether an input field may be bound by name to the
// output. "any" gets no special treatment here.
func Accepts(input, output schema.FieldType) bool {
	accepted := output.TypesAccepted

	return len(input.TypesReturned) <= len(accepted) &&
		slices.ContainsFunc(accepted, func(t string) bool { return slices.Contains(input.TypesReturned, t) })
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for _, t := range a {
		if !slices.Contains(b, t) {
			return false
		}
	}

	return true
}

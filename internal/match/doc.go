// Package match decides which input fields may be dropped onto which
// output fields, and ranks input fields as binding suggestions for an
// output.
//
// Compatibility is computed on type sets: the types an input field can
// be read as (types_returned) against the types an output accepts
// (types_accepted). "any" on either side is always compatible. A
// candidate set larger than the accepted set is never compatible, even
// when the two overlap.
//
// Key functions:
//   - CanDrop: the drop predicate
//   - Evaluator.CanDropOn / Evaluator.HasAvailableRelation: the predicate
//     combined with the uniqueness roles of the current relations
//   - RankCandidates: suggestion ranking by name similarity and type fit
package match

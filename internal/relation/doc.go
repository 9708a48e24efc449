// Package relation holds the relation table of a mapper: for every output
// field path, the source it is bound to and any decoration keys.
//
// A relation has at most one source. The source is either an input field
// ("name"), the whole input record ("use_input_record") or a static
// context reference ("context"). Decoration keys ("constant", "code", ...)
// are described by the host's mapper keys, whose unique roles decide which
// keys may share one output field.
//
// Store mutators take serialized paths and match prefixes per segment,
// so renaming or removing a parent field reaches all of its descendants.
package relation

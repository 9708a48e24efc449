// Package session holds the state of one mapper editing session.
//
// A Session is built once per editing instance and handed to every
// component that reads or changes the mapper: the two provider
// negotiations, the input, output and context trees, the relation table,
// the mapper keys and the draft autosave. Schema edits and the relation
// updates they imply happen under one lock, so readers never observe a
// renamed field with stale relation keys.
//
// Reset supersedes every in-flight step: results of fetches started
// before it are dropped with provider.ErrStale.
package session

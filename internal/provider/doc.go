// Package provider resolves a field schema from a remote metadata host by
// walking its discovery hierarchy one level at a time.
//
// A Negotiator starts from a provider kind (connection, remote,
// datasource, factory, type), lists the objects under it and lets the
// caller pick one per level until the host answers with a record. The
// result is the record's fields and a Descriptor that can rebuild the
// URLs of the same record later.
//
// Every fetch runs without holding the negotiator lock. A generation
// counter is captured when a step starts; a response that arrives after
// a newer step (or a reset) has begun is dropped and the superseded call
// returns ErrStale.
package provider

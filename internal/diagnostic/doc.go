// Package diagnostic provides structured errors, warnings, and notices
// produced while validating and editing mapper definitions.
//
// Key capabilities:
//   - Load-time relation problems (multiple sources, unknown paths)
//   - Submit gating (empty relation table, invalid metadata)
//   - One-shot user notices such as removed incompatible context bindings
package diagnostic

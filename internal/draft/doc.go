// Package draft persists unsaved mapper sessions so they can be resumed
// after an interruption. Drafts are JSON files keyed by a draft id and
// written a short delay after the last change.
package draft

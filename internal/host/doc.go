// Package host talks to the metadata host: provider discovery fetches,
// mapper submission and interface field requests. Client speaks HTTP,
// Memory serves canned responses, and Cached shares one fetch of the
// session-wide catalogs between concurrent callers.
package host

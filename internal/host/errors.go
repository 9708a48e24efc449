package host

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Memory for URLs without a route.
var ErrNotFound = errors.New("no such host resource")

// ErrOtherKind is returned for interface fields answering another kind.
var ErrOtherKind = errors.New("interface fields belong to another kind")

// Error is a failure reported by the host in its error envelope.
type Error struct {
	Err  string `json:"err"`
	Desc string `json:"desc"`
}

func (e *Error) Error() string {
	if e.Desc == "" {
		return e.Err
	}

	return e.Err + ": " + e.Desc
}

// StatusError is a non-2xx answer without an error envelope.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.URL, e.Code)
}

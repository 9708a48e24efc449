package provider

import (
	"errors"
	"fmt"

	"mapper-engine/internal/common"
)

var (
	// ErrWildcardValue is returned when a wildcard node is picked without
	// a literal replacement.
	ErrWildcardValue = errors.New("wildcard node needs a literal value")
	// ErrStale is returned to a step whose response arrived after a newer
	// step or a reset; its result was dropped.
	ErrStale = errors.New("negotiation step superseded")
	// ErrNoProvider is returned when a drill-down starts before a kind is selected.
	ErrNoProvider = errors.New("no provider selected")
	// ErrBusy is returned when a step starts while another is in flight.
	ErrBusy = errors.New("negotiation step in flight")
	// ErrUnknownChoice is returned for a value missing from the level.
	ErrUnknownChoice = errors.New("value is not offered at this level")
)

// Phase names the stage a connection error belongs to.
type Phase string

const (
	PhaseInputConnection  Phase = "input-connection"
	PhaseOutputConnection Phase = "output-connection"
	PhaseMapperKeys       Phase = "mapper-keys"
)

// PhaseForSide returns the connection phase of a negotiation side.
func PhaseForSide(side common.Side) Phase {
	if side == common.SideOutputs {
		return PhaseOutputConnection
	}

	return PhaseInputConnection
}

// PhaseError is a fetch failure tagged with its phase.
type PhaseError struct {
	Phase Phase
	URL   string
	Err   error
}

func (e *PhaseError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s error: %v", e.Phase, e.Err)
	}

	return fmt.Sprintf("%s error (%s): %v", e.Phase, e.URL, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

package common

// UnknownStr is returned by String methods for values outside their enum.
const UnknownStr = "unknown"

// Side names one of the schema trees edited in a mapper session.
type Side string

const (
	SideInputs  Side = "inputs"
	SideOutputs Side = "outputs"
	SideContext Side = "context"
)

// IsValid returns true if the side is a recognized value.
func (s Side) IsValid() bool {
	return s == SideInputs || s == SideOutputs || s == SideContext
}

// String returns the side name.
func (s Side) String() string {
	if !s.IsValid() {
		return UnknownStr
	}

	return string(s)
}

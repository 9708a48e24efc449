package host

import (
	"context"
	"net/url"

	"mapper-engine/internal/schema"
)

// InterfaceFields is the host's answer to a fields request. Answers are
// pushed and may belong to an earlier request for another kind.
type InterfaceFields struct {
	Kind   string        `json:"iface_kind"`
	Fields schema.Fields `json:"fields"`
}

// Answers reports whether msg is the answer to a request for kind.
func (msg InterfaceFields) Answers(kind string) bool {
	return msg.Kind == kind
}

// InterfaceFieldsURL is the request for the fields of kind.
func InterfaceFieldsURL(kind string, editing bool) string {
	u := "interfaces/" + url.PathEscape(kind) + "/fields"
	if editing {
		u += "?editing=true"
	}

	return u
}

// AwaitInterfaceFields returns the fields of the first pushed answer for
// kind, skipping answers for other kinds.
func AwaitInterfaceFields(ctx context.Context, kind string, pushes <-chan InterfaceFields) (schema.Fields, error) {
	for {
		select {
		case <-ctx.Done():
			return schema.Fields{}, ctx.Err()
		case msg, ok := <-pushes:
			if !ok {
				return schema.Fields{}, ErrNotFound
			}

			if msg.Answers(kind) {
				return msg.Fields, nil
			}
		}
	}
}

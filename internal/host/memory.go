package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
)

// Memory is an in-process host serving canned responses. It records every
// fetch and submission.
type Memory struct {
	mu        sync.Mutex
	routes    map[string][]byte
	failures  map[string]error
	ifaces    map[string]InterfaceFields
	requests  []string
	submitted [][]byte
}

// NewMemory returns an empty host.
func NewMemory() *Memory {
	return &Memory{
		routes:   map[string][]byte{},
		failures: map[string]error{},
		ifaces:   map[string]InterfaceFields{},
	}
}

// Set serves body at url. Raw strings and byte slices are served as is,
// anything else is encoded as JSON.
func (m *Memory) Set(url string, body any) error {
	var data []byte

	switch b := body.(type) {
	case string:
		data = []byte(b)
	case []byte:
		data = b
	default:
		var err error
		if data, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s: %w", url, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.routes[url] = data
	delete(m.failures, url)

	return nil
}

// Fail makes every fetch of url return err.
func (m *Memory) Fail(url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failures[url] = err
}

// SetInterfaceFields serves the fields of an interface kind.
func (m *Memory) SetInterfaceFields(msg InterfaceFields) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ifaces[msg.Kind] = msg
}

// Fetch returns the body served at url.
func (m *Memory) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, url)

	if err, ok := m.failures[url]; ok {
		return nil, err
	}

	data, ok := m.routes[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}

	return append([]byte(nil), data...), nil
}

// Submit records the encoded payload.
func (m *Memory) Submit(ctx context.Context, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failures[SubmitPath]; ok {
		return err
	}

	m.submitted = append(m.submitted, data)

	return nil
}

// GetInterfaceFields returns the fields served for kind.
func (m *Memory) GetInterfaceFields(ctx context.Context, kind string, editing bool) (InterfaceFields, error) {
	if err := ctx.Err(); err != nil {
		return InterfaceFields{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	url := InterfaceFieldsURL(kind, editing)
	m.requests = append(m.requests, url)

	msg, ok := m.ifaces[kind]
	if !ok {
		return InterfaceFields{}, fmt.Errorf("%w: %s", ErrNotFound, url)
	}

	return InterfaceFields{Kind: msg.Kind, Fields: msg.Fields.Clone()}, nil
}

// Requests lists the fetched URLs in order.
func (m *Memory) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.requests...)
}

// Submitted returns the encoded payloads in submission order.
func (m *Memory) Submitted() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([][]byte(nil), m.submitted...)
}

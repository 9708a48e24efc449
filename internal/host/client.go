package host

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DefaultTimeout bounds every host request unless configured otherwise.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps host responses.
const maxBodySize = 32 * 1024 * 1024

// SubmitPath receives mapper definitions.
const SubmitPath = "mappers"

// Client is the HTTP host. URLs passed to Fetch are relative to the base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.http.Timeout = d
	}
}

// NewClient returns a client for the host at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the host root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch issues a GET for url and returns the body.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(url), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	return c.do(req, url)
}

// Submit posts a mapper definition payload.
func (c *Client) Submit(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(SubmitPath), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req, SubmitPath)

	return err
}

// GetInterfaceFields requests the fields of an interface kind.
func (c *Client) GetInterfaceFields(ctx context.Context, kind string, editing bool) (InterfaceFields, error) {
	url := InterfaceFieldsURL(kind, editing)

	data, err := c.Fetch(ctx, url)
	if err != nil {
		return InterfaceFields{}, err
	}

	var msg InterfaceFields
	if err := json.Unmarshal(data, &msg); err != nil {
		return InterfaceFields{}, fmt.Errorf("decode interface fields: %w", err)
	}

	return msg, nil
}

func (c *Client) resolve(url string) string {
	return c.baseURL + "/" + strings.TrimLeft(url, "/")
}

func (c *Client) do(req *http.Request, url string) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	if len(data) > maxBodySize {
		return nil, fmt.Errorf("%s: response exceeds %d bytes", url, maxBodySize)
	}

	if hostErr := decodeError(data); hostErr != nil {
		return nil, hostErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	return data, nil
}

// decodeError returns the host error carried by an {"error": {...}} body.
func decodeError(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	var envelope struct {
		Error *Error `json:"error"`
	}

	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Error == nil || envelope.Error.Err == "" {
		return nil
	}

	return envelope.Error
}

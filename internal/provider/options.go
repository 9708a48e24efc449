package provider

import (
	"encoding/base64"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const optionsParam = "provider_yaml_options"

// Option is one constructor option value.
type Option struct {
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Value any    `json:"value" yaml:"value"`
}

// Options are constructor options keyed by name.
type Options map[string]Option

// QueryString renders the options as the host's query parameter, keys
// sorted and every value base64 encoded:
// provider_yaml_options={a=dmFs,b=eA==}.
func (o Options) QueryString() string {
	keys := sortedKeys(o)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+base64.StdEncoding.EncodeToString([]byte(optionText(o[k].Value))))
	}

	return optionsParam + "={" + strings.Join(parts, ",") + "}"
}

// Clone returns a shallow copy.
func (o Options) Clone() Options {
	return maps.Clone(o)
}

func optionText(v any) string {
	if v == nil {
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}

func sortedKeys(o Options) []string {
	return slices.Sorted(maps.Keys(o))
}

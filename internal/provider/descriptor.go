package provider

import (
	"errors"
	"fmt"
	"strings"
)

// Record subtypes of request-capable objects.
const (
	SubtypeRequest  = "request"
	SubtypeResponse = "response"
)

// Descriptor identifies a resolved provider record and rebuilds its URLs.
type Descriptor struct {
	Type Kind   `json:"type" yaml:"type" validate:"required"`
	Name string `json:"name" yaml:"name" validate:"required"`
	// Path is the drill-down path below the named object, "/"-led.
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Subtype string `json:"subtype,omitempty" yaml:"subtype,omitempty"`

	IsAPICall       bool `json:"is_api_call,omitempty" yaml:"is_api_call,omitempty"`
	SupportsRequest bool `json:"supports_request,omitempty" yaml:"supports_request,omitempty"`
	SupportsRead    bool `json:"supports_read,omitempty" yaml:"supports_read,omitempty"`
	SupportsUpdate  bool `json:"supports_update,omitempty" yaml:"supports_update,omitempty"`
	SupportsCreate  bool `json:"supports_create,omitempty" yaml:"supports_create,omitempty"`
	SupportsDelete  bool `json:"supports_delete,omitempty" yaml:"supports_delete,omitempty"`
	CanManageFields bool `json:"can_manage_fields,omitempty" yaml:"can_manage_fields,omitempty"`

	Descriptions []string `json:"descriptions,omitempty" yaml:"descriptions,omitempty"`
	Options      Options  `json:"options,omitempty" yaml:"options,omitempty"`
	// OptionsChanged is set when the compact form carried "?options_changed".
	OptionsChanged bool `json:"optionsChanged,omitempty" yaml:"optionsChanged,omitempty"`
}

// ErrUnknownKind is returned for descriptors of a kind missing from the catalog.
var ErrUnknownKind = errors.New("unknown provider kind")

// URLOptions tweak URL reconstruction.
type URLOptions struct {
	// WithOptions builds the constructor options URL.
	WithOptions bool
	// HasAPIContext adds the api context to the constructor options URL.
	HasAPIContext bool
	// IsRecordSearch leaves the record suffix off.
	IsRecordSearch bool
}

// URL rebuilds the fetch URL of the descriptor with the default catalog.
func (d Descriptor) URL(opts URLOptions) (string, error) {
	return DefaultCatalog.URL(d, opts)
}

// URL rebuilds the fetch URL of d under the catalog's rules.
func (c Catalog) URL(d Descriptor, opts URLOptions) (string, error) {
	spec, ok := c.Spec(d.Type)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, d.Type)
	}

	if opts.WithOptions {
		info := ""
		if d.Type == KindFactory {
			info = "provider_info/"
		}

		url := spec.URL + "/" + d.Name + "/" + info + "constructor_options?context=ui"
		if opts.HasAPIContext {
			url += "&context=api"
		}

		return url, nil
	}

	endsInSubtype := strings.HasSuffix(d.Path, "/"+SubtypeRequest) || strings.HasSuffix(d.Path, "/"+SubtypeResponse)

	path := spec.Suffix + d.Path
	if !endsInSubtype && !d.IsAPICall && !opts.IsRecordSearch {
		path += spec.RecordSuffix
	}

	if spec.SuffixRequiresOptions && len(d.Options) > 0 {
		path += "?" + d.Options.QueryString()
	}

	url := spec.URL + "/" + d.Name + path
	if d.Type == KindType && endsInSubtype {
		url += "?action=type"
	}

	return url, nil
}

// SchemaURL returns the URL of the record fields when reopening a saved
// mapper.
func (c Catalog) SchemaURL(d Descriptor) (string, error) {
	spec, ok := c.Spec(d.Type)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, d.Type)
	}

	url := spec.URL + "/" + d.Name + spec.Suffix + d.Path
	if spec.RequiresRecord {
		url += spec.RecordSuffix
	}

	return url, nil
}

// ParseDescriptor reads the compact forms "type/name/path" and
// "factory/name{key=value,...}/path".
func ParseDescriptor(s string) (Descriptor, error) {
	if s == "" {
		return Descriptor{}, errors.New("empty provider string")
	}

	if strings.HasPrefix(s, string(KindFactory)) {
		return parseFactory(s)
	}

	parts := strings.Split(s, "/")
	if len(parts) < 2 || parts[1] == "" {
		return Descriptor{}, fmt.Errorf("provider %q has no name", s)
	}

	return Descriptor{
		Type: Kind(parts[0]),
		Name: parts[1],
		Path: leadingSlash(strings.Join(parts[2:], "/")),
	}, nil
}

func parseFactory(s string) (Descriptor, error) {
	kind, rest, ok := strings.Cut(s, "/")
	if !ok || rest == "" {
		return Descriptor{}, fmt.Errorf("provider %q has no name", s)
	}

	name, _, _ := strings.Cut(rest, "{")
	name, _, _ = strings.Cut(name, "/")

	d := Descriptor{Type: Kind(kind), Name: name}

	open, closing := strings.Index(rest, "{"), strings.LastIndex(rest, "}")
	if open >= 0 && closing > open {
		d.Options = Options{}

		for _, opt := range strings.Split(rest[open+1:closing], ",") {
			if opt == "" {
				continue
			}

			k, v, _ := strings.Cut(opt, "=")
			d.Options[k] = Option{Value: v}
		}
	}

	var path string

	if i := strings.LastIndex(s, "}/"); i >= 0 {
		path = s[i+2:]
	} else if open < 0 {
		_, path, _ = strings.Cut(rest, "/")
	}

	path, _, _ = strings.Cut(path, "?")
	d.Path = leadingSlash(path)

	d.OptionsChanged = strings.Contains(s, "?options_changed")

	return d, nil
}

// String renders the compact form read by ParseDescriptor.
func (d Descriptor) String() string {
	var sb strings.Builder

	sb.WriteString(string(d.Type))
	sb.WriteByte('/')
	sb.WriteString(d.Name)

	if d.Type == KindFactory && len(d.Options) > 0 {
		sb.WriteByte('{')

		for i, k := range sortedKeys(d.Options) {
			if i > 0 {
				sb.WriteByte(',')
			}

			sb.WriteString(k + "=" + optionText(d.Options[k].Value))
		}

		sb.WriteByte('}')
	}

	sb.WriteString(d.Path)

	return sb.String()
}

// Identity returns the parts of d that name the same record: kind, name,
// path and subtype.
func (d Descriptor) Identity() string {
	return string(d.Type) + "/" + d.Name + d.Path + "#" + d.Subtype
}

func leadingSlash(p string) string {
	if p == "" || strings.HasPrefix(p, "/") {
		return p
	}

	return "/" + p
}

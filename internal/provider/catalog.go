package provider

import (
	"slices"

	"mapper-engine/internal/common"
)

// Kind is a top-level provider kind.
type Kind string

const (
	KindType       Kind = "type"
	KindConnection Kind = "connection"
	KindRemote     Kind = "remote"
	KindDatasource Kind = "datasource"
	KindFactory    Kind = "factory"
)

// Spec holds the URL rules of one provider kind.
type Spec struct {
	Kind Kind
	Desc string
	// URL lists the root objects of the kind.
	URL string
	// Filter is a flag every root object must carry to be listed.
	Filter string
	// InputFilter and OutputFilter further restrict root objects by side.
	InputFilter  string
	OutputFilter string
	// Suffix is appended after an object name when drilling down.
	Suffix string
	// RecordSuffix is appended when fetching the record.
	RecordSuffix string
	// RequiresRecord is set when the record must be fetched explicitly;
	// the record response then is the field map itself.
	RequiresRecord bool
	// WithDetails asks for child details on every drill-down.
	WithDetails bool
	// SuffixRequiresOptions marks kinds whose URLs carry constructor options.
	SuffixRequiresOptions bool
}

var specs = map[Kind]Spec{
	KindType: {
		Kind:         KindType,
		Desc:         "Data type and custom record descriptions",
		URL:          "dataprovider/types",
		RecordSuffix: "?action=type",
		WithDetails:  true,
	},
	KindConnection: {
		Kind:           KindConnection,
		Desc:           "User connections; access a data provider through a user connection",
		URL:            "remote/user",
		Filter:         "has_provider",
		Suffix:         "/provider",
		RecordSuffix:   "/record",
		RequiresRecord: true,
		WithDetails:    true,
	},
	KindRemote: {
		Kind:           KindRemote,
		Desc:           "Remote instance connections; access a data provider through a remote instance",
		URL:            "remote/qorus",
		Filter:         "has_provider",
		Suffix:         "/provider",
		RecordSuffix:   "/record",
		RequiresRecord: true,
		WithDetails:    true,
	},
	KindDatasource: {
		Kind:           KindDatasource,
		Desc:           "Database connections; access record-based data providers through a local datasource",
		URL:            "remote/datasources",
		Filter:         "has_provider",
		Suffix:         "/provider",
		RecordSuffix:   "/record",
		RequiresRecord: true,
		WithDetails:    true,
	},
	KindFactory: {
		Kind:                  KindFactory,
		Desc:                  "Data provider factories for creating data providers from options",
		URL:                   "dataprovider/factories",
		Suffix:                "/provider",
		RecordSuffix:          "/record",
		RequiresRecord:        true,
		WithDetails:           true,
		SuffixRequiresOptions: true,
	},
}

// configItemFactory replaces the factory kind for config items: the
// record comes with the details and needs no separate step.
var configItemFactory = Spec{
	Kind:                  KindFactory,
	URL:                   "dataprovider/factories",
	Suffix:                "/provider",
	SuffixRequiresOptions: true,
}

var kindOrder = []Kind{KindType, KindConnection, KindRemote, KindDatasource, KindFactory}

// Variant selects the flavour of a negotiation.
type Variant struct {
	// ConfigItem negotiates the provider of a config item.
	ConfigItem bool
	// RequiresRequest negotiates an API call: only objects supporting
	// requests are listed.
	RequiresRequest bool
	// RecordType negotiates a record-based operation (read, create, ...).
	RecordType bool
}

// Catalog is the set of provider kinds available to one negotiation.
type Catalog struct {
	variant Variant
	specs   map[Kind]Spec
}

// DefaultCatalog holds every kind with its standard rules.
var DefaultCatalog = NewCatalog(Variant{})

// NewCatalog returns the kinds available to a variant.
func NewCatalog(v Variant) Catalog {
	c := Catalog{variant: v, specs: make(map[Kind]Spec, len(specs))}
	for k, s := range specs {
		c.specs[k] = s
	}

	if v.ConfigItem {
		delete(c.specs, KindType)
		c.specs[KindFactory] = configItemFactory
	}

	if v.RequiresRequest {
		delete(c.specs, KindDatasource)
		delete(c.specs, KindType)
	}

	if v.RecordType {
		delete(c.specs, KindType)
	}

	return c
}

// Variant returns the variant the catalog was built for.
func (c Catalog) Variant() Variant {
	return c.variant
}

// Spec returns the rules of kind.
func (c Catalog) Spec(kind Kind) (Spec, bool) {
	s, ok := c.specs[kind]
	return s, ok
}

// Kinds lists the available kinds in display order.
func (c Catalog) Kinds() []Kind {
	out := make([]Kind, 0, len(c.specs))
	for _, k := range kindOrder {
		if _, ok := c.specs[k]; ok {
			out = append(out, k)
		}
	}

	return out
}

// FilterRoots drops root objects missing the kind's filter flags for side.
func (s Spec) FilterRoots(children []Child, side common.Side) []Child {
	flags := make([]string, 0, 2)
	if s.Filter != "" {
		flags = append(flags, s.Filter)
	}

	if side == common.SideInputs && s.InputFilter != "" {
		flags = append(flags, s.InputFilter)
	}

	if side == common.SideOutputs && s.OutputFilter != "" {
		flags = append(flags, s.OutputFilter)
	}

	return slices.DeleteFunc(slices.Clone(children), func(c Child) bool {
		for _, f := range flags {
			if !c.Flag(f) {
				return true
			}
		}

		return false
	})
}

// FilterChildren drops children that cannot lead to what the variant
// negotiates.
func (v Variant) FilterChildren(children []Child) []Child {
	var keep func(Child) bool

	switch {
	case v.RecordType:
		keep = func(c Child) bool {
			return c.Flag("has_record") || c.Flag("children_can_support_records") || c.Flag("has_provider")
		}
	case v.RequiresRequest:
		keep = func(c Child) bool {
			return c.Flag("supports_request") || c.Flag("children_can_support_apis") || c.Flag("has_provider")
		}
	default:
		return children
	}

	return slices.DeleteFunc(slices.Clone(children), func(c Child) bool { return !keep(c) })
}

package mapping

import (
	"mapper-engine/internal/common"
	"mapper-engine/internal/provider"
	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

// Definition is a mapper definition document.
type Definition struct {
	Metadata `yaml:",inline"`

	// Fields binds output field paths to their relations.
	Fields relation.Table `json:"fields" yaml:"fields"`

	// Options holds the provider of each side and its custom fields.
	Options MapperOptions `json:"mapper_options" yaml:"mapper_options"`

	// OptionTypes records the value type of every decoration key.
	OptionTypes []relation.OptionType `json:"output_field_option_types,omitempty" yaml:"output_field_option_types,omitempty"`
}

// Metadata is the descriptive part of a definition. It is what the
// editor's form validates.
type Metadata struct {
	Name    string  `json:"name" yaml:"name" validate:"required,max=255,excludesall=/\\"`
	Version string  `json:"version" yaml:"version" validate:"required,max=64"`
	Desc    string  `json:"desc" yaml:"desc" validate:"required"`
	Author  Authors `json:"author,omitempty" yaml:"author,omitempty" validate:"dive,required"`

	// TargetDir and TargetFile locate the definition in a source tree.
	TargetDir  string `json:"target_dir,omitempty" yaml:"target_dir,omitempty"`
	TargetFile string `json:"target_file,omitempty" yaml:"target_file,omitempty"`

	// Context names the interface whose static data the mapper reads.
	Context *ContextRef `json:"context,omitempty" yaml:"context,omitempty"`

	Groups []string `json:"groups,omitempty" yaml:"groups,omitempty" validate:"dive,required"`
}

// ContextRef identifies the interface providing static data.
type ContextRef struct {
	Kind    string `json:"iface_kind" yaml:"iface_kind" validate:"required"`
	Name    string `json:"name" yaml:"name" validate:"required"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// MapperOptions holds the two provider sides.
type MapperOptions struct {
	Input  *SideOptions `json:"mapper-input,omitempty" yaml:"mapper-input,omitempty"`
	Output *SideOptions `json:"mapper-output,omitempty" yaml:"mapper-output,omitempty"`
}

// Side returns the options of side, nil for context or a missing side.
func (o MapperOptions) Side(side common.Side) *SideOptions {
	switch side {
	case common.SideInputs:
		return o.Input
	case common.SideOutputs:
		return o.Output
	default:
		return nil
	}
}

// SideOptions is the provider of one side and the custom fields grafted
// onto its record, keyed by path.
type SideOptions struct {
	provider.Descriptor `yaml:",inline"`

	CustomFields map[string]*schema.Field `json:"custom-fields,omitempty" yaml:"custom-fields,omitempty"`
}

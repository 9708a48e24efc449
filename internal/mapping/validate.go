package mapping

import (
	"fmt"
	"sort"
	"strings"

	"mapper-engine/internal/common"
	"mapper-engine/internal/diagnostic"
	"mapper-engine/internal/match"
	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

// Schemas are the resolved trees a definition is checked against. A nil
// list skips the checks of its side; Keys may be nil as well.
type Schemas struct {
	Inputs  schema.FlatList
	Outputs schema.FlatList
	Context schema.FlatList
	Keys    relation.MapperKeys
}

// Validate checks a definition against the resolved schemas and collects
// every problem instead of stopping at the first one.
func Validate(d *Definition, s Schemas) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if d == nil {
		res.AddError("definition_is_nil", "mapper definition is nil", "", "")
		return res
	}

	validateMetadata(res, &d.Metadata)

	live := d.Fields.FilterEmpty()
	if len(live) == 0 {
		res.AddError("no_relations", "mapper has no relations", "", "")
	}

	outputs := make([]string, 0, len(live))
	for path := range live {
		outputs = append(outputs, path)
	}

	sort.Strings(outputs)

	for _, path := range outputs {
		validateRelation(res, s, path, live[path])
	}

	validateCustomFields(res, common.SideInputs, d.Options.Input)
	validateCustomFields(res, common.SideOutputs, d.Options.Output)

	return res
}

// validateRelation checks one output binding.
func validateRelation(res *diagnostic.Diagnostics, s Schemas, path string, r relation.Relation) {
	var (
		output    schema.FlatField
		hasOutput bool
	)

	if s.Outputs != nil {
		output, hasOutput = s.Outputs.Find(path)
		if !hasOutput {
			res.AddError("unknown_output_field", fmt.Sprintf("output field %q does not exist", path),
				common.SideOutputs, path, nearest(s.Outputs, path)...)
		}
	}

	switch r.Source.Kind {
	case relation.SourceField:
		validateFieldSource(res, s, path, r.Source.Field, output, hasOutput)
	case relation.SourceContext:
		validateContextSource(res, s, path, r.Source.Context)
	}

	validateKeys(res, s.Keys, path, r)
}

func validateFieldSource(
	res *diagnostic.Diagnostics,
	s Schemas,
	path string,
	input schema.Path,
	output schema.FlatField,
	hasOutput bool,
) {
	if s.Inputs == nil {
		return
	}

	in, ok := s.Inputs.Find(input.String())
	if !ok {
		res.AddError("unknown_input_field",
			fmt.Sprintf("output field %q is bound to missing input field %q", path, input),
			common.SideInputs, input.String(), nearest(s.Inputs, input.String())...)

		return
	}

	if hasOutput && !match.CanDrop(in.Type.TypesReturned, output.Type.TypesAccepted, false) {
		res.AddWarning("incompatible_types",
			fmt.Sprintf("input %q returns %s but output %q accepts %s", input,
				typeList(in.Type.TypesReturned), path, typeList(output.Type.TypesAccepted)),
			common.SideOutputs, path)
	}
}

func validateContextSource(res *diagnostic.Diagnostics, s Schemas, path, ctx string) {
	name, ok := relation.StaticDataFieldname(ctx)
	if !ok {
		return
	}

	if s.Context == nil {
		res.AddError("missing_context",
			fmt.Sprintf("output field %q reads static data but the mapper has no context", path),
			common.SideContext, path)

		return
	}

	if !s.Context.Has(name) {
		res.AddError("unknown_context_field",
			fmt.Sprintf("output field %q reads missing static data field %q", path, name),
			common.SideContext, name, nearest(s.Context, name)...)
	}
}

func validateKeys(res *diagnostic.Diagnostics, keys relation.MapperKeys, path string, r relation.Relation) {
	if keys == nil {
		return
	}

	for name := range r.Keys {
		if _, ok := keys[name]; !ok {
			res.AddWarning("unknown_key", fmt.Sprintf("output field %q uses unknown key %q", path, name),
				common.SideOutputs, path)
		}
	}

	if conflicts := keys.Conflicts(r); len(conflicts) > 0 {
		res.AddError("conflicting_keys",
			fmt.Sprintf("output field %q combines keys that exclude each other: %s", path, strings.Join(conflicts, ", ")),
			common.SideOutputs, path)
	}
}

func validateCustomFields(res *diagnostic.Diagnostics, side common.Side, opts *SideOptions) {
	if opts == nil {
		return
	}

	for key, f := range opts.CustomFields {
		if f == nil || f.Name == "" {
			res.AddError("invalid_custom_field", fmt.Sprintf("custom field %q has no name", key), side, key)
			continue
		}

		if schema.ParsePath(key).Name() != f.Name {
			res.AddError("invalid_custom_field",
				fmt.Sprintf("custom field %q is stored under %q", f.Name, key), side, key)
		}
	}
}

func typeList(types []string) string {
	if len(types) == 0 {
		return "nothing"
	}

	return strings.Join(types, "|")
}

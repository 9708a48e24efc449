package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapper-engine/internal/common"
	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

func sampleSchemas() Schemas {
	return Schemas{
		Inputs:  flat(inputTree()),
		Outputs: flat(outputTree()),
		Context: flat(contextTree()),
		Keys:    sampleKeys(),
	}
}

func TestValidate_ValidDefinition(t *testing.T) {
	d, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	res := Validate(d, sampleSchemas())
	assert.True(t, res.IsValid(), "unexpected errors: %v", res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidate_NilDefinition(t *testing.T) {
	res := Validate(nil, Schemas{})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "definition_is_nil", res.Errors[0].Code)
}

func TestValidate_SkipsMissingSides(t *testing.T) {
	d, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	d.Fields["ghost"] = relation.Relation{Source: relation.FieldSource(schema.ParsePath("nope"))}

	res := Validate(d, Schemas{Context: flat(contextTree())})
	assert.True(t, res.IsValid())
}

func TestValidate_Problems(t *testing.T) {
	field := func(p string) relation.Relation {
		return relation.Relation{Source: relation.FieldSource(schema.ParsePath(p))}
	}

	tests := []struct {
		name     string
		mutate   func(d *Definition)
		schemas  func(s *Schemas)
		code     string
		warning  bool
		fieldRef string
	}{
		{
			name:     "missing name",
			mutate:   func(d *Definition) { d.Name = "" },
			code:     "invalid_metadata",
			fieldRef: "Metadata.Name",
		},
		{
			name:     "slash in name",
			mutate:   func(d *Definition) { d.Name = "a/b" },
			code:     "invalid_metadata",
			fieldRef: "Metadata.Name",
		},
		{
			name:   "no live relations",
			mutate: func(d *Definition) { d.Fields = relation.Table{"empty": {}} },
			code:   "no_relations",
		},
		{
			name:     "unknown output",
			mutate:   func(d *Definition) { d.Fields["ghost"] = field("order_id") },
			code:     "unknown_output_field",
			fieldRef: "ghost",
		},
		{
			name:     "unknown input",
			mutate:   func(d *Definition) { d.Fields["id"] = field("nope") },
			code:     "unknown_input_field",
			fieldRef: "nope",
		},
		{
			name:     "incompatible types",
			mutate:   func(d *Definition) { d.Fields["status"] = field("order_id") },
			code:     "incompatible_types",
			warning:  true,
			fieldRef: "status",
		},
		{
			name:     "missing context",
			schemas:  func(s *Schemas) { s.Context = nil },
			code:     "missing_context",
			fieldRef: "origin",
		},
		{
			name: "unknown context field",
			mutate: func(d *Definition) {
				d.Fields["origin"] = relation.Relation{Source: relation.ContextSource(schema.ParsePath("gone"))}
			},
			code:     "unknown_context_field",
			fieldRef: "gone",
		},
		{
			name: "unknown key",
			mutate: func(d *Definition) {
				d.Fields["status"] = relation.Relation{Keys: map[string]any{"weird": 1}}
			},
			code:     "unknown_key",
			warning:  true,
			fieldRef: "status",
		},
		{
			name: "conflicting keys",
			mutate: func(d *Definition) {
				r := field("customer.name")
				r.Keys = map[string]any{"constant": "x"}
				d.Fields["customer.name"] = r
			},
			code:     "conflicting_keys",
			fieldRef: "customer.name",
		},
		{
			name: "custom field key mismatch",
			mutate: func(d *Definition) {
				d.Options.Output.CustomFields["other"] = d.Options.Output.CustomFields["note"]
			},
			code:     "invalid_custom_field",
			fieldRef: "other",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse([]byte(sampleYAML))
			require.NoError(t, err)

			s := sampleSchemas()
			if tt.mutate != nil {
				tt.mutate(d)
			}

			if tt.schemas != nil {
				tt.schemas(&s)
			}

			res := Validate(d, s)
			require.Equal(t, 1, res.Count(tt.code), "errors: %v warnings: %v", res.Errors, res.Warnings)

			group := res.Errors
			if tt.warning {
				group = res.Warnings
				assert.True(t, res.IsValid())
			}

			require.NotEmpty(t, group)

			found := false
			for _, diag := range group {
				if diag.Code == tt.code {
					found = true
					assert.Equal(t, tt.fieldRef, diag.FieldPath)
				}
			}

			assert.True(t, found)
		})
	}
}

func TestValidate_SuggestsNearestField(t *testing.T) {
	d, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	d.Fields["stauts"] = d.Fields["status"]
	delete(d.Fields, "status")

	res := Validate(d, sampleSchemas())
	require.Equal(t, 1, res.Count("unknown_output_field"))

	diag := res.Errors[0]
	for _, e := range res.Errors {
		if e.Code == "unknown_output_field" {
			diag = e
		}
	}

	assert.Equal(t, common.SideOutputs, diag.Side)
	assert.Contains(t, diag.Suggestions, "status")
}

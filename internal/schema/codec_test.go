package schema

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFields_UnmarshalJSON_KeepsOrder(t *testing.T) {
	data := `{
		"zeta": {"type": {"name": "string", "types_returned": ["string"]}},
		"alpha": {"name": "ignored", "type": {"name": "hash", "can_manage_fields": true, "fields": {
			"inner": {"type": {"name": "int"}}
		}}},
		"mid": {"desc": "middle", "type": {"name": "*int"}}
	}`

	var fields Fields
	require.NoError(t, json.Unmarshal([]byte(data), &fields))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, fields.Names())

	alpha, ok := fields.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", alpha.Name, "object key must win over the name attribute")
	assert.True(t, alpha.Type.CanManageFields)

	inner, err := fields.Walk(Path{"alpha", "inner"})
	require.NoError(t, err)
	assert.Equal(t, "int", inner.Type.Name)

	mid, _ := fields.Get("mid")
	assert.True(t, mid.Type.IsMaybe())
	assert.Equal(t, "*int", mid.Type.DisplayName())
}

func TestFields_JSONRoundTripOrder(t *testing.T) {
	fields := sampleTree()

	data, err := json.Marshal(fields)
	require.NoError(t, err)

	var back Fields
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, fields.Names(), back.Names())
	assert.Equal(t, Flatten(&fields).Index(Path{"a", "y", "z"}), Flatten(&back).Index(Path{"a", "y", "z"}))
}

func TestFields_UnmarshalJSON_Null(t *testing.T) {
	var fields Fields
	require.NoError(t, json.Unmarshal([]byte(`null`), &fields))
	assert.Equal(t, 0, fields.Len())

	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &fields))
}

func TestFields_YAML(t *testing.T) {
	src := `
b:
  type:
    name: int
a:
  type:
    name: hash
    can_manage_fields: true
    fields:
      c:
        isCustom: true
        type:
          name: string
`

	var fields Fields
	require.NoError(t, yaml.Unmarshal([]byte(src), &fields))
	assert.Equal(t, []string{"b", "a"}, fields.Names())

	c, err := fields.Walk(ParsePath("a.c"))
	require.NoError(t, err)
	assert.True(t, c.IsCustom)
	assert.Equal(t, "c", c.Name)

	out, err := yaml.Marshal(fields)
	require.NoError(t, err)

	var back Fields
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, []string{"b", "a"}, back.Names())

	b, _ := back.Get("b")
	assert.False(t, b.Type.HasFields())
	assert.NotContains(t, string(out), "fields: {}")
}

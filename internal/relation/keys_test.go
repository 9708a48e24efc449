package relation

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapper-engine/internal/schema"
)

func testKeys() MapperKeys {
	return MapperKeys{
		KeyName:           {UniqueRoles: []string{"source"}},
		KeyContext:        {UniqueRoles: []string{"source"}},
		KeyUseInputRecord: {UniqueRoles: []string{"source"}},
		"constant":        {UniqueRoles: []string{"source"}, ValueType: "any", RequiresFieldType: true},
		"code":            {UniqueRoles: []string{"*"}, ValueType: "string"},
		"default":         {ValueType: "auto", RequiresFieldType: false},
		"runtime":         {RequiresRoles: []string{"source"}, ValueType: "string"},
	}
}

func TestMapperKeys_IsAvailableForDrop(t *testing.T) {
	keys := testKeys()

	assert.True(t, keys.IsAvailableForDrop(Relation{}))
	assert.False(t, keys.IsAvailableForDrop(Relation{Keys: map[string]any{"constant": "x"}}))
	assert.False(t, keys.IsAvailableForDrop(Relation{Keys: map[string]any{"code": "fn"}}))
	assert.True(t, keys.IsAvailableForDrop(Relation{Keys: map[string]any{"default": 1}}))
	assert.False(t, keys.IsAvailableForDrop(Relation{Source: ContextAllSource()}))
}

func TestMapperKeys_IsAvailableForDrop_Decoded(t *testing.T) {
	var keys MapperKeys
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": {"unique_roles": ["source"]},
		"constant": {"unique_roles": ["source"]}
	}`), &keys))

	assert.False(t, keys.IsAvailableForDrop(Relation{Keys: map[string]any{"constant": "x"}}))
}

func TestMapperKeys_CanAddKey(t *testing.T) {
	keys := testKeys()

	empty := Relation{}
	assert.True(t, keys.CanAddKey(empty, "code"))
	assert.True(t, keys.CanAddKey(empty, "constant"))
	assert.False(t, keys.CanAddKey(empty, "runtime"), "runtime requires a source role")

	bound := field("in.a")
	assert.False(t, keys.CanAddKey(bound, "constant"))
	assert.False(t, keys.CanAddKey(bound, "code"))
	assert.True(t, keys.CanAddKey(bound, "runtime"))
	assert.True(t, keys.CanAddKey(bound, "default"))
	assert.False(t, keys.CanAddKey(bound, KeyName))

	exclusive := Relation{Keys: map[string]any{"code": "fn"}}
	assert.False(t, keys.CanAddKey(exclusive, "default"))
}

func TestMapperKeys_Conflicts(t *testing.T) {
	keys := testKeys()

	bound := field("in.a")
	assert.Empty(t, keys.Conflicts(bound))

	bound.Keys = map[string]any{"runtime": "x"}
	assert.Empty(t, keys.Conflicts(bound))

	bound.Keys = map[string]any{"constant": 1}
	assert.Equal(t, []string{KeyName, "constant"}, keys.Conflicts(bound))

	assert.Equal(t, []string{"runtime"}, keys.Conflicts(Relation{Keys: map[string]any{"runtime": "x"}}))
	assert.Equal(t, []string{"code", "default"}, keys.Conflicts(Relation{Keys: map[string]any{"code": "fn", "default": 1}}))
}

func TestRelation_Without(t *testing.T) {
	r := field("in.a")
	r.Keys = map[string]any{"default": 1}

	assert.True(t, r.Without(KeyName).Source.IsZero())
	assert.Equal(t, r.Keys, r.Without(KeyName).Keys)
	assert.Empty(t, r.Without("default").Keys)
	assert.False(t, r.Without("default").Source.IsZero())
	assert.Len(t, r.Keys, 1)
}

func TestStore_RemoveKey(t *testing.T) {
	keys := testKeys()

	s := NewStore(Table{
		"out": {Source: FieldSource(schema.Path{"in"}), Keys: map[string]any{"runtime": "x", "default": 1}},
	})

	s.RemoveKey("out", KeyName, keys)

	r, _ := s.Get("out")
	assert.True(t, r.Source.IsZero())
	assert.NotContains(t, r.Keys, "runtime", "keys requiring the removed role go too")
	assert.Contains(t, r.Keys, "default")
}

func TestMapperKeys_KeyType(t *testing.T) {
	keys := testKeys()
	out := &schema.Field{Name: "o", Type: schema.FieldType{Name: "*int", BaseType: "int"}}

	assert.Equal(t, "int", keys.KeyType("constant", out))
	assert.Equal(t, "auto", keys.KeyType("default", out))
	assert.Equal(t, "string", keys.KeyType("code", out))
	assert.Equal(t, "any", keys.KeyType("constant", nil))
}

func TestMapperKeys_OptionTypes(t *testing.T) {
	keys := testKeys()
	outputs := newFlat(t, `{"b": {"type": {"name": "string", "base_type": "string"}}, "a": {"type": {"name": "int", "base_type": "int"}}}`)

	table := Table{
		"b": {Source: FieldSource(schema.Path{"in"}), Keys: map[string]any{"runtime": "x"}},
		"a": {Keys: map[string]any{"constant": 1, "default": 2}},
	}

	assert.Equal(t, []OptionType{
		{OutputField: "a", Field: "constant", Type: "int"},
		{OutputField: "a", Field: "default", Type: "auto"},
		{OutputField: "b", Field: "runtime", Type: "string"},
	}, keys.OptionTypes(table, outputs))
}

package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapper-engine/internal/provider"
	"mapper-engine/internal/relation"
)

func TestParse(t *testing.T) {
	d, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.NotNil(t, d)

	assert.Equal(t, "order-export", d.Name)
	assert.Equal(t, DefaultVersion, d.Version)
	assert.Equal(t, Authors{"Jane Doe", "John Roe"}, d.Author)

	require.Len(t, d.Fields, 5)
	assert.Equal(t, relation.SourceField, d.Fields["id"].Source.Kind)
	assert.Equal(t, "order_id", d.Fields["id"].Source.Field.String())
	assert.Equal(t, relation.SourceContext, d.Fields["origin"].Source.Kind)
	assert.Equal(t, "new", d.Fields["status"].Keys["constant"])
	assert.True(t, d.Fields["empty"].IsEmpty())

	require.NotNil(t, d.Options.Input)
	assert.Equal(t, provider.KindConnection, d.Options.Input.Type)
	assert.Equal(t, "/orders", d.Options.Input.Path)

	require.NotNil(t, d.Options.Output)
	require.Contains(t, d.Options.Output.CustomFields, "note")
	assert.True(t, d.Options.Output.CustomFields["note"].IsCustom)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("fields: [1, 2"))
	require.Error(t, err)

	_, err = Parse([]byte(`
fields:
  out:
    name: a
    context: "$static:*"
`))
	require.ErrorIs(t, err, relation.ErrMultipleSources)

	_, err = ParseJSON([]byte(`{"name": 1}`))
	require.Error(t, err)
}

func TestAuthors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want Authors
	}{
		{"scalar", `author: Jane`, Authors{"Jane"}},
		{"empty scalar", `author: ""`, Authors{}},
		{"names", `author: [Jane, John]`, Authors{"Jane", "John"}},
		{"objects", "author:\n  - name: Jane\n", Authors{"Jane"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Author)
		})
	}

	d, err := ParseJSON([]byte(`{"author": ["Jane", {"name": "John"}]}`))
	require.NoError(t, err)
	assert.Equal(t, Authors{"Jane", "John"}, d.Author)
	assert.Equal(t, "Jane", d.Author.First())

	d, err = ParseJSON([]byte(`{"author": "Jane"}`))
	require.NoError(t, err)
	assert.Equal(t, Authors{"Jane"}, d.Author)

	_, err = Parse([]byte("author: {name: Jane}"))
	require.Error(t, err)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	d, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	dir := t.TempDir()

	for _, name := range []string{"mapper.yaml", "mapper.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(d, path))

			back, err := LoadFile(path)
			require.NoError(t, err)

			assert.Equal(t, d.Metadata, back.Metadata)
			assert.True(t, d.Fields.Equals(back.Fields))
			assert.Equal(t, d.Options.Input.Descriptor, back.Options.Input.Descriptor)
			assert.Equal(t, d.Options.Output.CustomFields["note"].Name, back.Options.Output.CustomFields["note"].Name)
		})
	}

	data, err := os.ReadFile(filepath.Join(dir, "mapper.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mapper-input"`)
	assert.Contains(t, string(data), `"author": [`)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Path
	}{
		{"empty", "", nil},
		{"single", "a", Path{"a"}},
		{"nested", "a.b.c", Path{"a", "b", "c"}},
		{"escaped dot", `a\.b.c`, Path{"a.b", "c"}},
		{"escaped leaf", `root.x\.y`, Path{"root", "x.y"}},
		{"escaped backslash", `a\\.b`, Path{`a\`, "b"}},
		{"backslash before dot", `a\\\.b`, Path{`a\.b`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePath(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestPath_RoundTrip(t *testing.T) {
	for _, p := range []Path{
		{`a\`, "b"},
		{`\`, `\`},
		{"a", `b\`},
		{`x\.y`, "z"},
		{`c:\dir`, "name"},
	} {
		t.Run(p.String(), func(t *testing.T) {
			assert.Equal(t, p, ParsePath(p.String()))
		})
	}

	assert.Equal(t, Path{`c:\dir`}, ParsePath(`c:\dir`))
}

func TestPath_HasPrefix(t *testing.T) {
	tests := []struct {
		path, prefix string
		want         bool
	}{
		{"a.b", "a", true},
		{"a.b", "a.b", true},
		{"a.bb", "a.b", false},
		{"a", "a.b", false},
		{"a.b", "", false},
		{`a\.b.c`, "a", false},
		{`a\.b.c`, `a\.b`, true},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.prefix, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPathPrefix(tt.path, tt.prefix))
		})
	}
}

func TestReplacePathPrefix(t *testing.T) {
	got, ok := ReplacePathPrefix("a.b.c", "a.b", "a.x")
	assert.True(t, ok)
	assert.Equal(t, "a.x.c", got)

	got, ok = ReplacePathPrefix("a.bb", "a.b", "a.x")
	assert.False(t, ok)
	assert.Equal(t, "a.bb", got)

	got, ok = ReplacePathPrefix("a", "a", `new\.name`)
	assert.True(t, ok)
	assert.Equal(t, `new\.name`, got)
}

func TestPath_ParentAndChild(t *testing.T) {
	p := Path{"a", "b"}
	child := p.Child("c")

	assert.Equal(t, Path{"a", "b", "c"}, child)
	assert.Equal(t, Path{"a", "b"}, p, "Child must not alias the receiver")
	assert.Equal(t, p, child.Parent())
	assert.Nil(t, Path{"a"}.Parent())
	assert.Equal(t, "c", child.Name())
	assert.Empty(t, Path(nil).Name())
}

func TestEscapeName(t *testing.T) {
	assert.Equal(t, `x\.y`, EscapeName("x.y"))
	assert.Equal(t, "x.y", UnescapeName(EscapeName("x.y")))
	assert.Equal(t, "plain", EscapeName("plain"))
	assert.Equal(t, `x\\`, EscapeName(`x\`))
	assert.Equal(t, `x\.`, UnescapeName(EscapeName(`x\.`)))
}

func TestPath_DeepPath(t *testing.T) {
	assert.Equal(t, []string{"a", "type", "fields", "b", "type", "fields", "c"}, ParsePath("a.b.c").DeepPath())
	assert.Equal(t, []string{"a"}, Path{"a"}.DeepPath())
	assert.Empty(t, Path(nil).DeepPath())
}

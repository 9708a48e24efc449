package schema

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashType(children ...*Field) FieldType {
	return FieldType{Name: "hash", BaseType: "hash", CanManageFields: true, Fields: NewFields(children...)}
}

func leaf(name, typ string) *Field {
	return &Field{Name: name, Type: FieldType{Name: typ, BaseType: typ, TypesReturned: []string{typ}, TypesAccepted: []string{typ}}}
}

func node(name string, children ...*Field) *Field {
	return &Field{Name: name, Type: hashType(children...)}
}

func sampleTree() Fields {
	return NewFields(
		node("a",
			leaf("x", "string"),
			node("y", leaf("z", "int")),
		),
		leaf("b", "int"),
	)
}

func TestFlatten(t *testing.T) {
	fields := sampleTree()
	flat := Flatten(&fields)

	require.Len(t, flat, 5)

	keys := make([]string, 0, len(flat))
	for _, f := range flat {
		keys = append(keys, f.Key())
	}

	assert.Equal(t, []string{"a", "a.x", "a.y", "a.y.z", "b"}, keys)

	assert.Equal(t, 0, flat[0].Level)
	assert.False(t, flat[0].IsChild)
	assert.Nil(t, flat[0].ParentPath)
	assert.Empty(t, flat[0].Parent)

	assert.Equal(t, 2, flat[3].Level)
	assert.True(t, flat[3].IsChild)
	assert.Equal(t, Path{"a", "y"}, flat[3].ParentPath)
	assert.Equal(t, "y", flat[3].Parent)
}

func TestFlatten_EscapedNames(t *testing.T) {
	fields := NewFields(node("a.b", leaf("c", "string")))
	flat := Flatten(&fields)

	require.Len(t, flat, 2)
	assert.Equal(t, `a\.b`, flat[0].Key())
	assert.Equal(t, `a\.b.c`, flat[1].Key())
	assert.True(t, flat.Has(`a\.b.c`))
	assert.False(t, flat.Has("a.b.c"))
}

func TestFlatten_Empty(t *testing.T) {
	assert.Empty(t, Flatten(nil))

	var fields Fields
	assert.Empty(t, Flatten(&fields))
}

func TestLastChildIndex(t *testing.T) {
	fields := sampleTree()
	flat := Flatten(&fields)

	a, ok := flat.Find("a")
	require.True(t, ok)
	assert.Equal(t, 2, LastChildIndex(a, flat))

	b, ok := flat.Find("b")
	require.True(t, ok)
	assert.Equal(t, 0, LastChildIndex(b, flat))

	// a list that does not hold the children
	assert.Equal(t, -1, LastChildIndex(a, flat[:1]))
}

func TestCustomRoots(t *testing.T) {
	custom := &Field{Name: "c", IsCustom: true, FirstCustomInHierarchy: true, Type: hashType(
		&Field{Name: "d", IsCustom: true, Type: FieldType{Name: "string"}},
	)}
	fields := NewFields(leaf("a", "string"), custom)

	roots := Flatten(&fields).CustomRoots()
	require.Len(t, roots, 1)
	assert.Equal(t, "c", roots[0].Key())
}

// buildTree grows a tree from a recipe: each step adds a node under the
// step-th existing node modulo the count, or at the top when it is zero.
func buildTree(recipe []int) (Fields, int) {
	var (
		root  Fields
		nodes []*Field
	)

	for i, step := range recipe {
		f := node(fmt.Sprintf("n%d", i))

		if step == 0 || len(nodes) == 0 {
			root.Set(f)
		} else {
			parent := nodes[step%len(nodes)]
			parent.Type.Fields.Set(f)
		}

		nodes = append(nodes, f)
	}

	return root, len(nodes)
}

func TestFlatten_PropertyTests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("flattening visits every node once", prop.ForAll(
		func(recipe []int) bool {
			tree, count := buildTree(recipe)
			return len(Flatten(&tree)) == count
		},
		gen.SliceOf(gen.IntRange(0, 8)),
	))

	properties.Property("descendants form a contiguous block after their ancestor", prop.ForAll(
		func(recipe []int) bool {
			tree, _ := buildTree(recipe)
			flat := Flatten(&tree)

			for i, f := range flat {
				inBlock := true

				for _, later := range flat[i+1:] {
					isDesc := later.Path.HasPrefix(f.Path)
					if isDesc && !inBlock {
						return false
					}

					if !isDesc {
						inBlock = false
					}
				}

				for _, earlier := range flat[:i] {
					if earlier.Path.HasPrefix(f.Path) {
						return false
					}
				}
			}

			return true
		},
		gen.SliceOf(gen.IntRange(0, 8)),
	))

	properties.Property("parent path and level agree with the path", prop.ForAll(
		func(recipe []int) bool {
			tree, _ := buildTree(recipe)

			for _, f := range Flatten(&tree) {
				if f.Level != len(f.Path)-1 {
					return false
				}

				if !f.ParentPath.Equals(f.Path.Parent()) {
					return false
				}
			}

			return true
		},
		gen.SliceOf(gen.IntRange(0, 8)),
	))

	properties.Property("last child index points at a direct child", prop.ForAll(
		func(recipe []int) bool {
			tree, _ := buildTree(recipe)
			flat := Flatten(&tree)

			for i, f := range flat {
				idx := LastChildIndex(f, flat)
				if !f.Type.HasFields() {
					if idx != 0 {
						return false
					}

					continue
				}

				if idx <= i || !flat[idx].ParentPath.Equals(f.Path) {
					return false
				}
			}

			return true
		},
		gen.SliceOf(gen.IntRange(0, 8)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

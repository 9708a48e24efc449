package draft

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mapper-engine/internal/mapping"
	"mapper-engine/internal/provider"
	"mapper-engine/internal/relation"
	"mapper-engine/internal/schema"
)

func sampleDraft() *Draft {
	return &Draft{
		ID:             "iface-1",
		InterfaceKind:  InterfaceKind,
		Fields:         mapping.Metadata{Name: "m", Version: "1.0", Desc: "d"},
		SelectedFields: []string{"author"},
		Diagram: Diagram{
			Inputs: schema.NewFields(
				&schema.Field{Name: "b", Type: schema.FieldType{Name: "string"}},
				&schema.Field{Name: "a", Type: schema.FieldType{Name: "int"}},
			),
			Outputs: schema.NewFields(&schema.Field{Name: "out", Type: schema.FieldType{Name: "int"}}),
			Relations: relation.Table{
				"out": {Source: relation.FieldSource(schema.ParsePath("a"))},
			},
			InputProvider: provider.State{
				Kind: provider.KindConnection,
				Levels: []provider.Level{{
					Values: []provider.Choice{{Name: "conn", URL: "remote/user", Suffix: "/provider"}},
					Choice: "conn",
					Value:  "conn",
				}},
				Descriptor: &provider.Descriptor{Type: provider.KindConnection, Name: "conn", Path: "/t"},
			},
			MapperKeys: relation.MapperKeys{"constant": {ValueType: "string"}},
		},
	}
}

func TestID(t *testing.T) {
	assert.Equal(t, "iface-1", ID("", "iface-1"))
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", ID("", "d41d8cd98f00b204e9800998ecf8427e"))
	assert.Equal(t, "acbd18db4cc2f85cedef654fccc4a4d8", ID("foo", "iface-1"))
}

func TestDraft_HasContent(t *testing.T) {
	var nilDraft *Draft
	assert.False(t, nilDraft.HasContent())
	assert.False(t, (&Draft{ID: "x"}).HasContent())
	assert.False(t, (&Draft{Diagram: Diagram{Relations: relation.Table{"o": {}}}}).HasContent())

	assert.True(t, sampleDraft().HasContent())
	assert.True(t, (&Draft{Diagram: Diagram{OutputProvider: provider.State{Kind: provider.KindType}}}).HasContent())
	assert.True(t, (&Draft{Fields: mapping.Metadata{Desc: "x"}}).HasContent())
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "drafts")

	s, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = s.Load(ctx, "iface-1")
	require.ErrorIs(t, err, ErrNotFound)

	d := sampleDraft()
	require.NoError(t, s.Save(ctx, d))

	back, err := s.Load(ctx, "iface-1")
	require.NoError(t, err)

	assert.Equal(t, d.Fields, back.Fields)
	assert.Equal(t, d.SelectedFields, back.SelectedFields)
	assert.Equal(t, []string{"b", "a"}, back.Diagram.Inputs.Names())
	assert.True(t, d.Diagram.Relations.Equals(back.Diagram.Relations))
	assert.Equal(t, d.Diagram.InputProvider.Kind, back.Diagram.InputProvider.Kind)
	assert.Equal(t, d.Diagram.InputProvider.Levels, back.Diagram.InputProvider.Levels)
	assert.Equal(t, d.Diagram.InputProvider.Descriptor, back.Diagram.InputProvider.Descriptor)
	assert.Equal(t, d.Diagram.MapperKeys, back.Diagram.MapperKeys)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "iface-1.json", entries[0].Name())

	require.NoError(t, s.Delete(ctx, "iface-1"))
	require.NoError(t, s.Delete(ctx, "iface-1"))

	_, err = s.Load(ctx, "iface-1")
	require.ErrorIs(t, err, ErrNotFound)

	require.Error(t, s.Save(ctx, &Draft{ID: "../escape"}))
	require.Error(t, s.Save(ctx, &Draft{}))
}

type countingStore struct {
	saves atomic.Int32
	last  atomic.Pointer[Draft]
}

func (c *countingStore) Save(_ context.Context, d *Draft) error {
	c.saves.Add(1)
	c.last.Store(d)

	return nil
}

func (c *countingStore) Load(context.Context, string) (*Draft, error) { return nil, ErrNotFound }

func (c *countingStore) Delete(context.Context, string) error { return nil }

func TestDebouncer(t *testing.T) {
	var runs atomic.Int32

	d := NewDebouncer(20*time.Millisecond, func() { runs.Add(1) })

	for range 5 {
		d.Trigger()
	}

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	d.Flush()
	assert.Equal(t, int32(1), runs.Load(), "nothing pending")

	d.Trigger()
	d.Flush()
	assert.Equal(t, int32(2), runs.Load())

	d.Trigger()
	d.Stop()
	d.Trigger()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load())
}

func TestAutosaver(t *testing.T) {
	store := &countingStore{}

	var current atomic.Pointer[Draft]
	current.Store(&Draft{ID: "empty"})

	a := NewAutosaver(store, time.Hour, func() *Draft { return current.Load() }, nil)
	defer a.Close()

	a.Changed()
	a.Flush()
	assert.Equal(t, int32(0), store.saves.Load(), "empty drafts are not saved")

	current.Store(sampleDraft())
	a.Changed()
	a.Flush()

	require.Equal(t, int32(1), store.saves.Load())
	assert.Equal(t, "iface-1", store.last.Load().ID)
	assert.False(t, store.last.Load().SavedAt.IsZero())
}

// Package testutil builds legend fixtures for tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/legend/internal/engine"
	"github.com/zjrosen/legend/internal/legend"
)

// Fixture is a built legend: the tree, the engine that populated it and the
// layers-only facade.
type Fixture struct {
	Tree   *legend.Tree
	Engine *engine.Memory
	Layers *legend.LayerCollection
}

// Builder accumulates entries and reports them through an engine in order.
type Builder struct {
	t       *testing.T
	root    legend.Handle
	entries []entryData
	opts    []legend.Option
}

// NewBuilder creates a builder whose tree root uses rootHandle.
func NewBuilder(t *testing.T, rootHandle legend.Handle) *Builder {
	t.Helper()
	return &Builder{t: t, root: rootHandle}
}

// WithTreeOptions passes options to legend.NewTree.
func (b *Builder) WithTreeOptions(opts ...legend.Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// WithGroup adds a group under parent (appended unless At is given).
func (b *Builder) WithGroup(h legend.Handle, name string, parent legend.Handle, opts ...EntryOption) *Builder {
	return b.with(entryData{handle: h, kind: legend.KindGroup, name: name, parent: parent}, opts)
}

// WithLayer adds a layer under parent (appended unless At is given).
func (b *Builder) WithLayer(h legend.Handle, name string, parent legend.Handle, opts ...EntryOption) *Builder {
	return b.with(entryData{handle: h, kind: legend.KindLayer, name: name, parent: parent}, opts)
}

func (b *Builder) with(e entryData, opts []EntryOption) *Builder {
	e.position = math.MaxInt
	for _, opt := range opts {
		opt(&e)
	}
	b.entries = append(b.entries, e)
	return b
}

// Build creates the tree and engine and reports every entry.
func (b *Builder) Build() *Fixture {
	b.t.Helper()

	tree, err := legend.NewTree(b.root, b.opts...)
	require.NoError(b.t, err)
	b.t.Cleanup(tree.Close)

	eng, err := engine.NewMemory(tree, b.root+1)
	require.NoError(b.t, err)

	for _, e := range b.entries {
		switch e.kind {
		case legend.KindGroup:
			err = eng.AddGroupWithHandle(e.handle, e.name, e.parent, e.position)
		default:
			err = eng.AddLayerWithHandle(e.handle, e.name, e.source, e.parent, e.position)
			if err == nil && e.hidden {
				err = eng.SetVisible(e.handle, false)
			}
		}
		require.NoError(b.t, err, "adding %s %d", e.kind, e.handle)
	}

	layers, err := legend.NewLayerCollection(eng, tree)
	require.NoError(b.t, err)

	return &Fixture{Tree: tree, Engine: eng, Layers: layers}
}

package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/legend/internal/legend"
)

func TestBuilder_StandardLegend(t *testing.T) {
	f := NewBuilder(t, RootHandle).WithStandardLegend().Build()

	require.NoError(t, f.Tree.Check())
	require.Equal(t, 3, f.Tree.Count(RootHandle))
	require.Equal(t, Cadastre, f.Tree.GroupOf(Parcels))
	require.Equal(t, []legend.Handle{Roads, Rivers, Parcels}, f.Layers.Handles())

	name, ok := f.Engine.Name(Parcels)
	require.True(t, ok)
	require.Equal(t, "Parcels", name)
}

func TestBuilder_NestedGroups(t *testing.T) {
	f := NewBuilder(t, RootHandle).WithNestedGroups().Build()

	require.NoError(t, f.Tree.Check())
	require.Equal(t, 3, f.Layers.Count())

	e, ok := f.Tree.Entry(35)
	require.True(t, ok)
	require.Equal(t, 4, e.Depth)
}

func TestBuilder_Options(t *testing.T) {
	f := NewBuilder(t, 5).
		WithLayer(6, "first", 5).
		WithLayer(7, "second", 5, At(0), Hidden(), Source("s.csv")).
		Build()

	require.Equal(t, 0, f.Tree.PositionInGroup(7))
	info, ok := f.Engine.LayerInfo(7)
	require.True(t, ok)
	require.False(t, info.Visible)
	require.Equal(t, "s.csv", info.Source)
}

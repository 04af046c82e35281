package legend_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/legend/internal/legend"
	"github.com/zjrosen/legend/internal/testutil"
)

func TestFixture_LayerViewsFollowMoves(t *testing.T) {
	fx := testutil.NewBuilder(t, testutil.RootHandle).WithStandardLegend().Build()

	parcels := fx.Layers.ItemByHandle(testutil.Parcels)
	name, err := parcels.Name()
	require.NoError(t, err)
	require.Equal(t, "Parcels", name)

	require.Equal(t, []legend.Handle{testutil.Roads, testutil.Rivers, testutil.Parcels}, fx.Layers.Handles())
	require.True(t, fx.Layers.MoveLayer(testutil.Parcels, testutil.RootHandle, 0))

	pos, err := parcels.Position()
	require.NoError(t, err)
	require.Equal(t, 0, pos)
	require.Equal(t, []legend.Handle{testutil.Parcels, testutil.Roads, testutil.Rivers}, fx.Layers.Handles())
	require.Equal(t, 0, fx.Tree.Count(testutil.Cadastre))
}

func TestFixture_EngineRemovalStalesViews(t *testing.T) {
	fx := testutil.NewBuilder(t, testutil.RootHandle).WithStandardLegend().Build()

	parcels := fx.Layers.ItemByHandle(testutil.Parcels)
	require.True(t, fx.Engine.Remove(testutil.Cadastre))

	_, err := parcels.Visible()
	require.ErrorIs(t, err, legend.ErrStaleHandle)

	var stale *legend.StaleHandleError
	require.ErrorAs(t, err, &stale)
	require.True(t, stale.Retired)

	require.Equal(t, 2, fx.Layers.Count())
	require.Nil(t, fx.Layers.At(2))
	require.NoError(t, fx.Tree.Check())

	// The engine may not hand a retired handle back out.
	err = fx.Engine.AddLayerWithHandle(testutil.Parcels, "Parcels", "", testutil.RootHandle, 0)
	require.ErrorIs(t, err, legend.ErrRetiredHandle)
}

func TestFixture_NestedCycleRejected(t *testing.T) {
	fx := testutil.NewBuilder(t, testutil.RootHandle).WithNestedGroups().Build()
	before := fx.Tree.Entries()

	err := fx.Tree.Move(30, 34, 0)
	require.ErrorIs(t, err, legend.ErrCycleDetected)
	require.Equal(t, before, fx.Tree.Entries())

	require.True(t, fx.Tree.MoveEntry(34, testutil.RootHandle, 0))
	require.Equal(t, testutil.RootHandle, fx.Tree.GroupOf(34))
	require.Equal(t, 1, fx.Tree.Count(32))
}

func TestFixture_HiddenLayer(t *testing.T) {
	fx := testutil.NewBuilder(t, testutil.RootHandle).
		WithLayer(5, "Basemap", testutil.RootHandle, testutil.Hidden()).
		WithLayer(6, "Labels", testutil.RootHandle, testutil.At(0)).
		Build()

	require.Equal(t, []legend.Handle{6, 5}, fx.Layers.Handles())
	visible, err := fx.Layers.At(1).Visible()
	require.NoError(t, err)
	require.False(t, visible)
}

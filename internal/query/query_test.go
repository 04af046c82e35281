package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/legend/internal/query"
	"github.com/zjrosen/legend/internal/testutil"
)

func standardRows(t *testing.T) []query.Row {
	t.Helper()
	fx := testutil.NewBuilder(t, testutil.RootHandle).
		WithStandardLegend().
		Build()
	require.NoError(t, fx.Engine.SetVisible(testutil.Rivers, false))
	return query.Rows(fx.Tree, fx.Engine)
}

func handles(rows []query.Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Handle
	}
	return out
}

func TestRows(t *testing.T) {
	rows := standardRows(t)

	require.Equal(t, []int{0, 10, 11, 20, 12}, handles(rows))
	root := rows[0]
	require.Equal(t, "group", root.Kind)
	require.Equal(t, -1, root.Group)
	require.Equal(t, 3, root.Children)
	require.Empty(t, root.Name)

	parcels := rows[4]
	require.Equal(t, "Parcels", parcels.Name)
	require.Equal(t, 20, parcels.Group)
	require.Equal(t, 2, parcels.Depth)
	require.True(t, parcels.Visible)
	require.False(t, rows[2].Visible)
}

func TestFilter_Select(t *testing.T) {
	rows := standardRows(t)

	tests := []struct {
		name string
		expr string
		want []int
	}{
		{name: "empty matches all", expr: "", want: []int{0, 10, 11, 20, 12}},
		{name: "layers only", expr: `kind == "layer"`, want: []int{10, 11, 12}},
		{name: "hidden layers", expr: `kind == "layer" && !visible`, want: []int{11}},
		{name: "inside group", expr: "group == 20", want: []int{12}},
		{name: "top level first two", expr: "group == 0 && position < 2", want: []int{10, 11}},
		{name: "name prefix", expr: `name startsWith "R"`, want: []int{10, 11}},
		{name: "nested", expr: "depth > 1", want: []int{12}},
		{name: "no match", expr: "handle > 1000", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := query.Compile(tt.expr)
			require.NoError(t, err)
			got, err := f.Select(rows)
			require.NoError(t, err)
			if tt.want == nil {
				require.Empty(t, got)
				return
			}
			require.Equal(t, tt.want, handles(got))
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := query.Compile("handle +")
	require.Error(t, err)

	_, err = query.Compile("colour == 1")
	require.Error(t, err, "unknown fields are rejected at compile time")

	_, err = query.Compile("handle + 1")
	require.Error(t, err, "non-boolean result")
}

func TestFilter_String(t *testing.T) {
	f, err := query.Compile("visible")
	require.NoError(t, err)
	require.Equal(t, "visible", f.String())
}

package render_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/legend/internal/config"
	"github.com/zjrosen/legend/internal/query"
	"github.com/zjrosen/legend/internal/render"
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

func plain() render.Options {
	return render.Options{Indent: 2, ShowHandles: true}
}

func TestLines_StandardLegend(t *testing.T) {
	var buf bytes.Buffer
	lines := render.New(&buf, plain()).Lines(standardRows(t))

	require.Equal(t, []string{
		" 0 ▾ (root)",
		"10 ├── ● Roads",
		"11 ├── ○ Rivers",
		"20 └── ▾ Cadastre",
		"12     └── ● Parcels",
	}, lines)
}

func TestLines_NestedGuides(t *testing.T) {
	fx := testutil.NewBuilder(t, testutil.RootHandle).
		WithNestedGroups().
		WithLayer(36, "top", testutil.RootHandle).
		Build()

	opts := plain()
	opts.ShowHandles = false
	opts.Indent = 1
	lines := render.New(&bytes.Buffer{}, opts).Lines(query.Rows(fx.Tree, fx.Engine))

	require.Equal(t, []string{
		"▾ (root)",
		"├─ ▾ A",
		"│ ├─ ● a1",
		"│ └─ ▾ B",
		"│   ├─ ● b1",
		"│   └─ ▾ C",
		"│     └─ ● c1",
		"└─ ● top",
	}, lines)
}

func TestLines_Truncates(t *testing.T) {
	opts := plain()
	opts.Width = 10
	lines := render.New(&bytes.Buffer{}, opts).Lines(standardRows(t))

	for _, line := range lines {
		require.LessOrEqual(t, ansi.StringWidth(line), 10, line)
	}
	require.True(t, strings.HasSuffix(lines[1], "…"), lines[1])
	require.Equal(t, " 0 ▾ (root)", lines[0], "short lines are untouched")
}

func TestFprint_NoColorHasNoEscapes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, render.New(&out, plain()).Fprint(&out, standardRows(t)))

	require.NotContains(t, out.String(), "\x1b[")
	require.Equal(t, 5, strings.Count(out.String(), "\n"))
}

func TestOptionsFromConfig(t *testing.T) {
	opts := render.OptionsFromConfig(config.Defaults().Render)
	require.Equal(t, render.Options{Width: 0, Indent: 2, ShowHandles: true, Color: true}, opts)
}

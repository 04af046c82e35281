package scenario

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Reference(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "reference.yaml"))
	require.NoError(t, err)

	require.Equal(t, "move parcels out of cadastre", sc.Name)
	require.Nil(t, sc.Root)
	require.Len(t, sc.Steps, 7)
	require.Equal(t, OpMove, sc.Steps[4].Op)
	require.Equal(t, 12, *sc.Steps[4].Handle)
	require.Equal(t, 0, *sc.Steps[4].Target)
	require.Equal(t, ExpectOK, sc.Steps[4].Expect)
	require.False(t, *sc.Steps[6].Visible)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	sc, err := Parse(nil)
	require.NoError(t, err)
	require.Empty(t, sc.Steps)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("name: x\nsteps:\n  - op: remove\n    handel: 3\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "handel")
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "missing op", yaml: "steps:\n  - handle: 1\n", wantErr: "op is required"},
		{name: "unknown op", yaml: "steps:\n  - op: explode\n", wantErr: "unknown op"},
		{name: "add without name", yaml: "steps:\n  - op: add-layer\n", wantErr: "name is required"},
		{name: "hidden group", yaml: "steps:\n  - op: add-group\n    name: g\n    hidden: true\n", wantErr: "layers only"},
		{name: "remove without handle", yaml: "steps:\n  - op: remove\n", wantErr: "handle is required"},
		{name: "move without target", yaml: "steps:\n  - op: move\n    handle: 1\n    position: 0\n", wantErr: "target is required"},
		{name: "move without position", yaml: "steps:\n  - op: move\n    handle: 1\n    target: 0\n", wantErr: "position is required"},
		{name: "visible without value", yaml: "steps:\n  - op: visible\n    handle: 1\n", wantErr: "visible is required"},
		{name: "rename without name", yaml: "steps:\n  - op: rename\n    handle: 1\n", wantErr: "name is required"},
		{name: "bad expect", yaml: "steps:\n  - op: reset\n    expect: maybe\n", wantErr: "expect must be"},
		{name: "negative root", yaml: "root: -1\n", wantErr: "root must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrInvalidScenario)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

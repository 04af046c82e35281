package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveLegendDir(t *testing.T) {
	project := t.TempDir()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", DirName},
		{"project dir", project, filepath.Join(project, DirName)},
		{"legend dir", filepath.Join(project, DirName), filepath.Join(project, DirName)},
		{"trailing slash", project + "/", filepath.Join(project, DirName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveLegendDir(tt.input))
		})
	}
}

func TestResolveLegendDir_FollowsRedirect(t *testing.T) {
	main := t.TempDir()
	worktree := t.TempDir()
	dir := filepath.Join(worktree, DirName)
	require.NoError(t, os.MkdirAll(dir, 0o750))

	target := filepath.Join(main, DirName)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "redirect"), []byte(target+"\n"), 0o600))

	require.Equal(t, target, ResolveLegendDir(worktree))
}

func TestResolveLegendDir_RelativeRedirect(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "wt", DirName)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "redirect"), []byte("../../main/.legend"), 0o600))

	require.Equal(t, filepath.Join(root, "main", DirName), ResolveLegendDir(filepath.Join(root, "wt")))
}

func TestResolveLegendDir_EmptyRedirectIgnored(t *testing.T) {
	project := t.TempDir()
	dir := filepath.Join(project, DirName)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "redirect"), []byte("  \n"), 0o600))

	require.Equal(t, dir, ResolveLegendDir(project))
}

func TestLocalConfigFile(t *testing.T) {
	require.Equal(t, filepath.Join(DirName, "config.yaml"), LocalConfigFile(""))
}

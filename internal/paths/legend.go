// Package paths resolves the directories legend reads config from.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// DirName is the per-project directory holding config.yaml.
const DirName = ".legend"

// ResolveLegendDir resolves the .legend directory for a project.
//
//   - "/path/to/project" -> "/path/to/project/.legend"
//   - "/path/to/project/.legend" -> "/path/to/project/.legend"
//   - "" -> ".legend"
//
// A .legend/redirect file (one relative or absolute path) is followed once,
// so worktrees can share the main checkout's config.
func ResolveLegendDir(path string) string {
	if path == "" {
		path = "."
	}
	path = filepath.Clean(path)

	if filepath.Base(path) != DirName {
		path = filepath.Join(path, DirName)
	}
	return followRedirect(path)
}

// LocalConfigFile is the project config: <project>/.legend/config.yaml.
func LocalConfigFile(project string) string {
	return filepath.Join(ResolveLegendDir(project), "config.yaml")
}

// UserConfigDir returns ~/.config/legend, or "" when there is no home directory.
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "legend")
}

func followRedirect(dir string) string {
	content, err := os.ReadFile(filepath.Join(dir, "redirect")) //nolint:gosec // redirect lives inside .legend
	if err != nil {
		return dir
	}

	target := strings.TrimSpace(string(content))
	if target == "" {
		return dir
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(dir, target))
}

// Package templates embeds the example scenarios printed by `legend example`.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed examples
var examples embed.FS

// ExamplesFS returns the embedded examples/ directory.
func ExamplesFS() fs.FS {
	sub, err := fs.Sub(examples, "examples")
	if err != nil {
		panic(err) // embedded path is fixed at build time
	}
	return sub
}

// ExampleNames lists the embedded scenarios without their .yaml suffix.
func ExampleNames() []string {
	entries, err := fs.ReadDir(ExamplesFS(), ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Example returns the YAML of the named scenario.
func Example(name string) ([]byte, error) {
	data, err := fs.ReadFile(ExamplesFS(), name+".yaml")
	if err != nil {
		return nil, fmt.Errorf("example %q: %w", name, err)
	}
	return data, nil
}

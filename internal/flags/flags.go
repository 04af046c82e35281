// Package flags provides feature flags read from the `flags` config section.
// Flags are read-only after initialization; unknown flags are always off.
package flags

import (
	"maps"
	"slices"
	"strings"

	"github.com/zjrosen/legend/internal/log"
)

const (
	// FlagStrictHandleViews makes ItemByHandle return nothing for handles the
	// tree never registered, instead of a view that fails on first use.
	FlagStrictHandleViews = "strict-handle-views"

	// FlagTraceScenarioSteps records one span per replayed scenario step
	// (tracing must also be enabled in config).
	FlagTraceScenarioSteps = "trace-scenario-steps"
)

// Definition describes a known flag.
type Definition struct {
	Name        string
	Description string
	Default     bool
}

var known = map[string]Definition{
	FlagStrictHandleViews: {
		Name:        FlagStrictHandleViews,
		Description: "ItemByHandle returns nothing for never-registered handles",
		Default:     false,
	},
	FlagTraceScenarioSteps: {
		Name:        FlagTraceScenarioSteps,
		Description: "Record a span for every replayed scenario step",
		Default:     true,
	},
}

// Known returns every known flag sorted by name.
func Known() []Definition {
	out := slices.Collect(maps.Values(known))
	slices.SortFunc(out, func(a, b Definition) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// IsKnown reports whether name is a flag this build understands.
func IsKnown(name string) bool {
	_, ok := known[name]
	return ok
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. Known flags missing from the map
// take their default; names this build does not know are logged and ignored.
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(known))}
	for name, def := range known {
		r.flags[name] = def.Default
	}
	for name, v := range flags {
		if !IsKnown(name) {
			log.Warn(log.CatConfig, "Ignoring unknown feature flag", "flag", name)
			continue
		}
		r.flags[name] = v
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags), "flags", r.All())
	return r
}

// Enabled returns true if the named flag is enabled.
// Returns false for unknown flags and on a nil registry.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.flags[name]
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}

// Package config provides configuration types and defaults for legend.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/legend/internal/log"
	"github.com/zjrosen/legend/internal/paths"
)

// Config holds all configuration options for legend.
type Config struct {
	Legend  LegendConfig    `mapstructure:"legend"`
	Log     LogConfig       `mapstructure:"log"`
	Render  RenderConfig    `mapstructure:"render"`
	Cache   CacheConfig     `mapstructure:"cache"`
	Watch   WatchConfig     `mapstructure:"watch"`
	Tracing TracingConfig   `mapstructure:"tracing"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// LegendConfig holds hierarchy options.
type LegendConfig struct {
	// RootHandle is the handle registered for the root group of every new tree.
	// Default: 0
	RootHandle int `mapstructure:"root_handle"`

	// EventBuffer is the per-subscriber buffer of the change stream.
	EventBuffer int `mapstructure:"event_buffer"`
}

// LogConfig controls the debug log written when --debug is set.
type LogConfig struct {
	Path  string `mapstructure:"path"`  // default: legend-debug.log
	Level string `mapstructure:"level"` // debug (default), info, warn, error
}

// RenderConfig controls how the legend is printed.
type RenderConfig struct {
	Width       int  `mapstructure:"width"`        // 0 = no truncation
	ShowHandles bool `mapstructure:"show_handles"` // prefix every row with its handle
	Color       bool `mapstructure:"color"`
	Indent      int  `mapstructure:"indent"` // spaces per nesting level
}

// CacheConfig controls the flattened layer index cache.
type CacheConfig struct {
	Expiration      time.Duration `mapstructure:"expiration"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// WatchConfig controls `replay --watch`.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// TracingConfig holds tracing configuration for scenario replays.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for the "file" exporter.
	// Default: ~/.config/legend/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for the "otlp" exporter.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultTracesFilePath returns ~/.config/legend/traces/traces.jsonl, or an
// empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	dir := paths.UserConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// Validate checks the whole configuration.
func Validate(cfg Config) error {
	if err := ValidateLegend(cfg.Legend); err != nil {
		return err
	}
	if err := ValidateLog(cfg.Log); err != nil {
		return err
	}
	if err := ValidateRender(cfg.Render); err != nil {
		return err
	}
	if err := ValidateCache(cfg.Cache); err != nil {
		return err
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %v", cfg.Watch.Debounce)
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateLegend checks hierarchy options.
func ValidateLegend(l LegendConfig) error {
	if l.RootHandle < 0 {
		return fmt.Errorf("legend.root_handle must be >= 0, got %d", l.RootHandle)
	}
	if l.EventBuffer < 0 {
		return fmt.Errorf("legend.event_buffer must be >= 0, got %d", l.EventBuffer)
	}
	return nil
}

// ValidateLog checks log options.
func ValidateLog(l LogConfig) error {
	switch l.Level {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("log.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", l.Level)
	}
}

// ValidateRender checks render options.
func ValidateRender(r RenderConfig) error {
	if r.Width < 0 {
		return fmt.Errorf("render.width must be >= 0, got %d", r.Width)
	}
	if r.Indent < 0 || r.Indent > 8 {
		return fmt.Errorf("render.indent must be between 0 and 8, got %d", r.Indent)
	}
	return nil
}

// ValidateCache checks cache options.
func ValidateCache(c CacheConfig) error {
	if c.Expiration < 0 {
		return fmt.Errorf("cache.expiration must not be negative, got %v", c.Expiration)
	}
	if c.CleanupInterval < 0 {
		return fmt.Errorf("cache.cleanup_interval must not be negative, got %v", c.CleanupInterval)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Legend: LegendConfig{
			RootHandle:  0,
			EventBuffer: 100,
		},
		Log: LogConfig{
			Path:  "legend-debug.log",
			Level: "debug",
		},
		Render: RenderConfig{
			Width:       0,
			ShowHandles: true,
			Color:       true,
			Indent:      2,
		},
		Cache: CacheConfig{
			Expiration:      5 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Legend Configuration

legend:
  root_handle: 0      # Handle registered for the root group
  event_buffer: 100   # Buffered change events per subscriber

# Debug log (written only with --debug or LEGEND_DEBUG=1)
log:
  path: legend-debug.log
  level: debug        # debug, info, warn, error

# Output of 'legend show' and 'legend replay'
render:
  width: 0            # Truncate rows to this many cells (0 = no limit)
  show_handles: true  # Prefix rows with their handle
  color: true         # Disable for plain ASCII output
  indent: 2           # Spaces per nesting level

# Flattened layer index cache
cache:
  expiration: 5m
  cleanup_interval: 10m

# 'legend replay --watch'
watch:
  debounce: 100ms

# Tracing of scenario replays
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/legend/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Feature flags
# flags:
#   strict-handle-views: false     # ItemByHandle returns nothing for never-registered handles
#   trace-scenario-steps: true     # One span per replayed step
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, 0, cfg.Legend.RootHandle)
	require.Equal(t, 100, cfg.Legend.EventBuffer)
	require.True(t, cfg.Render.ShowHandles)
	require.Equal(t, 2, cfg.Render.Indent)
	require.Equal(t, 5*time.Minute, cfg.Cache.Expiration)
	require.Equal(t, 100*time.Millisecond, cfg.Watch.Debounce)
	require.False(t, cfg.Tracing.Enabled)
	require.Equal(t, "file", cfg.Tracing.Exporter)
	require.NoError(t, Validate(cfg))
}

func TestValidateLegend(t *testing.T) {
	require.NoError(t, ValidateLegend(LegendConfig{RootHandle: 7}))

	err := ValidateLegend(LegendConfig{RootHandle: -1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "legend.root_handle")

	err = ValidateLegend(LegendConfig{EventBuffer: -3})
	require.Error(t, err)
	require.Contains(t, err.Error(), "legend.event_buffer")
}

func TestValidateLog(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		require.NoError(t, ValidateLog(LogConfig{Level: level}), level)
	}
	err := ValidateLog(LogConfig{Level: "verbose"})
	require.Error(t, err)
	require.Contains(t, err.Error(), `got "verbose"`)
}

func TestValidateRender(t *testing.T) {
	tests := []struct {
		name    string
		render  RenderConfig
		wantErr string
	}{
		{name: "defaults", render: Defaults().Render},
		{name: "negative width", render: RenderConfig{Width: -1}, wantErr: "render.width"},
		{name: "indent too large", render: RenderConfig{Indent: 9}, wantErr: "render.indent"},
		{name: "negative indent", render: RenderConfig{Indent: -1}, wantErr: "render.indent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRender(tt.render)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCache(t *testing.T) {
	require.NoError(t, ValidateCache(CacheConfig{}))
	require.Error(t, ValidateCache(CacheConfig{Expiration: -time.Second}))
	require.Error(t, ValidateCache(CacheConfig{CleanupInterval: -time.Second}))
}

func TestValidate_WatchDebounce(t *testing.T) {
	cfg := Defaults()
	cfg.Watch.Debounce = -time.Millisecond
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "watch.debounce")
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		tracing TracingConfig
		wantErr string
	}{
		{name: "disabled", tracing: TracingConfig{}},
		{name: "sample rate too high", tracing: TracingConfig{SampleRate: 1.5}, wantErr: "sample_rate"},
		{name: "sample rate negative", tracing: TracingConfig{SampleRate: -0.1}, wantErr: "sample_rate"},
		{name: "unknown exporter", tracing: TracingConfig{Exporter: "jaeger"}, wantErr: "tracing.exporter"},
		{name: "file without path", tracing: TracingConfig{Enabled: true, Exporter: "file"}, wantErr: "file_path"},
		{name: "otlp without endpoint", tracing: TracingConfig{Enabled: true, Exporter: "otlp"}, wantErr: "otlp_endpoint"},
		{name: "file without path but disabled", tracing: TracingConfig{Exporter: "file"}},
		{name: "stdout", tracing: TracingConfig{Enabled: true, Exporter: "stdout", SampleRate: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.tracing)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(stringsReader(DefaultConfigTemplate())))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	want := Defaults()
	require.Equal(t, want.Legend, cfg.Legend)
	require.Equal(t, want.Log, cfg.Log)
	require.Equal(t, want.Render, cfg.Render)
	require.Equal(t, want.Cache, cfg.Cache)
	require.Equal(t, want.Watch, cfg.Watch)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))
}

func TestDefaultTracesFilePath(t *testing.T) {
	path := DefaultTracesFilePath()
	if path == "" {
		t.Skip("no home directory")
	}
	require.True(t, filepath.IsAbs(path))
	require.Equal(t, "traces.jsonl", filepath.Base(path))
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/legend/internal/config"
	"github.com/zjrosen/legend/internal/log"
	"github.com/zjrosen/legend/internal/paths"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "legend",
	Short: "Inspect and replay map legend hierarchies",
	Long: `legend maintains the ordered hierarchy of layers and groups behind a map
legend. Scenarios are YAML scripts of rendering engine events (layers and
groups being added, removed, moved, renamed or toggled) that legend replays
against a fresh legend and then prints, queries or checks.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .legend/config.yaml, then ~/.config/legend/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (also enabled by "+log.DebugEnv+")")
	rootCmd.PersistentFlags().Int("root", 0, "handle of the root group")
	rootCmd.PersistentFlags().Int("width", 0, "truncate output rows to this many cells")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
}

func initConfig() {
	_ = viper.BindPFlag("legend.root_handle", rootCmd.PersistentFlags().Lookup("root"))
	_ = viper.BindPFlag("render.width", rootCmd.PersistentFlags().Lookup("width"))

	defaults := config.Defaults()
	viper.SetDefault("legend.root_handle", defaults.Legend.RootHandle)
	viper.SetDefault("legend.event_buffer", defaults.Legend.EventBuffer)
	viper.SetDefault("log.path", defaults.Log.Path)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("render.width", defaults.Render.Width)
	viper.SetDefault("render.show_handles", defaults.Render.ShowHandles)
	viper.SetDefault("render.color", defaults.Render.Color)
	viper.SetDefault("render.indent", defaults.Render.Indent)
	viper.SetDefault("cache.expiration", defaults.Cache.Expiration)
	viper.SetDefault("cache.cleanup_interval", defaults.Cache.CleanupInterval)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	viper.SetEnvPrefix("LEGEND")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .legend/config.yaml (current directory)
		// 2. ~/.config/legend/config.yaml (user config)
		if local := paths.LocalConfigFile(""); fileExists(local) {
			viper.SetConfigFile(local)
		} else {
			if dir := paths.UserConfigDir(); dir != "" {
				viper.AddConfigPath(dir)
			}
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	// A missing config file is fine; defaults apply. Other read errors are
	// reported once logging is up.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = err
		}
	}

	cfg = config.Config{}
	if err := viper.Unmarshal(&cfg); err != nil && configErr == nil {
		configErr = err
	}
}

var configErr error

// setup enables debug logging and validates the loaded configuration.
func setup(cmd *cobra.Command, _ []string) error {
	if debugFlag || os.Getenv(log.DebugEnv) != "" {
		cleanup, err := log.InitWithTeaLog(cfg.Log.Path, "legend")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		log.SetMinLevel(log.ParseLevel(cfg.Log.Level))
		logCleanup = cleanup
		log.Info(log.CatCLI, "legend starting", "command", cmd.Name(), "config", viper.ConfigFileUsed())
	}

	if configErr != nil {
		err := configErr
		configErr = nil
		return fmt.Errorf("reading config: %w", err)
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		cfg.Render.Color = false
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// configPath is where config edits are written.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return paths.LocalConfigFile("")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

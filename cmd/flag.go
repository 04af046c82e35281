package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/legend/internal/config"
	"github.com/zjrosen/legend/internal/flags"
)

var flagCmd = &cobra.Command{
	Use:   "flag [name] [on|off]",
	Short: "List or set feature flags",
	Long: `Without arguments, list every feature flag with its current value.
With a name and a value, store the flag in the config file.

Examples:
  legend flag
  legend flag strict-handle-views on`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch len(args) {
		case 0:
			reg := flags.New(cfg.Flags)
			for _, def := range flags.Known() {
				_, _ = fmt.Fprintf(out, "%-22s %-5t %s\n", def.Name, reg.Enabled(def.Name), def.Description)
			}
			return nil
		case 1:
			return fmt.Errorf("flag %s: missing value (on or off)", args[0])
		}

		name := args[0]
		if !flags.IsKnown(name) {
			return fmt.Errorf("unknown flag %q", name)
		}
		enabled, err := parseSwitch(args[1])
		if err != nil {
			return err
		}
		path := configPath()
		if err := config.SaveFlag(path, name, enabled); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "%s = %t (%s)\n", name, enabled, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flagCmd)
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid value %q (want on or off)", s)
	}
	return v, nil
}

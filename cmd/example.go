package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/legend/internal/templates"
)

var exampleCmd = &cobra.Command{
	Use:   "example [name]",
	Short: "Print a built-in example scenario",
	Long: `Without arguments, list the built-in scenarios. With a name, print its YAML
so it can be saved and edited:

  legend example basemaps > basemaps.yaml
  legend show basemaps.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			_, _ = fmt.Fprintln(out, strings.Join(templates.ExampleNames(), "\n"))
			return nil
		}
		data, err := templates.Example(args[0])
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(exampleCmd)
}

package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/zjrosen/legend/internal/query"
)

var findWhere string

var findCmd = &cobra.Command{
	Use:   "find <scenario.yaml>",
	Short: "List legend entries matching an expression, as JSON",
	Long: `Replay a scenario and list the entries matching --where as JSON.

Expressions see these fields for every entry (root included):
  handle, kind ("layer" or "group"), group, position, depth,
  name, visible, children

Examples:
  # Hidden layers
  legend find my-legend.yaml --where 'kind == "layer" && !visible'

  # Everything inside group 20
  legend find my-legend.yaml -w 'group == 20'

  # Names only
  legend find my-legend.yaml -w 'depth > 1' | jq '.[].name'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := query.Compile(findWhere)
		if err != nil {
			return err
		}

		s, _, err := replayFile(cmd.Context(), args[0], nil)
		if s == nil {
			return err
		}
		defer s.Close()

		rows, err := filter.Select(query.Rows(s.Tree, s.Engine))
		if err != nil {
			return err
		}
		if rows == nil {
			rows = []query.Row{}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	},
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().StringVarP(&findWhere, "where", "w", "", "filter expression (default: all entries)")
}

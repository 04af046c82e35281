package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <scenario.yaml>",
	Short: "Replay a scenario and verify the legend is consistent",
	Long: `Replay a scenario, verify that every step matched its expect field and
that the handle table and the hierarchy agree (every reachable entry is
registered exactly once, positions are contiguous, no group contains itself).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, report, err := replayFile(cmd.Context(), args[0], nil)
		if s == nil {
			return err
		}
		defer s.Close()
		if err != nil {
			return err
		}
		if err := s.Tree.Check(); err != nil {
			return fmt.Errorf("legend inconsistent after %d steps: %w", len(report.Steps), err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok: %d steps (%d rejected), %d entries, %d layers\n",
			len(report.Steps), report.Rejected(), len(s.Tree.Entries()), s.Layers.Count())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

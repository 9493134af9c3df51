package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"treenotes/internal/application/commands"
)

var (
	topCutoff int
	topLimit  int
	topJSON   bool
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "List the most connected notes",
	Long: `List every note with at least --cutoff links, in the configured
sort order.

Examples:
  treenotes-cli top
  treenotes-cli top --cutoff 10 --limit 5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadGraph(context.Background())
		if err != nil {
			return err
		}

		cutoff := s.Config.TopLevelCutoff
		if cmd.Flags().Changed("cutoff") {
			cutoff = topCutoff
		}

		notes, err := commands.NewTopNotesCommand(s.Coord.Graph(), cutoff, topLimit).Execute()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if topJSON {
			return writeJSON(out, notes)
		}
		for _, n := range notes {
			fmt.Fprintln(out, formatSummary(n))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topCmd)
	topCmd.Flags().IntVar(&topCutoff, "cutoff", 0, "minimum link count (default from config)")
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", 0, "maximum number of notes, 0 for all")
	topCmd.Flags().BoolVar(&topJSON, "json", false, "print JSON")
}

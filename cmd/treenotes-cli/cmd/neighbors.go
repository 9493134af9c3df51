package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"treenotes/internal/application/commands"
)

var neighborsJSON bool

var neighborsCmd = &cobra.Command{
	Use:   "neighbors <id>",
	Short: "Show the notes linked to or from a note",
	Long: `Show one note with every note it links to or is linked from.

Examples:
  treenotes-cli neighbors "Reading list"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadGraph(context.Background())
		if err != nil {
			return err
		}

		result, err := commands.NewNeighborsCommand(s.Coord.Graph(), args[0]).Execute()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if neighborsJSON {
			return writeJSON(out, result)
		}
		fmt.Fprintln(out, formatSummary(result.Note))
		for _, n := range result.Neighbors {
			fmt.Fprintf(out, "  %s\n", formatSummary(n))
		}
		if len(result.Outgoing) > 0 {
			fmt.Fprintf(out, "links to: %s\n", strings.Join(result.Outgoing, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(neighborsCmd)
	neighborsCmd.Flags().BoolVar(&neighborsJSON, "json", false, "print JSON")
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"treenotes/internal/application/commands"
)

var findLimit int

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Find notes by name",
	Long: `Find notes by name. Results are ranked by relevance using fuzzy
matching and include potential notes.

Examples:
  treenotes-cli find reading
  treenotes-cli find rdl`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadGraph(context.Background())
		if err != nil {
			return err
		}

		results := commands.NewSearchCommand(s.Coord.Graph(), args[0], findLimit).Execute()

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "No results found")
			return nil
		}
		for _, r := range results {
			fmt.Fprintln(out, formatSummary(r.NoteSummary))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().IntVarP(&findLimit, "limit", "n", 20, "maximum number of results, 0 for all")
}

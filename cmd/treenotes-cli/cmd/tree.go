package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"treenotes/internal/adapters/outline"
)

var (
	treeDepth  int
	treeCutoff int
	treeJSON   bool
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Display the backlink tree",
	Long: `Display the notes with at least --cutoff links, each expanded to
--depth levels. A child row lists a linked note that is not already on
the path from the top.

Examples:
  treenotes-cli tree
  treenotes-cli tree --depth 3 --cutoff 2
  treenotes-cli tree --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if treeDepth < 1 {
			return fmt.Errorf("depth must be >= 1, got %d", treeDepth)
		}
		s, err := loadGraph(context.Background())
		if err != nil {
			return err
		}

		cutoff := s.Config.TopLevelCutoff
		if cmd.Flags().Changed("cutoff") {
			cutoff = treeCutoff
		}
		if cutoff < 0 {
			return fmt.Errorf("cutoff must be >= 0, got %d", cutoff)
		}

		root := outline.Expanded(s.Coord.Graph(), cutoff, treeDepth, "")
		if treeJSON {
			return writeJSON(cmd.OutOrStdout(), root.Tree())
		}
		return root.Write(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().IntVarP(&treeDepth, "depth", "d", 1, "number of levels to show")
	treeCmd.Flags().IntVar(&treeCutoff, "cutoff", 0, "minimum link count of a top-level note (default from config)")
	treeCmd.Flags().BoolVar(&treeJSON, "json", false, "print JSON")
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var indexFull bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Maintain the link index",
	Long: `Maintain the SQLite link index used when use_index is enabled.
The index lives under $XDG_DATA_HOME/treenotes and can be deleted at any
time.`,
}

var indexSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Bring the index up to date",
	Long: `Re-parse the notes that changed since the last sync and drop the
ones that disappeared. With --full the index is rebuilt from scratch.

Examples:
  treenotes-cli index sync
  treenotes-cli index sync --full`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx := GetSession().Index
		if idx == nil {
			return errors.New("the link index is disabled, set use_index: true in the config")
		}

		ctx := context.Background()
		run := idx.SyncIncremental
		if indexFull || idx.NeedsFullRebuild() {
			run = idx.SyncFull
		}
		stats, err := run(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(),
			"Scanned %d files: %d added, %d updated, %d deleted notes; %d links added, %d removed (%s)\n",
			stats.FilesScanned, stats.NotesAdded, stats.NotesUpdated, stats.NotesDeleted,
			stats.LinksAdded, stats.LinksDeleted, stats.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexSyncCmd)
	indexSyncCmd.Flags().BoolVar(&indexFull, "full", false, "rebuild the whole index")
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"treenotes/internal/application/commands"
)

var createCmd = &cobra.Command{
	Use:   "create <id>",
	Short: "Create a note",
	Long: `Create the file of a note, typically a potential note that is
linked but has no file yet. The file is written at the top of the root
scope and an existing file is never overwritten.

Examples:
  treenotes-cli create "Reading list"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewCreateNoteCommand(GetSession().Store, args[0]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s at %s\n", result.Message, result.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}

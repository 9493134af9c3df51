package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"treenotes/internal/config"
	"treenotes/internal/logging"
	"treenotes/internal/session"
)

var (
	configFile string
	vaultPath  string
	logLevel   string
	sess       *session.Session
)

var rootCmd = &cobra.Command{
	Use:   "treenotes-cli",
	Short: "CLI for exploring the links between markdown notes",
	Long: `treenotes-cli prints the backlink tree of a folder of markdown notes
connected with [[wikilinks]].

It provides commands to show the tree, the most connected notes and the
neighbors of a note, to find and create notes, and to maintain the
optional link index.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if vaultPath != "" {
			cfg.Vault = vaultPath
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		logger, err := logging.New(cfg.LogLevel, os.Stderr)
		if err != nil {
			return err
		}
		sess, err = session.Open(cfg, logger)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if sess == nil {
			return nil
		}
		return sess.Close()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVarP(&vaultPath, "vault", "v", "", "path to the vault, overrides the config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level written to stderr")
}

// GetSession returns the initialized session
func GetSession() *session.Session {
	return sess
}

// loadGraph builds the graph every query command reads
func loadGraph(ctx context.Context) (*session.Session, error) {
	s := GetSession()
	if err := s.Coord.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"treenotes/internal/adapters/launch"
	"treenotes/internal/adapters/tui"
	"treenotes/internal/adapters/watcher"
	"treenotes/internal/config"
	"treenotes/internal/logging"
	"treenotes/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := flag.String("config", "", "path to config.yaml")
	vaultFlag := flag.String("vault", "", "path to the vault, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	if *vaultFlag != "" {
		cfg.Vault = *vaultFlag
	}

	// the terminal belongs to the TUI, records go to a file
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = session.DefaultLogFile()
	}
	logger, logCloser, err := logging.OpenFile(cfg.LogLevel, config.ExpandHome(logFile))
	if err != nil {
		return err
	}
	defer logCloser.Close()

	s, err := session.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	launcher, err := launch.New(cfg.Opener, cfg.VaultPath())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Coord.Refresh(ctx); err != nil {
		return err
	}

	opts := []tui.Option{
		tui.WithCutoff(cfg.TopLevelCutoff),
		tui.WithSortSaver(cfg.SaveSortOrder),
		tui.WithLogger(logging.Component(logger, "tui")),
	}

	w, err := watcher.New(s.Repo.RootDir(),
		watcher.WithMatcher(s.Repo.IDForPath),
		watcher.WithLogger(logging.Component(logger, "watcher")),
	)
	if err == nil {
		err = w.Start(ctx)
	}
	if err != nil {
		logger.WithError(err).Warn("watching disabled, press r to refresh")
	} else {
		defer w.Stop()
		opts = append(opts, tui.WithWatcher(w.Events(), s.Repo))
	}

	app := tui.NewApp(ctx, s.Coord, s.Store, launcher, opts...)
	return tui.Run(app)
}

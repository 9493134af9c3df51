// Package session wires the configured stores, graph and logger shared by
// the treenotes binaries.
package session

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"treenotes/internal/adapters/filesystem"
	"treenotes/internal/adapters/sqlite"
	"treenotes/internal/application"
	"treenotes/internal/config"
	"treenotes/internal/logging"
	"treenotes/internal/ports"
)

// Session holds everything a binary needs to serve one vault
type Session struct {
	Config *config.Config
	Logger *logrus.Logger
	Repo   *filesystem.Repository
	Index  *sqlite.Index // nil unless use_index is set
	Store  ports.NoteStore
	Coord  *application.Coordinator

	closers []io.Closer
}

// DefaultLogFile is where the TUI logs when log_file is unset
func DefaultLogFile() string {
	return filepath.Join(config.Dir(), "treenotes.log")
}

// Open validates cfg and builds the store and an empty coordinator.
// Call Coord.Refresh to load the graph. A nil logger discards records.
func Open(cfg *config.Config, logger *logrus.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Session{
		Config: cfg,
		Logger: logger,
		Repo:   filesystem.NewRepository(cfg.VaultPath(), cfg.RootScope),
	}
	s.Store = s.Repo

	if cfg.UseIndex {
		idx := sqlite.NewIndex(cfg.RootScope, logging.Component(logger, "index"))
		if err := idx.Open(cfg.VaultPath()); err != nil {
			return nil, err
		}
		s.Index = idx
		s.Store = sqlite.NewStore(idx, s.Repo)
		s.closers = append(s.closers, idx)
	}

	s.Coord = application.NewCoordinator(s.Store, application.Settings{
		IncludePotential: cfg.IncludePotentialNotes,
		SortOrder:        cfg.Order(),
	}, logging.Component(logger, "coordinator"))

	logger.WithFields(logrus.Fields{
		"vault":     cfg.VaultPath(),
		"scope":     cfg.RootScope,
		"use_index": cfg.UseIndex,
	}).Info("session opened")
	return s, nil
}

// OnClose registers a resource released by Close
func (s *Session) OnClose(c io.Closer) {
	s.closers = append(s.closers, c)
}

// Close releases the index and anything registered with OnClose, newest
// first
func (s *Session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

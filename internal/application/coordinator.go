package application

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"treenotes/internal/domain"
	"treenotes/internal/logging"
	"treenotes/internal/ports"
)

// View is a tree view kept in sync with the graph. *treeview.ViewCache
// implements it.
type View interface {
	Render()
	CollapseAll()
	Resort()
	ActiveChanged(id string)
	ExistenceChanged(id string)
	Renamed(oldID, newID string)
	ContentChanged(id string)
}

// Settings are the graph options the coordinator applies on every rebuild
type Settings struct {
	IncludePotential bool
	SortOrder        domain.SortOrder
}

// DefaultSettings include potential notes and sort by link count
func DefaultSettings() Settings {
	return Settings{
		IncludePotential: true,
		SortOrder:        domain.DefaultSortOrder,
	}
}

// Coordinator routes note lifecycle events to the graph first and then to
// every attached view. All methods must be called from a single goroutine.
type Coordinator struct {
	graph    *domain.GraphCache
	source   ports.NoteSource
	views    []View
	active   string
	settings Settings
	log      *logrus.Entry
}

// NewCoordinator creates a coordinator with an empty graph. Call Refresh
// to load the vault.
func NewCoordinator(source ports.NoteSource, settings Settings, log *logrus.Entry) *Coordinator {
	if log == nil {
		log = logging.Component(nil, "coordinator")
	}
	if settings.SortOrder == "" {
		settings.SortOrder = domain.DefaultSortOrder
	}
	graph := domain.NewGraphCache()
	graph.Sort(settings.SortOrder)
	return &Coordinator{
		graph:    graph,
		source:   source,
		settings: settings,
		log:      log,
	}
}

// Graph exposes the graph for read-only use by views and queries
func (c *Coordinator) Graph() *domain.GraphCache {
	return c.graph
}

// Settings returns the active graph options
func (c *Coordinator) Settings() Settings {
	return c.settings
}

// Active returns the active note id, empty when none
func (c *Coordinator) Active() string {
	return c.active
}

// Attach renders a view and starts routing events to it
func (c *Coordinator) Attach(v View) {
	c.views = append(c.views, v)
	v.Render()
	if c.active != "" {
		v.ActiveChanged(c.active)
	}
}

// Detach stops routing events to a view
func (c *Coordinator) Detach(v View) {
	c.views = slices.DeleteFunc(c.views, func(x View) bool { return x == v })
}

// Refresh rebuilds the graph from a fresh snapshot and re-renders every
// view. Notes whose references cannot be read count as having none.
func (c *Coordinator) Refresh(ctx context.Context) error {
	start := time.Now()
	notes, err := c.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load notes: %w", err)
	}

	c.graph.Clear()
	c.graph.Sort(c.settings.SortOrder)
	c.graph.Build(notes, c.resolver(ctx), c.settings.IncludePotential)

	for _, v := range c.views {
		v.Render()
		v.ActiveChanged(c.active)
	}

	c.log.WithFields(logrus.Fields{
		"notes":    len(notes),
		"nodes":    c.graph.Len(),
		"duration": time.Since(start),
	}).Debug("graph rebuilt")
	return nil
}

// SetIncludePotential switches potential notes on or off, which needs a
// full rebuild
func (c *Coordinator) SetIncludePotential(ctx context.Context, include bool) error {
	if c.settings.IncludePotential == include {
		return nil
	}
	c.settings.IncludePotential = include
	return c.Refresh(ctx)
}

// Created handles a note appearing on disk. A note that was potential
// until now keeps its edges and gains its own.
func (c *Coordinator) Created(ctx context.Context, id string) {
	refs, err := c.source.References(ctx, id)
	if err != nil {
		c.log.WithError(err).WithField("id", id).Warn("failed to read references of created note")
		refs = nil
		if n, ok := c.graph.Get(id); ok {
			refs = n.Outgoing()
		}
	}

	c.graph.ResyncNode(id, true, func(string) []string { return refs })
	for _, v := range c.views {
		v.ExistenceChanged(id)
		v.ContentChanged(id)
	}
}

// ExistenceRemoved handles a note deleted from disk. The node stays as a
// potential note while anything still references it.
func (c *Coordinator) ExistenceRemoved(id string) {
	c.graph.RemoveExistence(id)
	for _, v := range c.views {
		v.ExistenceChanged(id)
		v.ContentChanged(id)
	}
}

// Renamed handles a note renamed on disk. Renaming onto an existing note
// merges both.
func (c *Coordinator) Renamed(oldID, newID string) {
	if oldID == newID || newID == "" {
		return
	}
	merged := c.graph.Rename(oldID, newID)
	if c.active == oldID {
		c.active = newID
	}
	for _, v := range c.views {
		v.Renamed(oldID, newID)
		if merged {
			v.ContentChanged(newID)
		}
	}
	if merged {
		c.log.WithFields(logrus.Fields{"from": oldID, "to": newID}).Info("renamed note merged into existing note")
	}
}

// ContentChanged handles an edit of a note's references. A failed read
// leaves the graph untouched.
func (c *Coordinator) ContentChanged(ctx context.Context, id string) {
	refs, err := c.source.References(ctx, id)
	if err != nil {
		c.log.WithError(err).WithField("id", id).Warn("failed to read references, keeping previous links")
		return
	}

	c.graph.ResyncNode(id, true, func(string) []string { return refs })
	for _, v := range c.views {
		v.ContentChanged(id)
	}
}

// ActiveChanged moves the highlight; an empty id clears it
func (c *Coordinator) ActiveChanged(id string) {
	c.active = id
	for _, v := range c.views {
		v.ActiveChanged(id)
	}
}

// SetSortOrder re-sorts the graph and every view
func (c *Coordinator) SetSortOrder(order domain.SortOrder) {
	c.settings.SortOrder = order
	c.graph.Sort(order)
	for _, v := range c.views {
		v.Resort()
	}
}

// CollapseAll re-renders every view over the current graph
func (c *Coordinator) CollapseAll() {
	for _, v := range c.views {
		v.CollapseAll()
	}
}

func (c *Coordinator) resolver(ctx context.Context) domain.Resolver {
	return func(id string) []string {
		refs, err := c.source.References(ctx, id)
		if err != nil {
			c.log.WithError(err).WithField("id", id).Warn("failed to resolve references")
			return nil
		}
		return refs
	}
}

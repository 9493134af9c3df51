// Package treeview keeps a lazily materialized tree of rows in sync with the
// link graph. Each row owns its presentation handle and its children; the
// same note may appear at any number of positions.
package treeview

import (
	"slices"

	"github.com/sirupsen/logrus"

	"treenotes/internal/domain"
	"treenotes/internal/logging"
	"treenotes/internal/ports"
)

// OpenFunc is invoked for a modifier click or a click on a leaf
type OpenFunc func(id string)

// Option configures a ViewCache
type Option func(*ViewCache)

// WithCutoff sets the minimum neighbor count for top-level rows
func WithCutoff(cutoff int) Option {
	return func(v *ViewCache) {
		if cutoff >= 0 {
			v.cutoff = cutoff
		}
	}
}

// WithOpener sets the open-note callback
func WithOpener(fn OpenFunc) Option {
	return func(v *ViewCache) {
		v.open = fn
	}
}

// WithLogger sets the logger used for lookup misses
func WithLogger(log *logrus.Entry) Option {
	return func(v *ViewCache) {
		if log != nil {
			v.log = log
		}
	}
}

// ViewCache is the forest of materialized rows for one tree view. It only
// reads the graph; the graph must be patched before any handler runs.
type ViewCache struct {
	graph  *domain.GraphCache
	root   ports.Container
	cutoff int
	roots  []*ViewNode
	active string
	open   OpenFunc
	log    *logrus.Entry
}

// New creates a view over graph rendering into root. Nothing is
// materialized until Render is called.
func New(graph *domain.GraphCache, root ports.Container, opts ...Option) *ViewCache {
	v := &ViewCache{
		graph: graph,
		root:  root,
		log:   logging.Component(nil, "treeview"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Cutoff returns the minimum count of a top-level row
func (v *ViewCache) Cutoff() int {
	return v.cutoff
}

// SetCutoff changes the cutoff and reconciles the top level
func (v *ViewCache) SetCutoff(cutoff int) {
	if cutoff < 0 || cutoff == v.cutoff {
		return
	}
	v.cutoff = cutoff
	v.RenderChildren(nil)
}

// ActiveID returns the highlighted note, empty when none
func (v *ViewCache) ActiveID() string {
	return v.active
}

// Roots returns the top-level rows in display order
func (v *ViewCache) Roots() []*ViewNode {
	return slices.Clone(v.roots)
}

// Render discards the forest and materializes the top level again
func (v *ViewCache) Render() {
	for _, vn := range v.roots {
		vn.markRemoved()
	}
	v.roots = nil
	v.root.Clear()
	v.RenderChildren(nil)
}

// CollapseAll is a full re-render over the same graph
func (v *ViewCache) CollapseAll() {
	v.Render()
}

// RenderChildren materializes the rows below parent, or the top level when
// parent is nil. Rows already present are reused by name so their own
// state survives; rows whose note is gone are removed.
func (v *ViewCache) RenderChildren(parent *ViewNode) {
	var (
		entries   []*domain.GraphNode
		existing  []*ViewNode
		container ports.Container
		path      []string
	)

	if parent == nil {
		entries = v.graph.Roots(v.cutoff)
		existing = v.roots
		container = v.root
	} else {
		if parent.removed {
			return
		}
		n, ok := v.graph.Get(parent.Name)
		if ok {
			parent.Node = n
			entries = n.Neighbors()
		} else {
			v.log.WithField("id", parent.Name).Warn("no graph node for expanded row, showing no children")
		}
		existing = parent.Children
		container = parent.row.Children()
		path = parent.Path
	}

	reuse := make(map[string]*ViewNode, len(existing))
	var stale []*ViewNode
	for _, vn := range existing {
		if _, dup := reuse[vn.Name]; dup {
			stale = append(stale, vn)
			continue
		}
		reuse[vn.Name] = vn
	}

	next := make([]*ViewNode, 0, len(entries))
	for _, n := range entries {
		if slices.Contains(path, n.ID) {
			continue
		}
		if vn, ok := reuse[n.ID]; ok {
			delete(reuse, n.ID)
			vn.Node = n
			vn.refresh()
			next = append(next, vn)
			continue
		}
		next = append(next, v.newViewNode(parent, n, container, path))
	}

	for _, vn := range existing {
		if reuse[vn.Name] == vn {
			stale = append(stale, vn)
		}
	}
	for _, vn := range stale {
		vn.remove()
	}

	container.Reorder(rowsOf(next))
	if parent == nil {
		v.roots = next
		return
	}
	parent.Children = next
	parent.materialized = true
	parent.refresh()
}

func (v *ViewCache) newViewNode(parent *ViewNode, n *domain.GraphNode, container ports.Container, path []string) *ViewNode {
	vn := &ViewNode{
		Name:      n.ID,
		Node:      n,
		Path:      append(slices.Clone(path), n.ID),
		Collapsed: true,
		parent:    parent,
		row:       container.CreateRow(),
		view:      v,
	}
	vn.row.OnClick(func(c ports.Click) {
		v.Click(vn, c.Modifier)
	})
	vn.refresh()
	return vn
}

// Click runs the row state machine. A plain click toggles a non-leaf row;
// a modifier click, or any click on a leaf, opens the note and leaves the
// row as it is.
func (v *ViewCache) Click(vn *ViewNode, modifier bool) {
	if vn == nil || vn.removed {
		return
	}
	if modifier || vn.IsLeaf() {
		if v.open != nil {
			v.open(vn.Name)
		}
		return
	}
	if vn.Collapsed {
		v.Expand(vn)
	} else {
		v.Collapse(vn)
	}
}

// Expand shows the children of vn, materializing them on first use
func (v *ViewCache) Expand(vn *ViewNode) {
	if vn == nil || vn.removed || vn.IsLeaf() {
		return
	}
	vn.Collapsed = false
	if !vn.materialized {
		v.RenderChildren(vn)
		return
	}
	vn.refresh()
}

// Collapse hides the children of vn; they stay cached
func (v *ViewCache) Collapse(vn *ViewNode) {
	if vn == nil || vn.removed {
		return
	}
	vn.Collapsed = true
	vn.refresh()
}

// ExpandTo expands every row above the given number of visible levels.
// A depth of 1 shows only the top level.
func (v *ViewCache) ExpandTo(depth int) {
	var expand func(nodes []*ViewNode, level int)
	expand = func(nodes []*ViewNode, level int) {
		if level >= depth {
			return
		}
		for _, vn := range nodes {
			if vn.IsLeaf() {
				continue
			}
			v.Expand(vn)
			expand(vn.Children, level+1)
		}
	}
	expand(v.roots, 1)
}

// Walk visits every materialized row in pre-order, including cached rows
// below collapsed parents
func (v *ViewCache) Walk(fn func(vn *ViewNode)) {
	var walk func(nodes []*ViewNode)
	walk = func(nodes []*ViewNode) {
		for _, vn := range nodes {
			fn(vn)
			walk(vn.Children)
		}
	}
	walk(v.roots)
}

// Find returns the materialized row at path, or nil
func (v *ViewCache) Find(path ...string) *ViewNode {
	level := v.roots
	var found *ViewNode
	for _, name := range path {
		found = nil
		for _, vn := range level {
			if vn.Name == name {
				found = vn
				break
			}
		}
		if found == nil {
			return nil
		}
		level = found.Children
	}
	return found
}

// FindAll returns every materialized row showing id
func (v *ViewCache) FindAll(id string) []*ViewNode {
	var out []*ViewNode
	v.Walk(func(vn *ViewNode) {
		if vn.Name == id {
			out = append(out, vn)
		}
	})
	return out
}

func rowsOf(nodes []*ViewNode) []ports.Row {
	rows := make([]ports.Row, len(nodes))
	for i, vn := range nodes {
		rows[i] = vn.row
	}
	return rows
}

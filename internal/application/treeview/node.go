package treeview

import (
	"slices"
	"strings"

	"treenotes/internal/domain"
	"treenotes/internal/ports"
)

// ViewNode is one materialized row of the tree. The same note can appear
// at several positions; Path (names from the top level down to this node)
// identifies the position.
type ViewNode struct {
	Name      string
	Node      *domain.GraphNode
	Path      []string
	Collapsed bool

	// Children are cached after the first expansion and survive
	// collapse/expand cycles until the node is invalidated
	Children []*ViewNode

	parent       *ViewNode
	row          ports.Row
	view         *ViewCache
	materialized bool
	removed      bool
}

// IsLeaf reports whether every neighbor of the note is already on the
// path, so expanding would show nothing
func (vn *ViewNode) IsLeaf() bool {
	if vn.Node == nil {
		return true
	}
	for _, id := range vn.Node.NeighborIDs() {
		if !slices.Contains(vn.Path, id) {
			return false
		}
	}
	return true
}

// VisibleChildren returns the children currently shown below the row
func (vn *ViewNode) VisibleChildren() []*ViewNode {
	if vn.Collapsed || vn.IsLeaf() {
		return nil
	}
	return vn.Children
}

// Depth is 0 for top-level rows
func (vn *ViewNode) Depth() int {
	return len(vn.Path) - 1
}

// Active reports whether the row shows the active note
func (vn *ViewNode) Active() bool {
	return vn.view != nil && vn.view.active != "" && vn.view.active == vn.Name
}

// Parent returns nil for top-level rows
func (vn *ViewNode) Parent() *ViewNode {
	return vn.parent
}

// Row returns the presentation handle owned by this node
func (vn *ViewNode) Row() ports.Row {
	return vn.row
}

// Key joins the path into a printable identifier
func (vn *ViewNode) Key() string {
	return strings.Join(vn.Path, "/")
}

func (vn *ViewNode) hasChild(name string) bool {
	for _, c := range vn.Children {
		if c.Name == name {
			return true
		}
	}
	return false
}

// refresh pushes the node's state to its row. The graph node is looked up
// again by name because renames and merges replace it.
func (vn *ViewNode) refresh() {
	if n, ok := vn.view.graph.Get(vn.Name); ok {
		vn.Node = n
	} else if vn.Node != nil && vn.Node.ID != vn.Name {
		vn.Node = nil
	}

	vn.row.SetText(vn.Name)
	if vn.Node != nil {
		vn.row.SetCount(vn.Node.Count)
		vn.row.SetFlag(ports.FlagUnresolved, !vn.Node.ExistsOnDisk)
	}
	leaf := vn.IsLeaf()
	vn.row.SetFlag(ports.FlagLeaf, leaf)
	vn.row.SetFlag(ports.FlagCollapsed, vn.Collapsed)
	vn.row.SetFlag(ports.FlagActive, vn.Active())
	vn.row.SetChildrenVisible(!vn.Collapsed && !leaf)
}

// remove detaches the row and marks the whole subtree dead so handlers
// holding a reference skip it
func (vn *ViewNode) remove() {
	vn.row.Remove()
	vn.markRemoved()
}

func (vn *ViewNode) markRemoved() {
	vn.removed = true
	for _, c := range vn.Children {
		c.markRemoved()
	}
}

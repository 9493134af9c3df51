package domain

import (
	"fmt"
	"slices"
)

// GraphNode is one note identity in the link graph, existing or merely
// referenced. Two nodes are neighbors when either references the other.
type GraphNode struct {
	ID           string
	ExistsOnDisk bool
	Count        int // Number of neighbors

	neighbors map[string]*GraphNode
	order     []*GraphNode // neighbors in display order
	outgoing  map[string]struct{}
}

func newGraphNode(id string) *GraphNode {
	return &GraphNode{
		ID:        id,
		neighbors: make(map[string]*GraphNode),
		outgoing:  make(map[string]struct{}),
	}
}

// Neighbors returns the neighbors in display order
func (n *GraphNode) Neighbors() []*GraphNode {
	return slices.Clone(n.order)
}

// NeighborIDs returns the neighbor ids in display order
func (n *GraphNode) NeighborIDs() []string {
	ids := make([]string, len(n.order))
	for i, m := range n.order {
		ids[i] = m.ID
	}
	return ids
}

// HasNeighbor reports whether id is connected to n
func (n *GraphNode) HasNeighbor(id string) bool {
	_, ok := n.neighbors[id]
	return ok
}

// Outgoing returns the ids this note references itself, sorted
func (n *GraphNode) Outgoing() []string {
	ids := make([]string, 0, len(n.outgoing))
	for id := range n.outgoing {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (n *GraphNode) addNeighbor(m *GraphNode) bool {
	if _, ok := n.neighbors[m.ID]; ok {
		return false
	}
	n.neighbors[m.ID] = m
	n.order = append(n.order, m)
	return true
}

func (n *GraphNode) removeNeighbor(id string) {
	m, ok := n.neighbors[id]
	if !ok {
		return
	}
	delete(n.neighbors, id)
	n.order = slices.DeleteFunc(n.order, func(x *GraphNode) bool { return x == m })
}

func (n *GraphNode) recount() {
	n.Count = len(n.neighbors)
}

// GraphCache is the in-memory backlink graph. It is the single owner of
// every GraphNode and is not safe for concurrent use.
type GraphCache struct {
	nodes            map[string]*GraphNode
	order            []*GraphNode
	sortOrder        SortOrder
	includePotential bool

	// potential target -> referrers, only kept while potential notes are
	// excluded from the graph
	hidden map[string]map[string]struct{}
}

// NewGraphCache creates an empty cache using the default sort order
func NewGraphCache() *GraphCache {
	return &GraphCache{
		nodes:            make(map[string]*GraphNode),
		hidden:           make(map[string]map[string]struct{}),
		sortOrder:        DefaultSortOrder,
		includePotential: true,
	}
}

// Build adds every note of the snapshot and its references to the graph.
// With includePotential false, referenced notes that never showed up as
// existing are left out along with their edges.
func (g *GraphCache) Build(notes []NoteRef, resolve Resolver, includePotential bool) {
	g.includePotential = includePotential

	for _, note := range notes {
		if note.ID == "" {
			continue
		}
		current := g.GetOrCreate(note.ID)
		if note.Exists {
			current.ExistsOnDisk = true
		}
		if resolve == nil {
			continue
		}
		for _, ref := range resolve(note.ID) {
			if ref == "" {
				continue
			}
			current.outgoing[ref] = struct{}{}
			g.link(current, g.GetOrCreate(ref))
		}
	}

	if !includePotential {
		for _, n := range slices.Clone(g.order) {
			if !n.ExistsOnDisk {
				g.hideNode(n)
			}
		}
	}

	for _, n := range g.order {
		n.recount()
	}
	g.applySort()
}

// Clear drops every node. The sort order and potential-note mode are kept.
func (g *GraphCache) Clear() {
	g.nodes = make(map[string]*GraphNode)
	g.order = nil
	g.hidden = make(map[string]map[string]struct{})
}

// Get looks a node up without creating it
func (g *GraphCache) Get(id string) (*GraphNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// GetOrCreate returns the node for id, allocating a potential node if the
// id was never seen
func (g *GraphCache) GetOrCreate(id string) *GraphNode {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := newGraphNode(id)
	g.nodes[id] = n
	g.order = append(g.order, n)
	return n
}

// Len returns the number of nodes
func (g *GraphCache) Len() int {
	return len(g.nodes)
}

// Nodes returns every node in display order
func (g *GraphCache) Nodes() []*GraphNode {
	return slices.Clone(g.order)
}

// Roots returns the nodes with at least cutoff neighbors, in display order
func (g *GraphCache) Roots(cutoff int) []*GraphNode {
	var roots []*GraphNode
	for _, n := range g.order {
		if n.Count >= cutoff {
			roots = append(roots, n)
		}
	}
	return roots
}

// IncludesPotential reports whether potential notes take part in the graph
func (g *GraphCache) IncludesPotential() bool {
	return g.includePotential
}

// SortOrder returns the active sort order
func (g *GraphCache) SortOrder() SortOrder {
	return g.sortOrder
}

// Sort reorders the top level and every neighbor list. Later mutations keep
// applying the same order.
func (g *GraphCache) Sort(order SortOrder) {
	g.sortOrder = order
	g.applySort()
}

// ResyncNode recomputes the outgoing references of one note and patches
// only the edges and counts that change. exists marks the note as present
// on disk (a create event resyncs a node that was potential until now).
func (g *GraphCache) ResyncNode(id string, exists bool, resolve Resolver) {
	if id == "" {
		return
	}

	n, known := g.nodes[id]
	if !known && !exists && !g.includePotential {
		// an absent note that is not shown either
		return
	}
	if !known {
		n = g.GetOrCreate(id)
	}
	if exists {
		n.ExistsOnDisk = true
	}

	touched := map[string]*GraphNode{n.ID: n}
	if !known && !g.includePotential {
		g.adoptHidden(n, touched)
	}

	var refs []string
	next := make(map[string]struct{})
	if resolve != nil {
		for _, ref := range resolve(id) {
			if ref == "" {
				continue
			}
			if _, dup := next[ref]; dup {
				continue
			}
			next[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}

	for _, ref := range n.Outgoing() {
		if _, keep := next[ref]; keep {
			continue
		}
		delete(n.outgoing, ref)
		g.unhide(ref, id)

		m, ok := g.nodes[ref]
		if !ok {
			continue
		}
		if _, back := m.outgoing[id]; back {
			continue
		}
		g.unlink(n, m)
		touched[m.ID] = m
	}

	for _, ref := range refs {
		if _, had := n.outgoing[ref]; had {
			continue
		}
		n.outgoing[ref] = struct{}{}

		m, ok := g.nodes[ref]
		if !ok {
			if !g.includePotential {
				g.hide(ref, id)
				continue
			}
			m = g.GetOrCreate(ref)
		}
		g.link(n, m)
		touched[m.ID] = m
	}

	for _, t := range touched {
		t.recount()
	}
	g.applySort()
}

// RemoveExistence marks a note as no longer present on disk. The node and
// its edges stay; a note that is referenced but gone is a potential note.
// When potential notes are excluded the node is hidden instead.
func (g *GraphCache) RemoveExistence(id string) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	n.ExistsOnDisk = false
	if g.includePotential {
		return
	}

	for ref := range n.outgoing {
		g.unhide(ref, id)
	}
	neighbors := n.Neighbors()
	g.hideNode(n)
	for _, m := range neighbors {
		if m != n {
			m.recount()
		}
	}
	g.applySort()
}

// Rename re-keys a node and rewrites every edge and reference naming
// oldID. Renaming onto an existing id merges both nodes by union of their
// edges; merged reports that case.
func (g *GraphCache) Rename(oldID, newID string) (merged bool) {
	if oldID == newID || newID == "" {
		return false
	}

	for _, m := range g.order {
		if _, refs := m.outgoing[oldID]; refs {
			delete(m.outgoing, oldID)
			m.outgoing[newID] = struct{}{}
		}
	}
	g.renameHidden(oldID, newID)

	n, ok := g.nodes[oldID]
	if !ok {
		if t, present := g.nodes[newID]; present {
			g.restoreHidden(t)
			g.applySort()
		}
		return false
	}
	delete(g.nodes, oldID)

	target, exists := g.nodes[newID]
	if !exists {
		n.ID = newID
		g.nodes[newID] = n
		for _, m := range n.order {
			delete(m.neighbors, oldID)
			m.neighbors[newID] = n
		}
		g.restoreHidden(n)
		g.applySort()
		return false
	}

	target.ExistsOnDisk = target.ExistsOnDisk || n.ExistsOnDisk
	for ref := range n.outgoing {
		target.outgoing[ref] = struct{}{}
	}
	for _, m := range n.Neighbors() {
		if m == n {
			g.link(target, target)
			continue
		}
		m.removeNeighbor(oldID)
		g.link(target, m)
		m.recount()
	}
	g.order = slices.DeleteFunc(g.order, func(x *GraphNode) bool { return x == n })
	target.recount()
	g.applySort()
	return true
}

// CheckInvariants verifies symmetry, count freshness and the absence of
// dangling edges
func (g *GraphCache) CheckInvariants() error {
	if len(g.order) != len(g.nodes) {
		return fmt.Errorf("order has %d entries, map has %d", len(g.order), len(g.nodes))
	}
	for id, n := range g.nodes {
		if n.ID != id {
			return fmt.Errorf("node %q stored under key %q", n.ID, id)
		}
		if n.Count != len(n.neighbors) {
			return fmt.Errorf("node %q: count %d, %d neighbors", id, n.Count, len(n.neighbors))
		}
		if len(n.order) != len(n.neighbors) {
			return fmt.Errorf("node %q: neighbor order out of sync", id)
		}
		for mid, m := range n.neighbors {
			if g.nodes[mid] != m {
				return fmt.Errorf("node %q: dangling neighbor %q", id, mid)
			}
			if m.neighbors[id] != n {
				return fmt.Errorf("edge %q-%q is not symmetric", id, mid)
			}
		}
	}
	return nil
}

func (g *GraphCache) link(a, b *GraphNode) {
	a.addNeighbor(b)
	if a != b {
		b.addNeighbor(a)
	}
}

func (g *GraphCache) unlink(a, b *GraphNode) {
	a.removeNeighbor(b.ID)
	if a != b {
		b.removeNeighbor(a.ID)
	}
}

// hideNode takes a node out of the graph, remembering which of its
// neighbors reference it so the edges can come back with the note
func (g *GraphCache) hideNode(n *GraphNode) {
	for _, m := range n.order {
		if m == n {
			continue
		}
		if _, refs := m.outgoing[n.ID]; refs {
			g.hide(n.ID, m.ID)
		}
		m.removeNeighbor(n.ID)
	}
	delete(g.nodes, n.ID)
	g.order = slices.DeleteFunc(g.order, func(x *GraphNode) bool { return x == n })
}

// restoreHidden links n to referrers recorded while its id was hidden
func (g *GraphCache) restoreHidden(n *GraphNode) {
	touched := map[string]*GraphNode{n.ID: n}
	g.adoptHidden(n, touched)
	for _, t := range touched {
		t.recount()
	}
}

// adoptHidden restores the edges of referrers recorded while n was hidden
func (g *GraphCache) adoptHidden(n *GraphNode, touched map[string]*GraphNode) {
	referrers := g.hidden[n.ID]
	delete(g.hidden, n.ID)
	for src := range referrers {
		m, ok := g.nodes[src]
		if !ok {
			continue
		}
		g.link(n, m)
		touched[m.ID] = m
	}
}

func (g *GraphCache) hide(target, referrer string) {
	refs, ok := g.hidden[target]
	if !ok {
		refs = make(map[string]struct{})
		g.hidden[target] = refs
	}
	refs[referrer] = struct{}{}
}

func (g *GraphCache) unhide(target, referrer string) {
	refs, ok := g.hidden[target]
	if !ok {
		return
	}
	delete(refs, referrer)
	if len(refs) == 0 {
		delete(g.hidden, target)
	}
}

func (g *GraphCache) renameHidden(oldID, newID string) {
	if refs, ok := g.hidden[oldID]; ok {
		delete(g.hidden, oldID)
		for src := range refs {
			g.hide(newID, src)
		}
	}
	for _, refs := range g.hidden {
		if _, ok := refs[oldID]; ok {
			delete(refs, oldID)
			refs[newID] = struct{}{}
		}
	}
}

func (g *GraphCache) applySort() {
	compare := g.sortOrder.compareFunc()
	slices.SortFunc(g.order, compare)
	for _, n := range g.order {
		slices.SortFunc(n.order, compare)
	}
}

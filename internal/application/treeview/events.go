package treeview

import (
	"slices"

	"treenotes/internal/domain"
	"treenotes/internal/ports"
)

// ActiveChanged moves the highlight to every row showing id. An empty id
// clears it.
func (v *ViewCache) ActiveChanged(id string) {
	v.active = id
	v.Walk(func(vn *ViewNode) {
		vn.row.SetFlag(ports.FlagActive, vn.Active())
	})
}

// ExistenceChanged updates the potential-note flag of every row showing id.
// The structure is left alone.
func (v *ViewCache) ExistenceChanged(id string) {
	n, ok := v.graph.Get(id)
	v.Walk(func(vn *ViewNode) {
		if vn.Name != id {
			return
		}
		if !ok {
			v.missing(id, "existence changed for a row without graph node")
			return
		}
		vn.Node = n
		vn.row.SetFlag(ports.FlagUnresolved, !n.ExistsOnDisk)
	})
}

// Renamed rewrites oldID to newID in every path, including rows that only
// pass through the renamed note, and re-points the renamed rows at the
// graph node now holding the name.
func (v *ViewCache) Renamed(oldID, newID string) {
	if oldID == newID || newID == "" {
		return
	}
	v.Walk(func(vn *ViewNode) {
		for i, seg := range vn.Path {
			if seg == oldID {
				vn.Path[i] = newID
			}
		}
		if vn.Name != oldID {
			return
		}
		vn.Name = newID
		if _, ok := v.graph.Get(newID); !ok {
			v.missing(newID, "renamed row has no graph node")
		}
		vn.refresh()
	})
	if v.active == oldID {
		v.ActiveChanged(newID)
	}
	v.Resort()
}

// ContentChanged patches the rows touched by a change of id's outgoing
// references: rows showing id, rows with a child id and rows whose note
// neighbors id are re-materialized when they have children; the top level
// is reconciled against the cutoff. Everything else keeps its rows.
func (v *ViewCache) ContentChanged(id string) {
	var affected []*ViewNode
	v.Walk(func(vn *ViewNode) {
		if vn.Name == id || vn.hasChild(id) {
			affected = append(affected, vn)
			return
		}
		if n, ok := v.graph.Get(vn.Name); ok && n.HasNeighbor(id) {
			affected = append(affected, vn)
		}
	})

	v.RenderChildren(nil)
	for _, vn := range affected {
		if vn.removed {
			continue
		}
		if vn.materialized {
			v.RenderChildren(vn)
		}
	}

	// counts of former neighbors changed too, and they may not be listed
	// above any more
	v.Walk(func(vn *ViewNode) {
		vn.refresh()
	})
	v.Resort()
}

// Resort reorders every materialized level to the graph's current order
func (v *ViewCache) Resort() {
	v.roots = v.sorted(v.roots, v.graph.Nodes())
	v.root.Reorder(rowsOf(v.roots))
	v.Walk(func(vn *ViewNode) {
		if len(vn.Children) == 0 {
			return
		}
		n, ok := v.graph.Get(vn.Name)
		if !ok {
			return
		}
		vn.Children = v.sorted(vn.Children, n.Neighbors())
		vn.row.Children().Reorder(rowsOf(vn.Children))
	})
}

// sorted returns nodes ordered like order; names not in order go last in
// their current relative order
func (v *ViewCache) sorted(nodes []*ViewNode, order []*domain.GraphNode) []*ViewNode {
	rank := make(map[string]int, len(order))
	for i, n := range order {
		rank[n.ID] = i
	}
	out := slices.Clone(nodes)
	slices.SortStableFunc(out, func(a, b *ViewNode) int {
		ra, oka := rank[a.Name]
		rb, okb := rank[b.Name]
		switch {
		case oka && okb:
			return ra - rb
		case oka:
			return -1
		case okb:
			return 1
		default:
			return 0
		}
	})
	return out
}

func (v *ViewCache) missing(id, msg string) {
	entry := v.log.WithField("id", id)
	if v.graph.IncludesPotential() {
		entry.Warn(msg)
		return
	}
	entry.Debug(msg)
}

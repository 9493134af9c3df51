package outline

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"treenotes/internal/application/treeview"
	"treenotes/internal/domain"
	"treenotes/internal/ports"
)

// Container is an in-memory ports.Container. The TUI draws it through
// Visible; the CLI and MCP server print it with Write.
type Container struct {
	rows  []*Row
	owner *Row
}

// New creates an empty top-level container
func New() *Container {
	return &Container{}
}

// Ensure Container and Row implement the presentation ports
var (
	_ ports.Container = (*Container)(nil)
	_ ports.Row       = (*Row)(nil)
)

// CreateRow appends a new row
func (c *Container) CreateRow() ports.Row {
	r := &Row{
		flags:     make(map[ports.Flag]bool),
		container: c,
	}
	r.children = &Container{owner: r}
	c.rows = append(c.rows, r)
	return r
}

// Reorder arranges rows in the given order; unlisted rows keep their
// relative order after the listed ones
func (c *Container) Reorder(rows []ports.Row) {
	ordered := make([]*Row, 0, len(c.rows))
	seen := make(map[*Row]bool, len(c.rows))
	for _, pr := range rows {
		r, ok := pr.(*Row)
		if ok && r.container == c && !seen[r] {
			seen[r] = true
			ordered = append(ordered, r)
		}
	}
	for _, r := range c.rows {
		if !seen[r] {
			ordered = append(ordered, r)
		}
	}
	c.rows = ordered
}

// Clear removes every row
func (c *Container) Clear() {
	for _, r := range c.rows {
		r.container = nil
	}
	c.rows = nil
}

// Rows returns the rows in display order
func (c *Container) Rows() []*Row {
	return c.rows
}

// Owner returns the row this container belongs to, nil at top level
func (c *Container) Owner() *Row {
	return c.owner
}

// Row is an in-memory ports.Row
type Row struct {
	text            string
	count           int
	flags           map[ports.Flag]bool
	onClick         func(ports.Click)
	childrenVisible bool
	children        *Container
	container       *Container
}

func (r *Row) SetText(text string)              { r.text = text }
func (r *Row) SetCount(count int)               { r.count = count }
func (r *Row) SetFlag(flag ports.Flag, on bool) { r.flags[flag] = on }
func (r *Row) OnClick(fn func(ports.Click))     { r.onClick = fn }
func (r *Row) SetChildrenVisible(visible bool)  { r.childrenVisible = visible }
func (r *Row) Children() ports.Container        { return r.children }

// Remove detaches the row from its container
func (r *Row) Remove() {
	if r.container == nil {
		return
	}
	c := r.container
	c.rows = slices.DeleteFunc(c.rows, func(x *Row) bool { return x == r })
	r.container = nil
}

func (r *Row) Text() string               { return r.text }
func (r *Row) Count() int                 { return r.count }
func (r *Row) Flag(flag ports.Flag) bool  { return r.flags[flag] }
func (r *Row) ChildrenVisible() bool      { return r.childrenVisible }
func (r *Row) Attached() bool             { return r.container != nil }

// Parent returns the row whose container holds r, nil at top level
func (r *Row) Parent() *Row {
	if r.container == nil {
		return nil
	}
	return r.container.owner
}

// Click delivers a click to the registered listener
func (r *Row) Click(modifier bool) {
	if r.onClick != nil {
		r.onClick(ports.Click{Modifier: modifier})
	}
}

// Line is one visible row with its indentation depth
type Line struct {
	Row   *Row
	Depth int
}

// Visible flattens the rows that are currently shown, in display order
func (c *Container) Visible() []Line {
	var lines []Line
	c.flatten(&lines, 0)
	return lines
}

func (c *Container) flatten(lines *[]Line, depth int) {
	for _, r := range c.rows {
		*lines = append(*lines, Line{Row: r, Depth: depth})
		if r.childrenVisible {
			r.children.flatten(lines, depth+1)
		}
	}
}

// Marker is the expansion glyph of a row
func (r *Row) Marker() string {
	switch {
	case r.flags[ports.FlagLeaf]:
		return "•"
	case r.childrenVisible:
		return "▾"
	default:
		return "▸"
	}
}

// Write prints the visible rows as an indented outline
func (c *Container) Write(w io.Writer) error {
	for _, l := range c.Visible() {
		line := fmt.Sprintf("%s%s %s (%d)", strings.Repeat("  ", l.Depth), l.Row.Marker(), l.Row.text, l.Row.count)
		if l.Row.flags[ports.FlagUnresolved] {
			line += " [potential]"
		}
		if l.Row.flags[ports.FlagActive] {
			line += " *"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Node is the serializable form of a visible row
type Node struct {
	Name      string `json:"name"`
	Count     int    `json:"count"`
	Potential bool   `json:"potential,omitempty"`
	Active    bool   `json:"active,omitempty"`
	Children  []Node `json:"children,omitempty"`
}

// Tree returns the visible rows as nested nodes
func (c *Container) Tree() []Node {
	nodes := make([]Node, 0, len(c.rows))
	for _, r := range c.rows {
		n := Node{
			Name:      r.text,
			Count:     r.count,
			Potential: r.flags[ports.FlagUnresolved],
			Active:    r.flags[ports.FlagActive],
		}
		if r.childrenVisible {
			n.Children = r.children.Tree()
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// Expanded renders a detached view of graph with every row above depth
// levels expanded. A depth of 1 shows only the top level. The view is not
// attached to anything, so it never sees later events.
func Expanded(graph *domain.GraphCache, cutoff, depth int, active string) *Container {
	root := New()
	view := treeview.New(graph, root, treeview.WithCutoff(cutoff))
	view.Render()
	if active != "" {
		view.ActiveChanged(active)
	}
	view.ExpandTo(depth)
	return root
}

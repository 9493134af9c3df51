package treeview

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treenotes/internal/domain"
	"treenotes/internal/ports"
)

type fakeContainer struct {
	rows []*fakeRow
}

func (c *fakeContainer) CreateRow() ports.Row {
	r := &fakeRow{
		parent:   c,
		flags:    make(map[ports.Flag]bool),
		children: &fakeContainer{},
	}
	c.rows = append(c.rows, r)
	return r
}

func (c *fakeContainer) Reorder(rows []ports.Row) {
	var ordered []*fakeRow
	for _, r := range rows {
		fr := r.(*fakeRow)
		if slices.Contains(c.rows, fr) {
			ordered = append(ordered, fr)
		}
	}
	for _, fr := range c.rows {
		if !slices.Contains(ordered, fr) {
			ordered = append(ordered, fr)
		}
	}
	c.rows = ordered
}

func (c *fakeContainer) Clear() {
	c.rows = nil
}

func (c *fakeContainer) texts() []string {
	out := make([]string, len(c.rows))
	for i, r := range c.rows {
		out[i] = r.text
	}
	return out
}

type fakeRow struct {
	parent   *fakeContainer
	text     string
	count    int
	flags    map[ports.Flag]bool
	click    func(ports.Click)
	visible  bool
	children *fakeContainer
}

func (r *fakeRow) SetText(text string)              { r.text = text }
func (r *fakeRow) SetCount(count int)               { r.count = count }
func (r *fakeRow) SetFlag(flag ports.Flag, on bool) { r.flags[flag] = on }
func (r *fakeRow) OnClick(fn func(ports.Click))     { r.click = fn }
func (r *fakeRow) SetChildrenVisible(visible bool)  { r.visible = visible }
func (r *fakeRow) Children() ports.Container        { return r.children }

func (r *fakeRow) Remove() {
	r.parent.rows = slices.DeleteFunc(r.parent.rows, func(x *fakeRow) bool { return x == r })
}

func rowOf(vn *ViewNode) *fakeRow {
	return vn.Row().(*fakeRow)
}

func names(nodes []*ViewNode) []string {
	out := make([]string, len(nodes))
	for i, vn := range nodes {
		out[i] = vn.Name
	}
	return out
}

func buildGraph(refs map[string][]string, notes ...string) *domain.GraphCache {
	var snapshot []domain.NoteRef
	for _, id := range notes {
		snapshot = append(snapshot, domain.NoteRef{ID: id, Exists: true})
	}
	g := domain.NewGraphCache()
	g.Build(snapshot, func(id string) []string { return refs[id] }, true)
	return g
}

func scenarioGraph() *domain.GraphCache {
	return buildGraph(map[string][]string{
		"A": {"B", "C"},
		"B": {"C"},
		"C": {"D"},
	}, "A", "B", "C", "D")
}

type opened struct {
	ids []string
}

func (o *opened) open(id string) {
	o.ids = append(o.ids, id)
}

func newView(t *testing.T, g *domain.GraphCache, cutoff int) (*ViewCache, *fakeContainer, *opened) {
	t.Helper()
	root := &fakeContainer{}
	o := &opened{}
	v := New(g, root, WithCutoff(cutoff), WithOpener(o.open))
	v.Render()
	return v, root, o
}

func TestRender_Scenario(t *testing.T) {
	v, root, _ := newView(t, scenarioGraph(), 2)

	assert.Equal(t, []string{"C", "A", "B"}, names(v.Roots()))
	assert.Equal(t, []string{"C", "A", "B"}, root.texts())

	c := v.Find("C")
	require.NotNil(t, c)
	assert.Equal(t, 3, rowOf(c).count)
	assert.True(t, rowOf(c).flags[ports.FlagCollapsed])
	assert.Empty(t, c.Children, "children are not materialized before expansion")

	v.Expand(c)
	assert.Equal(t, []string{"A", "B", "D"}, names(c.VisibleChildren()))
	assert.Equal(t, []string{"A", "B", "D"}, rowOf(c).children.texts())
	assert.True(t, rowOf(c).visible)

	d := v.Find("C", "D")
	require.NotNil(t, d)
	assert.True(t, d.IsLeaf())
	assert.True(t, rowOf(d).flags[ports.FlagLeaf])
	assert.Equal(t, []string{"C", "D"}, d.Path)
	assert.Equal(t, 1, d.Depth())
	assert.Same(t, c, d.Parent())
}

func TestClick_StateMachine(t *testing.T) {
	v, _, o := newView(t, scenarioGraph(), 2)
	c := v.Find("C")

	rowOf(c).click(ports.Click{})
	assert.False(t, c.Collapsed)
	first := c.Children

	rowOf(c).click(ports.Click{})
	assert.True(t, c.Collapsed)
	assert.Empty(t, c.VisibleChildren())
	assert.False(t, rowOf(c).visible)

	rowOf(c).click(ports.Click{})
	assert.False(t, c.Collapsed)
	require.Len(t, c.Children, len(first))
	for i := range first {
		assert.Same(t, first[i], c.Children[i], "expanding again reuses the cached rows")
	}

	rowOf(c).click(ports.Click{Modifier: true})
	assert.False(t, c.Collapsed, "modifier click never toggles")
	assert.Equal(t, []string{"C"}, o.ids)

	d := v.Find("C", "D")
	rowOf(d).click(ports.Click{})
	assert.True(t, d.Collapsed)
	assert.Equal(t, []string{"C", "D"}, o.ids, "clicking a leaf opens it")
}

func TestCycleTolerance(t *testing.T) {
	g := buildGraph(map[string][]string{
		"A": {"B"},
		"B": {"C", "A"},
		"C": {"A", "C"},
	}, "A", "B", "C")
	v, _, _ := newView(t, g, 1)

	a := v.Find("A")
	v.Expand(a)
	b := v.Find("A", "B")
	require.NotNil(t, b)
	v.Expand(b)

	c := v.Find("A", "B", "C")
	require.NotNil(t, c)
	assert.True(t, c.IsLeaf(), "every neighbor of C is already on the path")

	v.Expand(c)
	assert.True(t, c.Collapsed)
	assert.Empty(t, c.Children)
}

func TestCycleTolerance_TwoNotes(t *testing.T) {
	g := buildGraph(map[string][]string{"A": {"B"}, "B": {"A"}}, "A", "B")
	v, _, _ := newView(t, g, 1)

	b := v.Find("B")
	v.Expand(b)
	a := v.Find("B", "A")
	require.NotNil(t, a)
	assert.True(t, a.IsLeaf())
	assert.True(t, rowOf(a).flags[ports.FlagLeaf])
}

func TestExpandTo(t *testing.T) {
	v, _, _ := newView(t, scenarioGraph(), 2)
	v.ExpandTo(2)

	for _, root := range v.Roots() {
		assert.False(t, root.Collapsed, root.Name)
	}
	ca := v.Find("C", "A")
	require.NotNil(t, ca)
	assert.True(t, ca.Collapsed)
	assert.Empty(t, ca.Children)
}

func TestCollapseAll(t *testing.T) {
	v, root, _ := newView(t, scenarioGraph(), 2)
	v.ExpandTo(3)
	old := v.Find("C")

	v.CollapseAll()
	assert.Equal(t, []string{"C", "A", "B"}, root.texts())
	c := v.Find("C")
	assert.NotSame(t, old, c)
	assert.True(t, c.Collapsed)

	v.Click(old, false)
	assert.Empty(t, rowOf(c).children.rows, "rows of a discarded forest are inert")
}

func TestFind(t *testing.T) {
	v, _, _ := newView(t, scenarioGraph(), 2)
	assert.Nil(t, v.Find("D"), "D is below the cutoff")
	assert.Nil(t, v.Find("C", "A"), "not materialized yet")
	assert.Nil(t, v.Find())
}

func TestSetCutoff(t *testing.T) {
	v, root, _ := newView(t, scenarioGraph(), 2)
	c := v.Find("C")

	v.SetCutoff(3)
	assert.Equal(t, []string{"C"}, root.texts())
	assert.Same(t, c, v.Find("C"))

	v.SetCutoff(0)
	assert.Equal(t, []string{"C", "A", "B", "D"}, root.texts())
}

func TestRenderChildren_MissingGraphNode(t *testing.T) {
	g := buildGraph(map[string][]string{"A": {"P"}, "B": {"P"}}, "A", "B")
	v, _, _ := newView(t, g, 2)

	p := v.Find("P")
	require.NotNil(t, p)

	// reconcile against a graph that no longer knows P
	g.Clear()
	v.RenderChildren(p)
	assert.Empty(t, p.Children)
}

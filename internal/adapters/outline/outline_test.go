package outline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treenotes/internal/application/treeview"
	"treenotes/internal/domain"
	"treenotes/internal/ports"
)

func scenarioView(t *testing.T) (*treeview.ViewCache, *Container) {
	t.Helper()
	refs := map[string][]string{
		"A": {"B", "C"},
		"B": {"C"},
		"C": {"D", "P"},
	}
	var notes []domain.NoteRef
	for _, id := range []string{"A", "B", "C", "D"} {
		notes = append(notes, domain.NoteRef{ID: id, Exists: true})
	}
	g := domain.NewGraphCache()
	g.Build(notes, func(id string) []string { return refs[id] }, true)

	root := New()
	v := treeview.New(g, root, treeview.WithCutoff(2))
	v.Render()
	return v, root
}

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Row.Text()
	}
	return out
}

func TestVisible(t *testing.T) {
	v, root := scenarioView(t)

	assert.Equal(t, []string{"C", "A", "B"}, texts(root.Visible()))

	v.Expand(v.Find("C"))
	lines := root.Visible()
	assert.Equal(t, []string{"C", "A", "B", "D", "P", "A", "B"}, texts(lines))
	assert.Equal(t, 0, lines[0].Depth)
	assert.Equal(t, 1, lines[1].Depth)
	assert.Same(t, lines[0].Row, lines[1].Row.Parent())
	assert.Nil(t, lines[0].Row.Parent())

	v.Collapse(v.Find("C"))
	assert.Equal(t, []string{"C", "A", "B"}, texts(root.Visible()))
}

func TestWrite(t *testing.T) {
	v, root := scenarioView(t)
	v.ActiveChanged("A")
	v.Expand(v.Find("C"))

	var buf bytes.Buffer
	require.NoError(t, root.Write(&buf))
	want := "" +
		"▾ C (4)\n" +
		"  ▸ A (2) *\n" +
		"  ▸ B (2)\n" +
		"  • D (1)\n" +
		"  • P (1) [potential]\n" +
		"▸ A (2) *\n" +
		"▸ B (2)\n"
	assert.Equal(t, want, buf.String())
}

func TestTree(t *testing.T) {
	v, root := scenarioView(t)
	v.Expand(v.Find("C"))

	tree := root.Tree()
	require.Len(t, tree, 3)
	assert.Equal(t, "C", tree[0].Name)
	assert.Equal(t, 4, tree[0].Count)
	require.Len(t, tree[0].Children, 4)
	assert.Equal(t, Node{Name: "P", Count: 1, Potential: true}, tree[0].Children[3])
	assert.Empty(t, tree[1].Children)
}

func TestRowClick(t *testing.T) {
	v, root := scenarioView(t)

	c := root.Rows()[0]
	c.Click(false)
	assert.False(t, v.Find("C").Collapsed)
	assert.Equal(t, "▾", c.Marker())
	assert.False(t, c.Flag(ports.FlagCollapsed))

	c.Click(false)
	assert.True(t, v.Find("C").Collapsed)
	assert.Equal(t, "▸", c.Marker())
}

func TestContainer_ReorderAndRemove(t *testing.T) {
	root := New()
	a := root.CreateRow()
	b := root.CreateRow()
	c := root.CreateRow()
	a.SetText("a")
	b.SetText("b")
	c.SetText("c")

	foreign := New().CreateRow()
	root.Reorder([]ports.Row{c, foreign, a})
	assert.Equal(t, []*Row{c.(*Row), a.(*Row), b.(*Row)}, root.Rows())

	b.Remove()
	assert.Equal(t, []*Row{c.(*Row), a.(*Row)}, root.Rows())
	assert.False(t, b.(*Row).Attached())
	b.Remove()

	root.Clear()
	assert.Empty(t, root.Rows())
	assert.False(t, a.(*Row).Attached())
}

func TestContainer_ReorderManyRows(t *testing.T) {
	const n = 5000
	root := New()
	rows := make([]ports.Row, n)
	for i := range rows {
		rows[i] = root.CreateRow()
	}

	// reversed, with every listed row repeated and the first row left out
	var order []ports.Row
	for i := n - 1; i > 0; i-- {
		order = append(order, rows[i], rows[i])
	}
	root.Reorder(order)

	got := root.Rows()
	require.Len(t, got, n)
	for i := 0; i < n-1; i++ {
		require.Same(t, rows[n-1-i].(*Row), got[i])
	}
	assert.Same(t, rows[0].(*Row), got[n-1], "unlisted rows keep their place at the end")
}

func TestExpanded(t *testing.T) {
	refs := map[string][]string{
		"A": {"B", "C"},
		"B": {"C"},
		"C": {"D", "P"},
	}
	var notes []domain.NoteRef
	for _, id := range []string{"A", "B", "C", "D"} {
		notes = append(notes, domain.NoteRef{ID: id, Exists: true})
	}
	g := domain.NewGraphCache()
	g.Build(notes, func(id string) []string { return refs[id] }, true)

	tests := []struct {
		name   string
		depth  int
		active string
		want   []string
	}{
		{name: "top level only", depth: 1, want: []string{"C", "A", "B"}},
		{name: "two levels", depth: 2, want: []string{"C", "A", "B", "D", "P", "A", "C", "B", "B", "C", "A"}},
		{name: "active marked", depth: 1, active: "B", want: []string{"C", "A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := Expanded(g, 2, tt.depth, tt.active)
			lines := root.Visible()
			assert.Equal(t, tt.want, texts(lines))
			if tt.active != "" {
				assert.True(t, lines[2].Row.Flag(ports.FlagActive))
			}
		})
	}
}

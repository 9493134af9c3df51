package mcp

import (
	"context"
	"io/fs"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treenotes/internal/adapters/outline"
	"treenotes/internal/application"
	"treenotes/internal/domain"
)

type memoryStore struct {
	refs   map[string][]string
	exists map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		refs: map[string][]string{
			"A": {"B", "C"},
			"B": {"C"},
			"C": {"D", "P"},
		},
		exists: map[string]bool{"A": true, "B": true, "C": true, "D": true},
	}
}

func (s *memoryStore) Snapshot(ctx context.Context) ([]domain.NoteRef, error) {
	var notes []domain.NoteRef
	for _, id := range []string{"A", "B", "C", "D", "E", "P"} {
		if s.exists[id] {
			notes = append(notes, domain.NoteRef{ID: id, Path: id + ".md", Exists: true})
		}
	}
	return notes, nil
}

func (s *memoryStore) References(ctx context.Context, id string) ([]string, error) {
	if !s.exists[id] {
		return nil, fs.ErrNotExist
	}
	return s.refs[id], nil
}

func (s *memoryStore) CreateNote(ctx context.Context, id string) (string, error) {
	if s.exists[id] {
		return "", fs.ErrExist
	}
	s.exists[id] = true
	return "/vault/" + id + ".md", nil
}

func (s *memoryStore) NotePath(id string) (string, bool) {
	return "/vault/" + id + ".md", s.exists[id]
}

func newTestVault(store *memoryStore) *Vault {
	coord := application.NewCoordinator(store, application.DefaultSettings(), nil)
	return NewVault(coord, store, 2)
}

func call(t *testing.T, h server.ToolHandlerFunc, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestTopNotes(t *testing.T) {
	vault := newTestVault(newMemoryStore())
	h := topNotesHandler(vault)

	tests := []struct {
		name    string
		args    map[string]any
		want    string
		wantErr bool
	}{
		{name: "configured cutoff", args: nil, want: "C (4)\nA (2)\nB (2)\n"},
		{name: "lower cutoff", args: map[string]any{"cutoff": float64(1), "limit": float64(4)}, want: "C (4)\nA (2)\nB (2)\nD (1)\n"},
		{name: "nothing qualifies", args: map[string]any{"cutoff": float64(9)}, want: "No results."},
		{name: "negative cutoff", args: map[string]any{"cutoff": float64(-1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, h, tt.args)
			assert.Equal(t, tt.wantErr, res.IsError)
			if !tt.wantErr {
				assert.Equal(t, tt.want, text(t, res))
			}
		})
	}
}

func TestTopNotes_JSON(t *testing.T) {
	vault := newTestVault(newMemoryStore())
	res := call(t, topNotesHandler(vault), map[string]any{"json": true})

	var notes []application.NoteSummary
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &notes))
	require.Len(t, notes, 3)
	assert.Equal(t, application.NoteSummary{ID: "C", Count: 4, Exists: true}, notes[0])
}

func TestNeighbors(t *testing.T) {
	vault := newTestVault(newMemoryStore())
	h := neighborsHandler(vault)

	res := call(t, h, map[string]any{"id": "C"})
	require.False(t, res.IsError)
	assert.Equal(t, "C (4)\n  A (2)\n  B (2)\n  D (1)\n  P (1) [potential]\nlinks to: D, P\n", text(t, res))

	res = call(t, h, map[string]any{"id": "Missing"})
	assert.True(t, res.IsError)

	res = call(t, h, map[string]any{})
	assert.True(t, res.IsError)
}

func TestTree(t *testing.T) {
	vault := newTestVault(newMemoryStore())
	h := treeHandler(vault)

	res := call(t, h, nil)
	require.False(t, res.IsError)
	want := "▾ C (4)\n" +
		"  ▸ A (2)\n" +
		"  ▸ B (2)\n" +
		"  • D (1)\n" +
		"  • P (1) [potential]\n" +
		"▾ A (2)\n" +
		"  ▸ C (4)\n" +
		"  ▸ B (2)\n" +
		"▾ B (2)\n" +
		"  ▸ C (4)\n" +
		"  ▸ A (2)\n"
	assert.Equal(t, want, text(t, res))

	res = call(t, h, map[string]any{"depth": float64(1)})
	assert.Equal(t, "▸ C (4)\n▸ A (2)\n▸ B (2)\n", text(t, res))

	res = call(t, h, map[string]any{"depth": float64(1), "json": true})
	var nodes []outline.Node
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &nodes))
	require.Len(t, nodes, 3)
	assert.Equal(t, "C", nodes[0].Name)
	assert.Empty(t, nodes[0].Children)

	res = call(t, h, map[string]any{"cutoff": float64(10)})
	assert.Equal(t, "No notes.", text(t, res))

	for _, depth := range []float64{0, maxTreeDepth + 1} {
		res = call(t, h, map[string]any{"depth": depth})
		assert.True(t, res.IsError)
	}
}

func TestFindNotes(t *testing.T) {
	vault := newTestVault(newMemoryStore())
	h := findHandler(vault)

	assert.Equal(t, "P (1) [potential]\n", text(t, call(t, h, map[string]any{"query": "p"})))
	assert.Equal(t, "No results found.", text(t, call(t, h, map[string]any{"query": "zz"})))
	assert.True(t, call(t, h, map[string]any{"query": " "}).IsError)
}

func TestRefresh(t *testing.T) {
	store := newMemoryStore()
	vault := newTestVault(store)

	assert.Equal(t, "C (4)\nA (2)\nB (2)\n", text(t, call(t, topNotesHandler(vault), nil)))

	store.exists["E"] = true
	store.refs["E"] = []string{"A", "D"}
	res := call(t, refreshHandler(vault), nil)
	assert.Equal(t, "Loaded 6 notes", text(t, res))

	assert.Equal(t, "C (4)\nA (3)\nB (2)\nD (2)\nE (2)\n", text(t, call(t, topNotesHandler(vault), nil)))
}

func TestCreateNote(t *testing.T) {
	store := newMemoryStore()
	vault := newTestVault(store)
	h := createHandler(vault)

	res := call(t, h, map[string]any{"id": "P"})
	require.False(t, res.IsError, text(t, res))
	assert.Equal(t, "Created note: P at /vault/P.md", text(t, res))

	// the graph saw the new file
	res = call(t, neighborsHandler(vault), map[string]any{"id": "C"})
	assert.Contains(t, text(t, res), "  P (1)\n")
	assert.NotContains(t, text(t, res), "[potential]")

	assert.True(t, call(t, h, map[string]any{"id": "A"}).IsError)
	assert.True(t, call(t, h, map[string]any{"id": "a/b"}).IsError)
}

func TestRegisterTools(t *testing.T) {
	s := server.NewMCPServer("treenotes-test", "0.0.0", server.WithToolCapabilities(true))
	vault := newTestVault(newMemoryStore())

	assert.NotPanics(t, func() {
		RegisterReadTools(s, vault)
		RegisterWriteTools(s, vault)
	})
}

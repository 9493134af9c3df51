package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treenotes/internal/adapters/sqlite"
	"treenotes/internal/config"
	"treenotes/internal/domain"
)

func loadConfig(t *testing.T, vault string, extra string) *config.Config {
	t.Helper()
	for _, key := range []string{"VAULT", "ROOT_SCOPE", "TOP_LEVEL_CUTOFF", "INCLUDE_POTENTIAL_NOTES", "SORT_ORDER", "OPENER", "USE_INDEX", "LOG_LEVEL", "LOG_FILE"} {
		t.Setenv(config.EnvPrefix+"_"+key, "")
		os.Unsetenv(config.EnvPrefix + "_" + key)
	}
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	file := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf("vault: %s\nsort_order: name-asc\n%s", vault, extra)
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))

	cfg, err := config.Load(file)
	require.NoError(t, err)
	return cfg
}

func writeVault(t *testing.T) string {
	t.Helper()
	vault := t.TempDir()
	files := map[string]string{
		"A.md":        "[[B]] [[C]]",
		"sub/B.md":    "[[C]]",
		"C.md":        "[[Ghost]]",
		".trash/X.md": "[[A]]",
	}
	for rel, content := range files {
		p := filepath.Join(vault, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return vault
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name      string
		extra     string
		wantIndex bool
	}{
		{name: "files", extra: ""},
		{name: "index", extra: "use_index: true\n", wantIndex: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vault := writeVault(t)
			s, err := Open(loadConfig(t, vault, tt.extra), nil)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })

			if tt.wantIndex {
				require.NotNil(t, s.Index)
				assert.IsType(t, &sqlite.Store{}, s.Store)
			} else {
				assert.Nil(t, s.Index)
				assert.Same(t, s.Repo, s.Store)
			}

			require.NoError(t, s.Coord.Refresh(context.Background()))
			g := s.Coord.Graph()
			assert.Equal(t, domain.SortNameAsc, g.SortOrder())
			assert.Equal(t, 4, g.Len())

			ghost, ok := g.Get("Ghost")
			require.True(t, ok)
			assert.False(t, ghost.ExistsOnDisk)

			p, ok := s.Store.NotePath("B")
			require.True(t, ok)
			assert.Equal(t, filepath.Join(vault, "sub", "B.md"), p)
		})
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := loadConfig(t, t.TempDir(), "opener: vim\n")
	_, err := Open(cfg, nil)
	assert.ErrorContains(t, err, "opener")
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

func TestClose_Order(t *testing.T) {
	s, err := Open(loadConfig(t, t.TempDir(), ""), nil)
	require.NoError(t, err)

	var order []int
	s.OnClose(closeFunc(func() error { order = append(order, 1); return nil }))
	s.OnClose(closeFunc(func() error { order = append(order, 2); return fmt.Errorf("boom") }))

	assert.ErrorContains(t, s.Close(), "boom")
	assert.Equal(t, []int{2, 1}, order)
	assert.NoError(t, s.Close())
}

package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treenotes/internal/application"
	"treenotes/internal/config"
)

func setupVault(t *testing.T) (vault, cfgFile string) {
	t.Helper()
	for _, key := range []string{"VAULT", "ROOT_SCOPE", "TOP_LEVEL_CUTOFF", "INCLUDE_POTENTIAL_NOTES", "SORT_ORDER", "OPENER", "USE_INDEX", "LOG_LEVEL", "LOG_FILE"} {
		t.Setenv(config.EnvPrefix+"_"+key, "")
		os.Unsetenv(config.EnvPrefix + "_" + key)
	}
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	vault = t.TempDir()
	files := map[string]string{
		"A.md": "[[B]] and [[C]]",
		"B.md": "[[C]]",
		"C.md": "[[D]] [[P]]",
		"D.md": "",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(vault, name), []byte(content), 0644))
	}

	cfgFile = filepath.Join(t.TempDir(), "config.yaml")
	cfg := fmt.Sprintf("vault: %s\ntop_level_cutoff: 2\nuse_index: true\n", vault)
	require.NoError(t, os.WriteFile(cfgFile, []byte(cfg), 0644))
	return vault, cfgFile
}

// execute runs one command line with flag variables reset
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	treeDepth, treeCutoff, treeJSON = 1, 0, false
	topCutoff, topLimit, topJSON = 0, 0, false
	neighborsJSON, findLimit, indexFull = false, 20, false
	vaultPath, logLevel = "", ""
	treeCmd.Flags().Lookup("cutoff").Changed = false
	topCmd.Flags().Lookup("cutoff").Changed = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if sess != nil {
		sess.Close()
		sess = nil
	}
	return out.String(), err
}

func TestTreeCommand(t *testing.T) {
	_, cfg := setupVault(t)

	out, err := execute(t, "tree", "-c", cfg)
	require.NoError(t, err)
	assert.Equal(t, "▸ C (4)\n▸ A (2)\n▸ B (2)\n", out)

	out, err = execute(t, "tree", "-c", cfg, "--depth", "2", "--cutoff", "3")
	require.NoError(t, err)
	assert.Equal(t, "▾ C (4)\n  ▸ A (2)\n  ▸ B (2)\n  • D (1)\n  • P (1) [potential]\n", out)

	_, err = execute(t, "tree", "-c", cfg, "--depth", "0")
	assert.Error(t, err)
}

func TestTopCommand(t *testing.T) {
	_, cfg := setupVault(t)

	out, err := execute(t, "top", "-c", cfg, "--json", "--limit", "2")
	require.NoError(t, err)

	var notes []application.NoteSummary
	require.NoError(t, json.Unmarshal([]byte(out), &notes))
	assert.Equal(t, []application.NoteSummary{
		{ID: "C", Count: 4, Exists: true},
		{ID: "A", Count: 2, Exists: true},
	}, notes)
}

func TestNeighborsAndFind(t *testing.T) {
	_, cfg := setupVault(t)

	out, err := execute(t, "neighbors", "-c", cfg, "D")
	require.NoError(t, err)
	assert.Equal(t, "D (1)\n  C (4)\n", out)

	_, err = execute(t, "neighbors", "-c", cfg, "Nowhere")
	assert.Error(t, err)

	out, err = execute(t, "find", "-c", cfg, "p")
	require.NoError(t, err)
	assert.Equal(t, "P (1) [potential]\n", out)
}

func TestCreateAndIndex(t *testing.T) {
	vault, cfg := setupVault(t)

	out, err := execute(t, "create", "-c", cfg, "P")
	require.NoError(t, err)
	assert.Contains(t, out, "Created note: P")
	assert.FileExists(t, filepath.Join(vault, "P.md"))

	_, err = execute(t, "create", "-c", cfg, "P")
	assert.Error(t, err)

	out, err = execute(t, "index", "sync", "-c", cfg, "--full")
	require.NoError(t, err)
	assert.Contains(t, out, "Scanned 5 files")

	out, err = execute(t, "neighbors", "-c", cfg, "P")
	require.NoError(t, err)
	assert.Equal(t, "P (1)\n  C (4)\n", out)
}

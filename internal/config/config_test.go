package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treenotes/internal/domain"
)

// isolate points the config lookup at an empty directory and clears the
// variables a developer machine might set
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{"VAULT", "ROOT_SCOPE", "TOP_LEVEL_CUTOFF", "INCLUDE_POTENTIAL_NOTES", "SORT_ORDER", "OPENER", "USE_INDEX", "LOG_LEVEL", "LOG_FILE"} {
		t.Setenv(EnvPrefix+"_"+key, "")
		os.Unsetenv(EnvPrefix + "_" + key)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultVaultPath, cfg.Vault)
	assert.Equal(t, ".", cfg.RootScope)
	assert.Equal(t, 4, cfg.TopLevelCutoff)
	assert.True(t, cfg.IncludePotentialNotes)
	assert.Equal(t, domain.DefaultSortOrder, cfg.Order())
	assert.Equal(t, "editor", cfg.Opener)
	assert.False(t, cfg.UseIndex)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "treenotes"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "treenotes", "config.yaml"), []byte(`
vault: /srv/vault
root_scope: notes
top_level_cutoff: 2
include_potential_notes: false
sort_order: ALPH_ASC
`), 0644))
	t.Setenv("TREENOTES_TOP_LEVEL_CUTOFF", "7")
	t.Setenv("TREENOTES_OPENER", "obsidian")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/vault", cfg.Vault)
	assert.Equal(t, "notes", cfg.RootScope)
	assert.Equal(t, 7, cfg.TopLevelCutoff, "environment overrides the file")
	assert.False(t, cfg.IncludePotentialNotes)
	assert.Equal(t, domain.SortNameAsc, cfg.Order())
	assert.Equal(t, "obsidian", cfg.Opener)
	assert.Equal(t, filepath.Join(dir, "treenotes", "config.yaml"), cfg.File())
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Vault: "/v", TopLevelCutoff: 4, SortOrder: "count-desc", Opener: "editor", LogLevel: "info"}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "cutoff zero", mutate: func(c *Config) { c.TopLevelCutoff = 0 }},
		{name: "negative cutoff", mutate: func(c *Config) { c.TopLevelCutoff = -1 }, wantErr: true},
		{name: "empty vault", mutate: func(c *Config) { c.Vault = " " }, wantErr: true},
		{name: "bad sort order", mutate: func(c *Config) { c.SortOrder = "random" }, wantErr: true},
		{name: "bad opener", mutate: func(c *Config) { c.Opener = "emacs" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "empty log level", mutate: func(c *Config) { c.LogLevel = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveSortOrder(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.SaveSortOrder(domain.SortNameDesc))

	want := filepath.Join(dir, "treenotes", "config.yaml")
	assert.Equal(t, want, cfg.File())
	assert.FileExists(t, want)

	reloaded, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, domain.SortNameDesc, reloaded.Order())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "notes"), ExpandHome("~/notes"))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, "/abs", ExpandHome("/abs"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
}

func TestVaultPath_Absolute(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := &Config{Vault: "notes"}
	assert.Equal(t, filepath.Join(dir, "notes"), cfg.VaultPath())

	cfg.Vault = "/abs/notes"
	assert.Equal(t, "/abs/notes", cfg.VaultPath())
}

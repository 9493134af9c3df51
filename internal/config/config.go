package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"treenotes/internal/domain"
)

const (
	DefaultVaultPath = "~/Documents/notes"
	DefaultCutoff    = 4
	EnvPrefix        = "TREENOTES"
)

// Config holds the user settings. Values come from defaults, then
// $XDG_CONFIG_HOME/treenotes/config.yaml, then TREENOTES_* variables.
type Config struct {
	Vault                 string `mapstructure:"vault"`
	RootScope             string `mapstructure:"root_scope"`
	TopLevelCutoff        int    `mapstructure:"top_level_cutoff"`
	IncludePotentialNotes bool   `mapstructure:"include_potential_notes"`
	SortOrder             string `mapstructure:"sort_order"`
	Opener                string `mapstructure:"opener"`
	UseIndex              bool   `mapstructure:"use_index"`
	LogLevel              string `mapstructure:"log_level"`
	LogFile               string `mapstructure:"log_file"`

	v    *viper.Viper
	file string
}

// Dir returns the directory holding config.yaml
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "treenotes")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "treenotes")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("vault", DefaultVaultPath)
	v.SetDefault("root_scope", ".")
	v.SetDefault("top_level_cutoff", DefaultCutoff)
	v.SetDefault("include_potential_notes", true)
	v.SetDefault("sort_order", string(domain.DefaultSortOrder))
	v.SetDefault("opener", "editor")
	v.SetDefault("use_index", false)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_file", "")
}

// Load reads the configuration. An empty file means the default location,
// which may be missing; an explicit file must exist.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{v: v, file: v.ConfigFileUsed()}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the application cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Vault) == "" {
		return errors.New("vault must be set")
	}
	if c.TopLevelCutoff < 0 {
		return fmt.Errorf("top_level_cutoff must be >= 0, got %d", c.TopLevelCutoff)
	}
	if _, err := domain.ParseSortOrder(c.SortOrder); err != nil {
		return fmt.Errorf("sort_order: %w", err)
	}
	switch c.Opener {
	case "editor", "obsidian":
	default:
		return fmt.Errorf("opener must be editor or obsidian, got %q", c.Opener)
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	return nil
}

// VaultPath returns the absolute vault directory with ~ expanded
func (c *Config) VaultPath() string {
	p := ExpandHome(c.Vault)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Order returns the configured sort order, falling back to the default
func (c *Config) Order() domain.SortOrder {
	order, err := domain.ParseSortOrder(c.SortOrder)
	if err != nil {
		return domain.DefaultSortOrder
	}
	return order
}

// File returns the config file that was read, or where Save writes
func (c *Config) File() string {
	if c.file != "" {
		return c.file
	}
	return filepath.Join(Dir(), "config.yaml")
}

// SaveSortOrder persists the sort order chosen in the TUI
func (c *Config) SaveSortOrder(order domain.SortOrder) error {
	c.SortOrder = string(order)
	c.v.Set("sort_order", string(order))
	return c.Save()
}

// Save writes the current settings to the config file
func (c *Config) Save() error {
	path := c.File()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := c.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	c.file = path
	return nil
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[1:])
	}
	return p
}

package launch

import (
	"fmt"

	"treenotes/internal/ports"
)

// Launcher names accepted by New
const (
	NameEditor   = "editor"
	NameObsidian = "obsidian"
)

// Ensure both launchers implement NoteLauncher
var (
	_ ports.NoteLauncher = (*Editor)(nil)
	_ ports.NoteLauncher = (*Obsidian)(nil)
)

// New returns the launcher configured by name; empty means editor
func New(name, vaultPath string) (ports.NoteLauncher, error) {
	switch name {
	case "", NameEditor:
		return NewEditor(), nil
	case NameObsidian:
		return NewObsidian(vaultPath), nil
	default:
		return nil, fmt.Errorf("unknown opener %q: want %s or %s", name, NameEditor, NameObsidian)
	}
}

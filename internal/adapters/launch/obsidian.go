package launch

import (
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Obsidian opens notes in the Obsidian app through the obsidian:// URI
// scheme
type Obsidian struct {
	vaultPath string
	vaultName string
	goos      string
}

// NewObsidian creates a new Obsidian launcher for the given vault path
func NewObsidian(vaultPath string) *Obsidian {
	return &Obsidian{
		vaultPath: vaultPath,
		vaultName: filepath.Base(vaultPath),
		goos:      runtime.GOOS,
	}
}

// Open hands the note to Obsidian
func (o *Obsidian) Open(filePath string) error {
	cmd, err := o.Command(filePath)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Command returns the platform command that opens the note's URI
func (o *Obsidian) Command(filePath string) (*exec.Cmd, error) {
	uri, err := o.BuildURI(filePath)
	if err != nil {
		return nil, err
	}

	switch o.goos {
	case "darwin":
		return exec.Command("open", uri), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", uri), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", uri), nil
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", o.goos)
	}
}

// Foreground is false, Obsidian runs next to the terminal
func (o *Obsidian) Foreground() bool {
	return false
}

// BuildURI constructs the obsidian:// URI for a given file path
func (o *Obsidian) BuildURI(filePath string) (string, error) {
	relPath, err := filepath.Rel(o.vaultPath, filePath)
	if err != nil {
		return "", fmt.Errorf("failed to get relative path: %w", err)
	}

	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file is outside the vault: %s", filePath)
	}

	// Obsidian expects forward slashes in paths
	relPath = filepath.ToSlash(relPath)

	uri := fmt.Sprintf("obsidian://open?vault=%s&file=%s",
		url.PathEscape(o.vaultName),
		url.PathEscape(relPath),
	)

	return uri, nil
}

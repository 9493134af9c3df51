package launch

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Editor opens notes in the user's terminal editor
type Editor struct {
	lookPath func(string) (string, error)
	getenv   func(string) string
}

// NewEditor creates a new editor launcher
func NewEditor() *Editor {
	return &Editor{lookPath: exec.LookPath, getenv: os.Getenv}
}

// Open opens a file in the user's preferred editor
func (e *Editor) Open(path string) error {
	cmd, err := e.Command(path)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Command returns an exec.Cmd for opening a file in the editor
func (e *Editor) Command(path string) (*exec.Cmd, error) {
	editor := e.findEditor()
	if len(editor) == 0 {
		return nil, fmt.Errorf("no editor found: set $EDITOR environment variable")
	}

	cmd := exec.Command(editor[0], append(editor[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

// Foreground is true, the editor runs in the terminal
func (e *Editor) Foreground() bool {
	return true
}

// findEditor returns the editor command line, e.g. ["code", "--wait"]
func (e *Editor) findEditor() []string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if fields := strings.Fields(e.getenv(env)); len(fields) > 0 {
			return fields
		}
	}

	// Try common editors
	for _, editor := range []string{"nvim", "vim", "vi", "nano", "code"} {
		if path, err := e.lookPath(editor); err == nil {
			return []string{path}
		}
	}

	return nil
}

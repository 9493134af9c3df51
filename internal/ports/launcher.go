package ports

import "os/exec"

// NoteLauncher opens a note file in an external program
type NoteLauncher interface {
	// Open starts the program and waits for it to exit
	Open(path string) error

	// Command returns an exec.Cmd for opening a file.
	// This is useful for integrating with bubbletea's ExecProcess
	Command(path string) (*exec.Cmd, error)

	// Foreground reports whether the program takes over the terminal
	Foreground() bool
}

package domain

import (
	"path"
	"strings"
)

// NoteRef is one entry of a bulk note snapshot
type NoteRef struct {
	ID     string // Canonical note name (basename without .md)
	Path   string // Relative path from vault root, slash separated
	Exists bool
}

// Resolver returns the ids referenced by a note. The result may contain
// duplicates, self references and ids with no note behind them.
type Resolver func(id string) []string

// NoteID derives the canonical note id from a vault-relative path or a
// link target: "folder/My Note.md" -> "My Note"
func NoteID(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	name := path.Base(p)
	if name == "." || name == "/" {
		return ""
	}
	if strings.HasSuffix(strings.ToLower(name), ".md") {
		name = name[:len(name)-3]
	}
	return strings.TrimSpace(name)
}

// InScope reports whether a vault-relative path lives below rootScope.
// An empty scope or "." covers the whole vault.
func InScope(relPath, rootScope string) bool {
	scope := strings.Trim(path.Clean(strings.ReplaceAll(rootScope, "\\", "/")), "/")
	if scope == "" || scope == "." {
		return true
	}
	relPath = strings.TrimPrefix(path.Clean(strings.ReplaceAll(relPath, "\\", "/")), "/")
	return relPath == scope || strings.HasPrefix(relPath, scope+"/")
}

// PreferPath reports whether candidate should replace current as the file
// behind an id: the shallower path wins, then the smaller one
func PreferPath(candidate, current string) bool {
	if a, b := strings.Count(candidate, "/"), strings.Count(current, "/"); a != b {
		return a < b
	}
	return candidate < current
}

package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"treenotes/internal/adapters/markdown"
	"treenotes/internal/domain"
	"treenotes/internal/ports"
)

// Repository implements ports.NoteStore on a vault directory. Notes are the
// .md files below the root scope; hidden directories are skipped.
type Repository struct {
	vaultPath string
	rootScope string // slash separated, relative to the vault, "" for all
	now       func() time.Time

	mu    sync.RWMutex
	paths map[string]string // id -> relative path
}

// Ensure Repository implements NoteStore
var _ ports.NoteStore = (*Repository)(nil)

// NewRepository creates a new filesystem repository
func NewRepository(vaultPath, rootScope string) *Repository {
	// Expand ~ to home directory
	if strings.HasPrefix(vaultPath, "~") {
		home, _ := os.UserHomeDir()
		vaultPath = filepath.Join(home, vaultPath[1:])
	}
	// watcher events carry absolute paths
	if abs, err := filepath.Abs(vaultPath); err == nil {
		vaultPath = abs
	}

	scope := strings.Trim(path.Clean(filepath.ToSlash(rootScope)), "/")
	if scope == "." {
		scope = ""
	}

	return &Repository{
		vaultPath: vaultPath,
		rootScope: scope,
		now:       time.Now,
		paths:     make(map[string]string),
	}
}

// VaultPath returns the absolute vault directory
func (r *Repository) VaultPath() string {
	return r.vaultPath
}

// RootDir returns the directory notes are read from and created in
func (r *Repository) RootDir() string {
	return filepath.Join(r.vaultPath, filepath.FromSlash(r.rootScope))
}

// Snapshot walks the root scope and lists every note. When two files share
// a basename the one with the shortest path wins, like Obsidian's link
// resolution.
func (r *Repository) Snapshot(ctx context.Context) ([]domain.NoteRef, error) {
	var notes []domain.NoteRef
	paths := make(map[string]string)

	err := filepath.WalkDir(r.RootDir(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != r.RootDir() && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, ok := r.relPath(p)
		if !ok {
			return nil
		}
		id := domain.NoteID(rel)
		if prev, dup := paths[id]; dup && !domain.PreferPath(rel, prev) {
			return nil
		}
		paths[id] = rel
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan vault: %w", err)
	}

	for id, rel := range paths {
		notes = append(notes, domain.NoteRef{ID: id, Path: rel, Exists: true})
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].Path < notes[j].Path
	})

	r.mu.Lock()
	r.paths = paths
	r.mu.Unlock()

	return notes, nil
}

// References reads a note and returns the ids it links to
func (r *Repository) References(ctx context.Context, id string) ([]string, error) {
	p, ok := r.NotePath(id)
	if !ok {
		return nil, fmt.Errorf("note %s: %w", id, fs.ErrNotExist)
	}
	content, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read note %s: %w", id, err)
	}
	return markdown.ParseReferences(string(content)), nil
}

// CreateNote writes a new note at the top of the root scope. An existing
// file is never overwritten.
func (r *Repository) CreateNote(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.RootDir(), 0755); err != nil {
		return "", fmt.Errorf("failed to create note directory: %w", err)
	}

	abs := filepath.Join(r.RootDir(), id+".md")
	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create note: %w", err)
	}
	if _, err := f.WriteString(markdown.NoteTemplate(id, r.now())); err != nil {
		f.Close()
		os.Remove(abs)
		return "", fmt.Errorf("failed to write note: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write note: %w", err)
	}

	r.Track(abs)
	return abs, nil
}

// NotePath returns the absolute path of a known note
func (r *Repository) NotePath(id string) (string, bool) {
	r.mu.RLock()
	rel, ok := r.paths[id]
	r.mu.RUnlock()
	if ok {
		return filepath.Join(r.vaultPath, filepath.FromSlash(rel)), true
	}

	// not scanned yet, try the default location
	abs := filepath.Join(r.RootDir(), id+".md")
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return abs, true
	}
	return "", false
}

// IDForPath maps an absolute file path to a note id when the file is a
// note inside the root scope
func (r *Repository) IDForPath(p string) (string, bool) {
	rel, ok := r.relPath(p)
	if !ok {
		return "", false
	}
	return domain.NoteID(rel), true
}

// Track records a note file that appeared after the last snapshot
func (r *Repository) Track(p string) (string, bool) {
	rel, ok := r.relPath(p)
	if !ok {
		return "", false
	}
	id := domain.NoteID(rel)

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, dup := r.paths[id]; !dup || domain.PreferPath(rel, prev) {
		r.paths[id] = rel
	}
	return id, true
}

// Forget drops a deleted note file. still reports whether another file
// keeps the id alive.
func (r *Repository) Forget(p string) (id string, still bool) {
	rel, ok := r.relPath(p)
	if !ok {
		return "", false
	}
	id = domain.NoteID(rel)

	r.mu.Lock()
	if r.paths[id] == rel {
		delete(r.paths, id)
	}
	r.mu.Unlock()

	if _, err := r.findByID(id); err == nil {
		return id, true
	}
	return id, false
}

// findByID rescans the root scope for another file with the id
func (r *Repository) findByID(id string) (string, error) {
	var found string
	err := filepath.WalkDir(r.RootDir(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != r.RootDir() && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, ok := r.relPath(p)
		if !ok || domain.NoteID(rel) != id {
			return nil
		}
		if found == "" || domain.PreferPath(rel, found) {
			found = rel
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fs.ErrNotExist
	}

	r.mu.Lock()
	r.paths[id] = found
	r.mu.Unlock()
	return found, nil
}

// relPath returns the slash separated vault-relative path of a note file
// inside the root scope
func (r *Repository) relPath(p string) (string, bool) {
	if !strings.EqualFold(filepath.Ext(p), ".md") {
		return "", false
	}
	rel, err := filepath.Rel(r.vaultPath, p)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return "", false
		}
	}
	if !domain.InScope(rel, r.rootScope) {
		return "", false
	}
	return rel, true
}

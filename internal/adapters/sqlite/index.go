package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"treenotes/internal/domain"
	"treenotes/internal/logging"
	"treenotes/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "2"

// Index implements ports.LinkIndex using SQLite
type Index struct {
	db        *sql.DB
	vaultPath string
	rootScope string
	dbPath    string
	log       *logrus.Entry
}

// Ensure Index implements LinkIndex
var _ ports.LinkIndex = (*Index)(nil)

// NewIndex creates a new SQLite index over the notes below rootScope
func NewIndex(rootScope string, log *logrus.Entry) *Index {
	if log == nil {
		log = logging.Component(nil, "index")
	}
	scope := strings.Trim(path.Clean(filepath.ToSlash(rootScope)), "/")
	if scope == "." {
		scope = ""
	}
	return &Index{rootScope: scope, log: log}
}

// Open initializes the index for the given vault path
func (idx *Index) Open(vaultPath string) error {
	// Expand ~ in path
	if len(vaultPath) > 0 && vaultPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		vaultPath = filepath.Join(home, vaultPath[1:])
	}
	abs, err := filepath.Abs(vaultPath)
	if err != nil {
		return fmt.Errorf("failed to resolve vault path: %w", err)
	}
	vaultPath = abs

	idx.vaultPath = vaultPath
	idx.dbPath = databasePath(vaultPath)

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(idx.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", idx.dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	idx.db = db

	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS notes (
			path TEXT PRIMARY KEY,
			id TEXT NOT NULL,
			mtime INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS links (
			source_path TEXT NOT NULL,
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_notes_id ON notes(id);
		CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_id);
		CREATE INDEX IF NOT EXISTS idx_links_source ON links(source_path);
		CREATE INDEX IF NOT EXISTS idx_links_source_id ON links(source_id);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	return nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// DatabasePath returns the location of the database file
func (idx *Index) DatabasePath() string {
	return idx.dbPath
}

// NeedsFullRebuild returns true if the index was written by another schema
// version, for another vault or for another root scope
func (idx *Index) NeedsFullRebuild() bool {
	return idx.meta("schema_version") != schemaVersion ||
		idx.meta("vault_path_hash") != hashVaultPath(idx.vaultPath) ||
		idx.meta("root_scope") != idx.rootScope
}

// databasePath returns the path for the SQLite database
func databasePath(vaultPath string) string {
	// XDG data directory
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}

	// Hash vault path for unique DB name
	hash := hashVaultPath(vaultPath)

	return filepath.Join(dataHome, "treenotes", hash+".db")
}

// hashVaultPath returns a short hash of the vault path
func hashVaultPath(vaultPath string) string {
	h := sha256.Sum256([]byte(vaultPath))
	return hex.EncodeToString(h[:8]) // First 8 bytes = 16 hex chars
}

func (idx *Index) meta(key string) string {
	var value string
	if err := idx.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value); err != nil {
		return ""
	}
	return value
}

// updateMeta records what the index was built for
func (idx *Index) updateMeta(syncedAt int64) error {
	entries := [][2]string{
		{"schema_version", schemaVersion},
		{"vault_path_hash", hashVaultPath(idx.vaultPath)},
		{"root_scope", idx.rootScope},
		{"last_sync_time", fmt.Sprint(syncedAt)},
	}
	for _, e := range entries {
		if _, err := idx.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, e[0], e[1]); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot brings the index up to date and lists every indexed note. A
// duplicated id resolves to its shallowest file.
func (idx *Index) Snapshot(ctx context.Context) ([]domain.NoteRef, error) {
	if idx.NeedsFullRebuild() {
		if _, err := idx.SyncFull(ctx); err != nil {
			return nil, err
		}
	} else if _, err := idx.SyncIncremental(ctx); err != nil {
		return nil, err
	}

	rows, err := idx.db.QueryContext(ctx, `SELECT id, path FROM notes ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.NoteRef
	seen := make(map[string]int)
	for rows.Next() {
		var n domain.NoteRef
		if err := rows.Scan(&n.ID, &n.Path); err != nil {
			return nil, err
		}
		n.Exists = true
		if i, dup := seen[n.ID]; dup {
			if domain.PreferPath(n.Path, notes[i].Path) {
				notes[i] = n
			}
			continue
		}
		seen[n.ID] = len(notes)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// References returns the targets recorded for a note, re-parsing the file
// first when it changed on disk since it was indexed
func (idx *Index) References(ctx context.Context, id string) ([]string, error) {
	note, err := idx.GetNote(id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		// created after the last sync
		if _, err := idx.SyncIncremental(ctx); err != nil {
			return nil, err
		}
		if note, err = idx.GetNote(id); err != nil {
			return nil, err
		}
	}
	if note == nil {
		return nil, fmt.Errorf("note %s: %w", id, os.ErrNotExist)
	}

	info, err := os.Stat(filepath.Join(idx.vaultPath, filepath.FromSlash(note.Path)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("note %s: %w", id, err)
	}
	if err == nil && info.ModTime().UnixNano() != note.Mtime {
		if err := idx.reindexFile(ctx, note.Path, info.ModTime().UnixNano()); err != nil {
			return nil, err
		}
	}

	rows, err := idx.db.QueryContext(ctx, `
		SELECT target_id FROM links WHERE source_path = ? ORDER BY rowid
	`, note.Path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, err
		}
		refs = append(refs, target)
	}
	return refs, rows.Err()
}

// GetNote retrieves the file behind a note id, nil when not indexed
func (idx *Index) GetNote(id string) (*domain.IndexedNote, error) {
	var note domain.IndexedNote

	err := idx.db.QueryRow(`
		SELECT path, id, mtime FROM notes WHERE id = ?
		ORDER BY length(path) - length(replace(path, '/', '')), path
		LIMIT 1
	`, id).Scan(&note.Path, &note.ID, &note.Mtime)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &note, nil
}

// FindLinksTo returns all links pointing to a note id
func (idx *Index) FindLinksTo(targetID string) ([]domain.Link, error) {
	return idx.queryLinks(`
		SELECT source_path, source_id, target_id
		FROM links WHERE target_id = ? ORDER BY source_path, rowid
	`, targetID)
}

// FindLinksFrom returns all links written in files named sourceID
func (idx *Index) FindLinksFrom(sourceID string) ([]domain.Link, error) {
	return idx.queryLinks(`
		SELECT source_path, source_id, target_id
		FROM links WHERE source_id = ? ORDER BY source_path, rowid
	`, sourceID)
}

func (idx *Index) queryLinks(query string, arg string) ([]domain.Link, error) {
	rows, err := idx.db.Query(query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		var l domain.Link
		if err := rows.Scan(&l.SourcePath, &l.SourceID, &l.TargetID); err != nil {
			return nil, err
		}
		links = append(links, l)
	}

	return links, rows.Err()
}

// BeginTx starts a new transaction
func (idx *Index) BeginTx() (ports.IndexTx, error) {
	tx, err := idx.begin()
	if err != nil {
		return nil, err
	}
	return tx, nil
}

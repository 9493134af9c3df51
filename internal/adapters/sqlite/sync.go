package sqlite

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"treenotes/internal/adapters/markdown"
	"treenotes/internal/domain"
)

// SyncFull performs a complete rebuild of the index
func (idx *Index) SyncFull(ctx context.Context) (*domain.SyncStats, error) {
	start := time.Now()
	stats := &domain.SyncStats{}

	tx, err := idx.begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Clear existing data
	if err := tx.clear(); err != nil {
		return nil, err
	}

	err = idx.walkNotes(ctx, func(rel string, mtime int64) error {
		stats.FilesScanned++
		note := &domain.IndexedNote{Path: rel, ID: domain.NoteID(rel), Mtime: mtime}
		if err := tx.UpsertNote(note); err != nil {
			return err
		}
		stats.NotesAdded++

		n, err := idx.indexLinks(tx, note)
		stats.LinksAdded += n
		return err
	})
	if err != nil {
		return stats, err
	}

	if err := tx.Commit(); err != nil {
		return stats, err
	}
	if err := idx.updateMeta(time.Now().Unix()); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	idx.log.WithFields(logrusFields(stats)).Debug("full index sync")
	return stats, nil
}

// SyncIncremental updates only files whose mtime moved since they were
// indexed and drops files that disappeared
func (idx *Index) SyncIncremental(ctx context.Context) (*domain.SyncStats, error) {
	start := time.Now()
	stats := &domain.SyncStats{}

	// Track existing paths to detect deletions
	existing := make(map[string]int64)
	rows, err := idx.db.QueryContext(ctx, `SELECT path, mtime FROM notes`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p string
		var mtime int64
		if err := rows.Scan(&p, &mtime); err != nil {
			rows.Close()
			return nil, err
		}
		existing[p] = mtime
	}
	rows.Close()

	tx, err := idx.begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	seen := make(map[string]bool)
	err = idx.walkNotes(ctx, func(rel string, mtime int64) error {
		seen[rel] = true
		stats.FilesScanned++

		prev, known := existing[rel]
		if known && prev == mtime {
			return nil
		}

		note := &domain.IndexedNote{Path: rel, ID: domain.NoteID(rel), Mtime: mtime}
		if known {
			removed, err := tx.countLinks(rel)
			if err != nil {
				return err
			}
			if err := tx.DeleteLinksFrom(rel); err != nil {
				return err
			}
			stats.LinksDeleted += removed
			stats.NotesUpdated++
		} else {
			stats.NotesAdded++
		}
		if err := tx.UpsertNote(note); err != nil {
			return err
		}

		n, err := idx.indexLinks(tx, note)
		stats.LinksAdded += n
		return err
	})
	if err != nil {
		return stats, err
	}

	// Delete notes that no longer exist
	for p := range existing {
		if seen[p] {
			continue
		}
		removed, err := tx.countLinks(p)
		if err != nil {
			return stats, err
		}
		if err := tx.DeleteNote(p); err != nil {
			return stats, err
		}
		stats.NotesDeleted++
		stats.LinksDeleted += removed
	}

	if err := tx.Commit(); err != nil {
		return stats, err
	}
	if err := idx.updateMeta(time.Now().Unix()); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	idx.log.WithFields(logrusFields(stats)).Debug("incremental index sync")
	return stats, nil
}

// reindexFile refreshes a single note after it changed on disk
func (idx *Index) reindexFile(ctx context.Context, rel string, mtime int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := idx.begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	note := &domain.IndexedNote{Path: rel, ID: domain.NoteID(rel), Mtime: mtime}
	if err := tx.DeleteLinksFrom(rel); err != nil {
		return err
	}
	if err := tx.UpsertNote(note); err != nil {
		return err
	}
	if _, err := idx.indexLinks(tx, note); err != nil {
		return err
	}
	return tx.Commit()
}

// walkNotes calls fn for every note file below the root scope with its
// slash separated vault-relative path. Unreadable entries are skipped.
func (idx *Index) walkNotes(ctx context.Context, fn func(rel string, mtime int64) error) error {
	root := filepath.Join(idx.vaultPath, filepath.FromSlash(idx.rootScope))

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			idx.log.WithError(err).WithField("path", p).Debug("skipping unreadable entry")
			return nil // Skip errors
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// Skip hidden directories
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(idx.vaultPath, p)
		if err != nil {
			return nil
		}
		return fn(filepath.ToSlash(rel), info.ModTime().UnixNano())
	})
}

// indexLinks parses a note and records its outgoing links. A note that
// cannot be read is indexed without links.
func (idx *Index) indexLinks(tx *indexTx, note *domain.IndexedNote) (int, error) {
	content, err := os.ReadFile(filepath.Join(idx.vaultPath, filepath.FromSlash(note.Path)))
	if err != nil {
		idx.log.WithError(err).WithField("path", note.Path).Warn("failed to read note")
		return 0, nil
	}

	refs := markdown.ParseReferences(string(content))
	for _, target := range refs {
		link := &domain.Link{SourcePath: note.Path, SourceID: note.ID, TargetID: target}
		if err := tx.InsertLink(link); err != nil {
			return 0, err
		}
	}
	return len(refs), nil
}

func logrusFields(stats *domain.SyncStats) logrus.Fields {
	return logrus.Fields{
		"scanned":  stats.FilesScanned,
		"added":    stats.NotesAdded,
		"updated":  stats.NotesUpdated,
		"deleted":  stats.NotesDeleted,
		"links":    stats.LinksAdded,
		"duration": stats.Duration,
	}
}

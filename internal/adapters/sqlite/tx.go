package sqlite

import (
	"database/sql"

	"treenotes/internal/domain"
	"treenotes/internal/ports"
)

// indexTx implements ports.IndexTx
type indexTx struct {
	tx *sql.Tx
}

// Ensure indexTx implements IndexTx
var _ ports.IndexTx = (*indexTx)(nil)

// UpsertNote inserts or updates a note
func (t *indexTx) UpsertNote(note *domain.IndexedNote) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO notes (path, id, mtime)
		VALUES (?, ?, ?)
	`, note.Path, note.ID, note.Mtime)
	return err
}

// DeleteNote removes a note and the links written in it
func (t *indexTx) DeleteNote(path string) error {
	if _, err := t.tx.Exec(`DELETE FROM notes WHERE path = ?`, path); err != nil {
		return err
	}
	return t.DeleteLinksFrom(path)
}

// DeleteLinksFrom removes all links from a source file
func (t *indexTx) DeleteLinksFrom(sourcePath string) error {
	_, err := t.tx.Exec(`DELETE FROM links WHERE source_path = ?`, sourcePath)
	return err
}

// InsertLink appends a link; links keep their insertion order per file
func (t *indexTx) InsertLink(link *domain.Link) error {
	_, err := t.tx.Exec(`
		INSERT INTO links (source_path, source_id, target_id)
		VALUES (?, ?, ?)
	`, link.SourcePath, link.SourceID, link.TargetID)
	return err
}

// Commit commits the transaction
func (t *indexTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *indexTx) Rollback() error {
	return t.tx.Rollback()
}

// begin starts a transaction with access to the bulk helpers
func (idx *Index) begin() (*indexTx, error) {
	tx, err := idx.db.Begin()
	if err != nil {
		return nil, err
	}
	return &indexTx{tx: tx}, nil
}

func (t *indexTx) clear() error {
	if _, err := t.tx.Exec(`DELETE FROM notes`); err != nil {
		return err
	}
	_, err := t.tx.Exec(`DELETE FROM links`)
	return err
}

func (t *indexTx) countLinks(sourcePath string) (int, error) {
	var n int
	err := t.tx.QueryRow(`SELECT COUNT(*) FROM links WHERE source_path = ?`, sourcePath).Scan(&n)
	return n, err
}

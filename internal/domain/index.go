package domain

import "time"

// IndexedNote is a note as cached by the link index
type IndexedNote struct {
	Path  string // Relative path from vault root (primary key)
	ID    string // Note id (basename without .md)
	Mtime int64  // Unix nanoseconds, for incremental sync
}

// Link is one outgoing reference recorded in the link index
type Link struct {
	SourcePath string // File containing the reference
	SourceID   string
	TargetID   string
}

// SyncStats holds statistics from a sync operation
type SyncStats struct {
	NotesAdded   int
	NotesUpdated int
	NotesDeleted int
	LinksAdded   int
	LinksDeleted int
	FilesScanned int
	Duration     time.Duration
}

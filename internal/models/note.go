// Package models defines the domain types for scrap.
package models

import (
	"slices"

	"github.com/google/uuid"
)

// Entity kinds, used in errors, journal entries and API payloads.
const (
	KindNote   = "note"
	KindFolder = "folder"
)

// Note is a text file in the workspace. RelPath is relative to the
// workspace root and uses the OS path separator.
type Note struct {
	ID       uuid.UUID `json:"id"`
	RelPath  string    `json:"path"`
	Title    string    `json:"title"`
	FileType string    `json:"type"`
	Body     string    `json:"body"`
	Dirty    bool      `json:"dirty,omitempty"`
}

// WriteAll replaces the body and marks the note dirty. It does not persist.
func (n *Note) WriteAll(content string) {
	n.Body = content
	n.Dirty = true
}

// Folder is a directory in the workspace. Child ids are only populated by a
// full scan or by the index when entities are created under it.
type Folder struct {
	ID             uuid.UUID   `json:"id"`
	RelPath        string      `json:"path"`
	ParentID       uuid.UUID   `json:"parent_id"`
	DisplayName    string      `json:"display_name"`
	ChildNoteIDs   []uuid.UUID `json:"child_note_ids"`
	ChildFolderIDs []uuid.UUID `json:"child_folder_ids"`
}

// Clone returns a copy that shares no slices with f.
func (f Folder) Clone() Folder {
	f.ChildNoteIDs = slices.Clone(f.ChildNoteIDs)
	f.ChildFolderIDs = slices.Clone(f.ChildFolderIDs)
	return f
}

// NoteSummary is the lightweight representation returned by list operations.
type NoteSummary struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	FileType string    `json:"type"`
}

// FolderSummary is the lightweight representation returned by list operations.
type FolderSummary struct {
	ID          uuid.UUID `json:"id"`
	ParentID    uuid.UUID `json:"parent_id"`
	DisplayName string    `json:"display_name"`
}

// Package index holds every note and folder of a workspace in memory, keyed
// by id, with secondary tables by title, file type, display name and id
// shorthand. It never touches the filesystem.
package index

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/scrap/internal/apperr"
	"github.com/starford/scrap/internal/models"
	"github.com/starford/scrap/internal/resolver"
)

// Table names, used in orphan diagnostics.
const (
	tableTitle       = "title"
	tableFileType    = "file_type"
	tableDisplayName = "display_name"
)

// Index owns the notes and folders inserted into it. Lookups return copies.
// It is not safe for concurrent use.
type Index struct {
	notes   map[uuid.UUID]*models.Note
	folders map[uuid.UUID]*models.Folder

	byTitle       table
	byFileType    table
	byDisplayName table

	noteShorthand   table
	folderShorthand table

	logger *slog.Logger
}

// ExtendReport summarises a batch insert.
type ExtendReport struct {
	Inserted  int         `json:"inserted"`
	Conflicts []uuid.UUID `json:"conflicts,omitempty"`
}

// New returns an empty index.
func New(logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		notes:           make(map[uuid.UUID]*models.Note),
		folders:         make(map[uuid.UUID]*models.Folder),
		byTitle:         make(table),
		byFileType:      make(table),
		byDisplayName:   make(table),
		noteShorthand:   make(table),
		folderShorthand: make(table),
		logger:          logger,
	}
}

// InsertNote adds n. An id that is already indexed, as a note or as a
// folder, is rejected with an *apperr.IDConflictError.
func (ix *Index) InsertNote(n models.Note) error {
	if n.ID == uuid.Nil {
		return fmt.Errorf("index: insert note %s: nil id", n.RelPath)
	}
	if ix.HasNote(n.ID) || ix.HasFolder(n.ID) {
		return &apperr.IDConflictError{Kind: models.KindNote, ID: n.ID}
	}
	ix.notes[n.ID] = &n
	ix.byTitle.add(n.Title, n.ID)
	ix.byFileType.add(strings.ToLower(n.FileType), n.ID)
	ix.noteShorthand.add(resolver.Shorthand(n.ID), n.ID)
	return nil
}

// InsertFolder adds f. Ids are unique across notes and folders, so an id
// already indexed as either is rejected with an *apperr.IDConflictError.
func (ix *Index) InsertFolder(f models.Folder) error {
	if f.ID == uuid.Nil {
		return fmt.Errorf("index: insert folder %s: nil id", f.RelPath)
	}
	if ix.HasFolder(f.ID) || ix.HasNote(f.ID) {
		return &apperr.IDConflictError{Kind: models.KindFolder, ID: f.ID}
	}
	c := f.Clone()
	ix.folders[f.ID] = &c
	ix.byDisplayName.add(f.DisplayName, f.ID)
	ix.folderShorthand.add(resolver.Shorthand(f.ID), f.ID)
	return nil
}

// ExtendNotes inserts every note of batch. Id conflicts are collected in the
// report and skipped; any other error aborts the batch.
func (ix *Index) ExtendNotes(batch []models.Note) (ExtendReport, error) {
	var r ExtendReport
	for _, n := range batch {
		if err := r.record(n.ID, ix.InsertNote(n)); err != nil {
			return r, err
		}
	}
	return r, nil
}

// ExtendFolders inserts every folder of batch, like ExtendNotes.
func (ix *Index) ExtendFolders(batch []models.Folder) (ExtendReport, error) {
	var r ExtendReport
	for _, f := range batch {
		if err := r.record(f.ID, ix.InsertFolder(f)); err != nil {
			return r, err
		}
	}
	return r, nil
}

func (r *ExtendReport) record(id uuid.UUID, err error) error {
	switch {
	case err == nil:
		r.Inserted++
	case apperr.Kind(err) == apperr.ErrIDConflict:
		r.Conflicts = append(r.Conflicts, id)
	default:
		return err
	}
	return nil
}

// Merge adds the counts of other to r.
func (r ExtendReport) Merge(other ExtendReport) ExtendReport {
	r.Inserted += other.Inserted
	r.Conflicts = append(slices.Clone(r.Conflicts), other.Conflicts...)
	return r
}

// AddChildNote records noteID as a direct child of the folder parentID.
// Unknown parents, including the workspace root, are ignored.
func (ix *Index) AddChildNote(parentID, noteID uuid.UUID) {
	if f, ok := ix.folders[parentID]; ok && !slices.Contains(f.ChildNoteIDs, noteID) {
		f.ChildNoteIDs = append(f.ChildNoteIDs, noteID)
	}
}

// AddChildFolder records folderID as a direct child of the folder parentID.
func (ix *Index) AddChildFolder(parentID, folderID uuid.UUID) {
	if f, ok := ix.folders[parentID]; ok && !slices.Contains(f.ChildFolderIDs, folderID) {
		f.ChildFolderIDs = append(f.ChildFolderIDs, folderID)
	}
}

// RemoveNote removes the note and every secondary entry pointing at it.
func (ix *Index) RemoveNote(id uuid.UUID) (models.Note, error) {
	n, ok := ix.notes[id]
	if !ok {
		return models.Note{}, &apperr.NotFoundError{Kind: models.KindNote, ID: id}
	}
	delete(ix.notes, id)
	ix.byTitle.remove(n.Title, id)
	ix.byFileType.remove(strings.ToLower(n.FileType), id)
	ix.noteShorthand.remove(resolver.Shorthand(id), id)
	for _, f := range ix.folders {
		f.ChildNoteIDs = slices.DeleteFunc(f.ChildNoteIDs, func(c uuid.UUID) bool { return c == id })
	}
	return *n, nil
}

// Removed lists what a folder removal took out of the index.
type Removed struct {
	Notes   []models.Note   `json:"notes"`
	Folders []models.Folder `json:"folders"`
}

// RemoveFolder removes the folder, and recursively every child note and
// child folder recorded on it, from all tables. It also drops the folder
// from its parent's child list.
func (ix *Index) RemoveFolder(id uuid.UUID) (Removed, error) {
	f, ok := ix.folders[id]
	if !ok {
		return Removed{}, &apperr.NotFoundError{Kind: models.KindFolder, ID: id}
	}
	if p, ok := ix.folders[f.ParentID]; ok {
		p.ChildFolderIDs = slices.DeleteFunc(p.ChildFolderIDs, func(c uuid.UUID) bool { return c == id })
	}
	var out Removed
	ix.removeTree(id, &out)
	return out, nil
}

func (ix *Index) removeTree(id uuid.UUID, out *Removed) {
	f, ok := ix.folders[id]
	if !ok {
		ix.logger.Warn("index: child folder missing during removal", slog.String("id", id.String()))
		return
	}
	delete(ix.folders, id)
	ix.byDisplayName.remove(f.DisplayName, id)
	ix.folderShorthand.remove(resolver.Shorthand(id), id)

	for _, nid := range f.ChildNoteIDs {
		n, ok := ix.notes[nid]
		if !ok {
			ix.logger.Warn("index: child note missing during removal", slog.String("id", nid.String()))
			continue
		}
		delete(ix.notes, nid)
		ix.byTitle.remove(n.Title, nid)
		ix.byFileType.remove(strings.ToLower(n.FileType), nid)
		ix.noteShorthand.remove(resolver.Shorthand(nid), nid)
		out.Notes = append(out.Notes, *n)
	}
	for _, cid := range f.ChildFolderIDs {
		ix.removeTree(cid, out)
	}
	out.Folders = append(out.Folders, *f)
}

// Note returns a copy of the note with the given id.
func (ix *Index) Note(id uuid.UUID) (models.Note, error) {
	n, ok := ix.notes[id]
	if !ok {
		return models.Note{}, &apperr.NotFoundError{Kind: models.KindNote, ID: id}
	}
	return *n, nil
}

// Folder returns a copy of the folder with the given id.
func (ix *Index) Folder(id uuid.UUID) (models.Folder, error) {
	f, ok := ix.folders[id]
	if !ok {
		return models.Folder{}, &apperr.NotFoundError{Kind: models.KindFolder, ID: id}
	}
	return f.Clone(), nil
}

// HasNote reports whether id is an indexed note.
func (ix *Index) HasNote(id uuid.UUID) bool {
	_, ok := ix.notes[id]
	return ok
}

// HasFolder reports whether id is an indexed folder.
func (ix *Index) HasFolder(id uuid.UUID) bool {
	_, ok := ix.folders[id]
	return ok
}

// NotesByTitle returns the notes whose title is exactly title.
func (ix *Index) NotesByTitle(title string) []models.Note {
	return ix.notesIn(tableTitle, ix.byTitle[title])
}

// NotesByFileType returns the notes of the given type. Types are stored
// lower-cased, so the match ignores case.
func (ix *Index) NotesByFileType(fileType string) []models.Note {
	return ix.notesIn(tableFileType, ix.byFileType[strings.ToLower(fileType)])
}

// FoldersByDisplayName returns the folders whose display name is exactly name.
func (ix *Index) FoldersByDisplayName(name string) []models.Folder {
	var out []models.Folder
	for _, id := range ix.byDisplayName[name] {
		f, ok := ix.folders[id]
		if !ok {
			ix.orphan(tableDisplayName, id)
			continue
		}
		out = append(out, f.Clone())
	}
	return out
}

// NoteShorthand returns the note ids sharing a shorthand, in insertion order.
func (ix *Index) NoteShorthand(s string) []uuid.UUID {
	return slices.Clone(ix.noteShorthand[s])
}

// FolderShorthand returns the folder ids sharing a shorthand.
func (ix *Index) FolderShorthand(s string) []uuid.UUID {
	return slices.Clone(ix.folderShorthand[s])
}

func (ix *Index) notesIn(tableName string, ids []uuid.UUID) []models.Note {
	var out []models.Note
	for _, id := range ids {
		n, ok := ix.notes[id]
		if !ok {
			ix.orphan(tableName, id)
			continue
		}
		out = append(out, *n)
	}
	return out
}

func (ix *Index) orphan(tableName string, id uuid.UUID) {
	ix.logger.Warn("index: orphaned entry",
		slog.String("table", tableName),
		slog.String("id", id.String()),
	)
}

// ListNotes returns a summary of every indexed note, in no particular order.
func (ix *Index) ListNotes() []models.NoteSummary {
	out := make([]models.NoteSummary, 0, len(ix.notes))
	for _, n := range ix.notes {
		out = append(out, models.NoteSummary{ID: n.ID, Title: n.Title, FileType: n.FileType})
	}
	return out
}

// ListFolders returns a summary of every indexed folder, in no particular order.
func (ix *Index) ListFolders() []models.FolderSummary {
	out := make([]models.FolderSummary, 0, len(ix.folders))
	for _, f := range ix.folders {
		out = append(out, models.FolderSummary{ID: f.ID, ParentID: f.ParentID, DisplayName: f.DisplayName})
	}
	return out
}

// Len returns the number of indexed notes and folders.
func (ix *Index) Len() (notes, folders int) {
	return len(ix.notes), len(ix.folders)
}

// WriteAll replaces the body of a note and marks it dirty.
func (ix *Index) WriteAll(id uuid.UUID, content string) (models.Note, error) {
	n, ok := ix.notes[id]
	if !ok {
		return models.Note{}, &apperr.NotFoundError{Kind: models.KindNote, ID: id}
	}
	n.WriteAll(content)
	return *n, nil
}

// RenameFolder changes the display name of a folder and moves it to the new
// key in the display-name table.
func (ix *Index) RenameFolder(id uuid.UUID, name string) (models.Folder, error) {
	f, ok := ix.folders[id]
	if !ok {
		return models.Folder{}, &apperr.NotFoundError{Kind: models.KindFolder, ID: id}
	}
	ix.byDisplayName.remove(f.DisplayName, id)
	f.DisplayName = name
	ix.byDisplayName.add(name, id)
	return f.Clone(), nil
}

// MarkClean clears the dirty flag after a note was saved.
func (ix *Index) MarkClean(id uuid.UUID) {
	if n, ok := ix.notes[id]; ok {
		n.Dirty = false
	}
}

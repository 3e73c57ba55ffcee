// Package noteservice is the session that ties the workspace, the index and
// the journal together. Outer surfaces (CLI, HTTP, MCP) go through it.
package noteservice

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/starford/scrap/internal/checksum"
	"github.com/starford/scrap/internal/index"
	"github.com/starford/scrap/internal/journal"
	"github.com/starford/scrap/internal/models"
	"github.com/starford/scrap/internal/workspace"
)

// DefaultHistoryLimit bounds History when the caller passes no limit.
const DefaultHistoryLimit = 50

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	models.Note
	Checksum string `json:"checksum"`
}

// FolderView is a folder with summaries of its direct children.
type FolderView struct {
	ID          uuid.UUID              `json:"id"`
	Path        string                 `json:"path"`
	DisplayName string                 `json:"display_name"`
	ParentID    uuid.UUID              `json:"parent_id,omitempty"`
	Notes       []models.NoteSummary   `json:"notes"`
	Folders     []models.FolderSummary `json:"folders"`
}

// SyncReport describes a full rescan.
type SyncReport struct {
	Notes   index.ExtendReport `json:"notes"`
	Folders index.ExtendReport `json:"folders"`
}

// Service serialises every operation behind one mutex, so the index and
// workspace only ever see a single caller.
type Service struct {
	mu      sync.Mutex
	ws      *workspace.Workspace
	idx     *index.Index
	journal *journal.DB // nil disables the journal
	rootID  uuid.UUID
	logger  *slog.Logger
}

// New creates a service with an empty index. Call Sync to populate it.
func New(ws *workspace.Workspace, j *journal.DB, rootID uuid.UUID, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ws:      ws,
		idx:     index.New(logger),
		journal: j,
		rootID:  rootID,
		logger:  logger,
	}
}

// RootID returns the id standing for the workspace root.
func (s *Service) RootID() uuid.UUID {
	return s.rootID
}

// Sync rescans the whole workspace into a fresh index and swaps it in. Id
// conflicts are reported, not fatal. On error the previous index is kept.
func (s *Service) Sync(_ context.Context) (SyncReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, folders, err := s.ws.Scan(s.rootID)
	if err != nil {
		return SyncReport{}, err
	}
	idx := index.New(s.logger)
	var r SyncReport
	if r.Folders, err = idx.ExtendFolders(folders); err != nil {
		return SyncReport{}, fmt.Errorf("noteservice: sync: %w", err)
	}
	if r.Notes, err = idx.ExtendNotes(notes); err != nil {
		return SyncReport{}, fmt.Errorf("noteservice: sync: %w", err)
	}
	total := r.Folders.Merge(r.Notes)
	for _, id := range total.Conflicts {
		s.logger.Warn("duplicate id skipped", slog.String("id", id.String()))
	}
	s.idx = idx
	nNotes, nFolders := idx.Len()
	s.logger.Info("workspace synced",
		slog.Int("notes", nNotes),
		slog.Int("folders", nFolders),
		slog.Int("conflicts", len(total.Conflicts)),
	)
	return r, nil
}

// ListNotes returns every note, ordered by title.
func (s *Service) ListNotes(_ context.Context) []models.NoteSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.idx.ListNotes()
	slices.SortFunc(out, func(a, b models.NoteSummary) int {
		return cmp.Or(cmp.Compare(a.Title, b.Title), cmp.Compare(a.ID.String(), b.ID.String()))
	})
	return out
}

// ListFolders returns every folder, ordered by display name.
func (s *Service) ListFolders(_ context.Context) []models.FolderSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.idx.ListFolders()
	sortFolders(out)
	return out
}

// NotesByTitle returns the notes with exactly this title.
func (s *Service) NotesByTitle(_ context.Context, title string) []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.NotesByTitle(title)
}

// NotesByType returns the notes of a file type.
func (s *Service) NotesByType(_ context.Context, fileType string) []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.NotesByFileType(fileType)
}

// FoldersByName returns the folders with exactly this display name.
func (s *Service) FoldersByName(_ context.Context, name string) []models.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.FoldersByDisplayName(name)
}

// Folder returns the folder input refers to, with its direct children. An
// empty input or "root" selects the workspace root.
func (s *Service) Folder(_ context.Context, input string) (FolderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.resolveParent(input)
	if err != nil {
		return FolderView{}, err
	}
	if t.id == s.rootID {
		return s.rootView(), nil
	}
	f, err := s.idx.Folder(t.id)
	if err != nil {
		return FolderView{}, err
	}
	v := FolderView{ID: f.ID, Path: f.RelPath, DisplayName: f.DisplayName, ParentID: f.ParentID}
	for _, id := range f.ChildNoteIDs {
		if n, err := s.idx.Note(id); err == nil {
			v.Notes = append(v.Notes, summarizeNote(n))
		}
	}
	for _, id := range f.ChildFolderIDs {
		if c, err := s.idx.Folder(id); err == nil {
			v.Folders = append(v.Folders, summarizeFolder(c))
		}
	}
	return v, nil
}

// rootView lists top-level folders and notes that no folder claims.
func (s *Service) rootView() FolderView {
	v := FolderView{ID: s.rootID, DisplayName: "root"}
	claimed := map[uuid.UUID]bool{}
	for _, sum := range s.idx.ListFolders() {
		f, err := s.idx.Folder(sum.ID)
		if err != nil {
			continue
		}
		for _, id := range f.ChildNoteIDs {
			claimed[id] = true
		}
		if f.ParentID == s.rootID {
			v.Folders = append(v.Folders, sum)
		}
	}
	for _, ns := range s.idx.ListNotes() {
		n, err := s.idx.Note(ns.ID)
		if err != nil || claimed[n.ID] || filepath.Dir(n.RelPath) != "." {
			continue
		}
		v.Notes = append(v.Notes, ns)
	}
	sortFolders(v.Folders)
	slices.SortFunc(v.Notes, func(a, b models.NoteSummary) int { return cmp.Compare(a.Title, b.Title) })
	return v
}

// History returns journal entries, newest first. A non-empty input limits
// them to one entity; a full id works even after the entity left the index.
func (s *Service) History(_ context.Context, input string, limit int) ([]journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.journal == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if input == "" {
		return s.journal.Recent(limit)
	}
	id, err := uuid.Parse(input)
	if err != nil {
		t, err := s.resolve(input, models.KindNote, models.KindFolder)
		if err != nil {
			return nil, err
		}
		id = t.id
	}
	return s.journal.ForEntity(id, limit)
}

func (s *Service) record(action, kind string, id uuid.UUID, path, content string) {
	if s.journal == nil {
		return
	}
	e := journal.Entry{
		Action:   action,
		Kind:     kind,
		EntityID: id,
		Path:     filepath.ToSlash(path),
		Checksum: checksum.Content(content),
	}
	if err := s.journal.Record(e); err != nil {
		s.logger.Warn("journal write failed", slog.String("action", action), slog.Any("error", err))
	}
}

func summarizeNote(n models.Note) models.NoteSummary {
	return models.NoteSummary{ID: n.ID, Title: n.Title, FileType: n.FileType}
}

func summarizeFolder(f models.Folder) models.FolderSummary {
	return models.FolderSummary{ID: f.ID, ParentID: f.ParentID, DisplayName: f.DisplayName}
}

func sortFolders(out []models.FolderSummary) {
	slices.SortFunc(out, func(a, b models.FolderSummary) int {
		return cmp.Or(cmp.Compare(a.DisplayName, b.DisplayName), cmp.Compare(a.ID.String(), b.ID.String()))
	})
}

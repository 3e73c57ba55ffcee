package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/scrap/internal/apperr"
	"github.com/starford/scrap/internal/checksum"
	"github.com/starford/scrap/internal/index"
	"github.com/starford/scrap/internal/journal"
	"github.com/starford/scrap/internal/models"
	"github.com/starford/scrap/internal/parser"
	"github.com/starford/scrap/internal/workspace"
)

// Command is one of CreateNote, CreateFolder, OpenNote, UpdateNote,
// RenameFolder or Remove. Each kind has its own executor; all of them
// resolve ids through the same helper.
type Command interface {
	command()
}

// CreateNote creates an empty note in the folder Parent refers to.
type CreateNote struct {
	Parent   string
	Title    string
	FileType string
}

// CreateFolder creates a folder below the folder Parent refers to.
type CreateFolder struct {
	Parent      string
	DisplayName string
}

// OpenNote returns a note with its body.
type OpenNote struct {
	ID string
}

// UpdateNote replaces the body of a note and saves it.
type UpdateNote struct {
	ID   string
	Body string
}

// RenameFolder changes the display name of a folder. The directory keeps
// its name on disk.
type RenameFolder struct {
	ID          string
	DisplayName string
}

// Remove takes a note or folder out of the workspace. Folders go with
// everything below them. Unless Permanent is set the files are moved to the
// trash. Kind restricts the lookup to notes or folders; empty means either.
type Remove struct {
	ID        string
	Kind      string
	Permanent bool
}

func (CreateNote) command()   {}
func (CreateFolder) command() {}
func (OpenNote) command()     {}
func (UpdateNote) command()   {}
func (RenameFolder) command() {}
func (Remove) command()       {}

// Outcome is the result of a command. Only the fields relevant to the
// command kind are set.
type Outcome struct {
	Note      *NoteDetail    `json:"note,omitempty"`
	Folder    *models.Folder `json:"folder,omitempty"`
	Removed   *index.Removed `json:"removed,omitempty"`
	TrashPath string         `json:"trash_path,omitempty"`
}

// Execute runs cmd.
func (s *Service) Execute(_ context.Context, cmd Command) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch c := cmd.(type) {
	case CreateNote:
		return s.createNote(c)
	case CreateFolder:
		return s.createFolder(c)
	case OpenNote:
		return s.openNote(c)
	case UpdateNote:
		return s.updateNote(c)
	case RenameFolder:
		return s.renameFolder(c)
	case Remove:
		return s.remove(c)
	default:
		return Outcome{}, fmt.Errorf("noteservice: unknown command %T", cmd)
	}
}

func (s *Service) createNote(c CreateNote) (Outcome, error) {
	parent, err := s.resolveParent(c.Parent)
	if err != nil {
		return Outcome{}, err
	}
	n, err := s.ws.CreateNote(parent.path, c.Title, c.FileType)
	if err != nil {
		return Outcome{}, collision(err, c.Title, parent)
	}
	if err := s.idx.InsertNote(n); err != nil {
		return Outcome{}, fmt.Errorf("noteservice: index note: %w", err)
	}
	s.idx.AddChildNote(parent.id, n.ID)

	content := workspace.Content(n)
	s.record(journal.ActionCreate, models.KindNote, n.ID, n.RelPath, content)
	s.logger.Info("note created", slog.String("id", n.ID.String()), slog.String("path", n.RelPath))
	return Outcome{Note: detail(n, content)}, nil
}

func (s *Service) createFolder(c CreateFolder) (Outcome, error) {
	parent, err := s.resolveParent(c.Parent)
	if err != nil {
		return Outcome{}, err
	}
	f, err := s.ws.CreateFolder(parent.path, c.DisplayName, parent.id)
	if err != nil {
		return Outcome{}, collision(err, c.DisplayName, parent)
	}
	if err := s.idx.InsertFolder(f); err != nil {
		return Outcome{}, fmt.Errorf("noteservice: index folder: %w", err)
	}
	s.idx.AddChildFolder(parent.id, f.ID)

	s.record(journal.ActionCreate, models.KindFolder, f.ID, f.RelPath, "")
	s.logger.Info("folder created", slog.String("id", f.ID.String()), slog.String("path", f.RelPath))
	return Outcome{Folder: &f}, nil
}

func (s *Service) openNote(c OpenNote) (Outcome, error) {
	t, err := s.resolve(c.ID, models.KindNote)
	if err != nil {
		return Outcome{}, err
	}
	n, err := s.idx.Note(t.id)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Note: detail(n, workspace.Content(n))}, nil
}

// updateNote writes the body into the index, saves it and only then marks
// the note clean. A failed save leaves the note dirty.
func (s *Service) updateNote(c UpdateNote) (Outcome, error) {
	t, err := s.resolve(c.ID, models.KindNote)
	if err != nil {
		return Outcome{}, err
	}
	n, err := s.idx.WriteAll(t.id, c.Body)
	if err != nil {
		return Outcome{}, err
	}
	if err := s.ws.SaveNote(n); err != nil {
		return Outcome{}, err
	}
	s.idx.MarkClean(n.ID)
	n.Dirty = false

	content := workspace.Content(n)
	s.record(journal.ActionSave, models.KindNote, n.ID, n.RelPath, content)
	return Outcome{Note: detail(n, content)}, nil
}

// renameFolder saves the new metadata first and updates the index only once
// the file is written.
func (s *Service) renameFolder(c RenameFolder) (Outcome, error) {
	t, err := s.resolve(c.ID, models.KindFolder)
	if err != nil {
		return Outcome{}, err
	}
	f, err := s.idx.Folder(t.id)
	if err != nil {
		return Outcome{}, err
	}
	f.DisplayName = parser.Normalize(c.DisplayName)
	if f.DisplayName == "" {
		f.DisplayName = "Untitled"
	}
	if err := s.ws.SaveFolder(f); err != nil {
		return Outcome{}, err
	}
	renamed, err := s.idx.RenameFolder(f.ID, f.DisplayName)
	if err != nil {
		return Outcome{}, err
	}

	s.record(journal.ActionSave, models.KindFolder, f.ID, f.RelPath, parser.ComposeFolder(f.ID, f.DisplayName))
	s.logger.Info("folder renamed", slog.String("id", f.ID.String()), slog.String("name", f.DisplayName))
	return Outcome{Folder: &renamed}, nil
}

// remove changes the disk first and the index second, so a failed file
// operation leaves both untouched.
func (s *Service) remove(c Remove) (Outcome, error) {
	kinds := []string{models.KindNote, models.KindFolder}
	if c.Kind != "" {
		kinds = []string{c.Kind}
	}
	t, err := s.resolve(c.ID, kinds...)
	if err != nil {
		return Outcome{}, err
	}
	action := journal.ActionTrash
	if c.Permanent {
		action = journal.ActionDelete
	}

	var out Outcome
	switch t.kind {
	case models.KindNote:
		if c.Permanent {
			err = s.ws.DeleteNote(t.path)
		} else {
			out.TrashPath, err = s.ws.TrashNote(t.path)
		}
		if err != nil {
			return Outcome{}, err
		}
		n, err := s.idx.RemoveNote(t.id)
		if err != nil {
			return Outcome{}, err
		}
		out.Removed = &index.Removed{Notes: []models.Note{n}}
	default:
		if c.Permanent {
			err = s.ws.DeleteFolder(t.path)
		} else {
			out.TrashPath, err = s.ws.TrashFolder(t.path)
		}
		if err != nil {
			return Outcome{}, err
		}
		removed, err := s.idx.RemoveFolder(t.id)
		if err != nil {
			return Outcome{}, err
		}
		out.Removed = &removed
	}

	for _, n := range out.Removed.Notes {
		s.record(action, models.KindNote, n.ID, n.RelPath, "")
	}
	for _, f := range out.Removed.Folders {
		s.record(action, models.KindFolder, f.ID, f.RelPath, "")
	}
	s.logger.Info("removed",
		slog.String("kind", t.kind),
		slog.String("id", t.id.String()),
		slog.Bool("permanent", c.Permanent),
		slog.Int("notes", len(out.Removed.Notes)),
		slog.Int("folders", len(out.Removed.Folders)),
	)
	return out, nil
}

// collision turns an exhausted name search into a NameCollisionError that
// carries the requested name and the parent folder id.
func collision(err error, name string, parent target) error {
	if errors.Is(err, apperr.ErrNameExhausted) {
		return &apperr.NameCollisionError{Name: name, Parent: parent.id, Err: err}
	}
	return err
}

func detail(n models.Note, content string) *NoteDetail {
	return &NoteDetail{Note: n, Checksum: checksum.Content(content)}
}

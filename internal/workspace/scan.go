package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/starford/scrap/internal/apperr"
	"github.com/starford/scrap/internal/models"
	"github.com/starford/scrap/internal/parser"
)

// Scan walks the whole tree depth-first and returns every note and folder
// found below the root. Top-level entries get rootID as parent. Each folder
// records the ids of its direct children. Folders with missing or incomplete
// metadata are repaired on disk as they are encountered.
func (w *Workspace) Scan(rootID uuid.UUID) ([]models.Note, []models.Folder, error) {
	s := &scanner{w: w}
	if _, _, err := s.dir("", rootID); err != nil {
		return nil, nil, fmt.Errorf("workspace: scan: %w", err)
	}
	w.logger.Debug("workspace scanned",
		slog.Int("notes", len(s.notes)),
		slog.Int("folders", len(s.folders)),
	)
	return s.notes, s.folders, nil
}

type scanner struct {
	w       *Workspace
	notes   []models.Note
	folders []models.Folder
}

// dir scans one directory and returns the ids of its direct children.
func (s *scanner) dir(rel string, parentID uuid.UUID) ([]uuid.UUID, []uuid.UUID, error) {
	abs := filepath.Join(s.w.root, rel)
	entries, err := os.ReadDir(abs) // sorted by name
	if err != nil {
		return nil, nil, apperr.FromFS(err)
	}

	var noteIDs, folderIDs []uuid.UUID
	for _, e := range entries {
		name := e.Name()
		if isReserved(name) || e.Type()&fs.ModeSymlink != 0 {
			continue
		}
		childRel := filepath.Join(rel, name)
		switch {
		case e.IsDir():
			folder, err := s.w.loadFolder(childRel, parentID)
			if err != nil {
				return nil, nil, err
			}
			folder.ChildNoteIDs, folder.ChildFolderIDs, err = s.dir(childRel, folder.ID)
			if err != nil {
				return nil, nil, err
			}
			s.folders = append(s.folders, folder)
			folderIDs = append(folderIDs, folder.ID)
		case e.Type().IsRegular() && filepath.Ext(name) == NoteExt:
			note, err := s.w.LoadNote(childRel)
			if err != nil {
				return nil, nil, err
			}
			s.notes = append(s.notes, note)
			noteIDs = append(noteIDs, note.ID)
		}
	}
	return noteIDs, folderIDs, nil
}

// LoadNote reads a single note. A note without an id in its front matter
// gets one derived from its relative path so repeated scans agree on it. A
// missing title falls back to the file name and a missing type to
// DefaultFileType.
func (w *Workspace) LoadNote(rel string) (models.Note, error) {
	abs, err := w.safePath(rel)
	if err != nil {
		return models.Note{}, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return models.Note{}, fmt.Errorf("workspace: read %s: %w", rel, apperr.FromFS(err))
	}
	if !utf8.Valid(data) {
		return models.Note{}, fmt.Errorf("workspace: read %s: %w", rel, apperr.ErrCorruptedFile)
	}

	h, body := parser.ParseNote(string(data))
	n := models.Note{
		ID:       h.ID.UUID,
		RelPath:  filepath.Clean(rel),
		Title:    h.Title,
		FileType: strings.ToLower(h.FileType),
		Body:     body,
	}
	if !h.ID.Valid {
		n.ID = pathID(n.RelPath)
	}
	if n.Title == "" {
		n.Title = stem(filepath.Base(rel))
	}
	if n.FileType == "" {
		n.FileType = DefaultFileType
	}
	return n, nil
}

// pathID is the stable id of a note that carries none.
func pathID(rel string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("scrap:note/"+filepath.ToSlash(rel)))
}

// loadFolder reads the metadata of the directory at rel. A legacy metadata
// file is renamed to the current name, a missing one is written fresh and an
// incomplete one is rewritten with the missing fields filled in.
func (w *Workspace) loadFolder(rel string, parentID uuid.UUID) (models.Folder, error) {
	abs := filepath.Join(w.root, rel)
	metaPath := filepath.Join(abs, MetadataFile)

	data, err := os.ReadFile(metaPath)
	if errors.Is(err, fs.ErrNotExist) {
		data, err = w.migrateLegacy(rel)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return w.synthesizeFolder(rel, parentID)
	}
	if err != nil {
		return models.Folder{}, fmt.Errorf("read metadata %s: %w", rel, apperr.FromFS(err))
	}
	if !utf8.Valid(data) {
		return models.Folder{}, fmt.Errorf("read metadata %s: %w", rel, apperr.ErrCorruptedFile)
	}

	h := parser.ParseFolder(string(data))
	f := models.Folder{
		ID:          h.ID.UUID,
		RelPath:     rel,
		ParentID:    parentID,
		DisplayName: h.DisplayName,
	}
	if h.ID.Valid && h.DisplayName != "" {
		return f, nil
	}

	if !h.ID.Valid {
		f.ID = uuid.New()
	}
	if f.DisplayName == "" {
		f.DisplayName = stem(filepath.Base(rel))
	}
	if err := atomic.WriteFile(metaPath, strings.NewReader(parser.ComposeFolder(f.ID, f.DisplayName))); err != nil {
		return models.Folder{}, fmt.Errorf("repair metadata %s: %w", rel, apperr.FromFS(err))
	}
	w.logger.Info("folder metadata repaired", slog.String("path", rel), slog.String("id", f.ID.String()))
	return f, nil
}

// migrateLegacy renames a legacy metadata file to MetadataFile and returns
// its content. The error matches fs.ErrNotExist when there is none.
func (w *Workspace) migrateLegacy(rel string) ([]byte, error) {
	legacy := filepath.Join(w.root, rel, LegacyMetadataFile)
	data, err := os.ReadFile(legacy)
	if err != nil {
		return nil, err
	}
	if err := os.Rename(legacy, filepath.Join(w.root, rel, MetadataFile)); err != nil {
		return nil, err
	}
	w.logger.Info("folder metadata migrated", slog.String("path", rel))
	return data, nil
}

func (w *Workspace) synthesizeFolder(rel string, parentID uuid.UUID) (models.Folder, error) {
	f := models.Folder{
		ID:          uuid.New(),
		RelPath:     rel,
		ParentID:    parentID,
		DisplayName: stem(filepath.Base(rel)),
	}
	metaPath := filepath.Join(w.root, rel, MetadataFile)
	if err := writeExclusive(metaPath, parser.ComposeFolder(f.ID, f.DisplayName)); err != nil {
		return models.Folder{}, fmt.Errorf("write metadata %s: %w", rel, apperr.FromFS(err))
	}
	w.logger.Info("folder metadata created", slog.String("path", rel), slog.String("id", f.ID.String()))
	return f, nil
}

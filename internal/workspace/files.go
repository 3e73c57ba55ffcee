package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/starford/scrap/internal/apperr"
	"github.com/starford/scrap/internal/models"
	"github.com/starford/scrap/internal/naming"
	"github.com/starford/scrap/internal/parser"
)

// CreateNote reserves a unique file name for title under the directory
// parentRel and writes the note front matter to it with an empty body. If
// the write fails the file is removed again.
func (w *Workspace) CreateNote(parentRel, title, fileType string) (models.Note, error) {
	dir, err := w.dirPath(parentRel)
	if err != nil {
		return models.Note{}, fmt.Errorf("workspace: create note: %w", err)
	}

	n := models.Note{
		ID:       uuid.New(),
		Title:    parser.Normalize(title),
		FileType: strings.ToLower(parser.Normalize(fileType)),
	}
	if n.Title == "" {
		n.Title = "Untitled"
	}
	if n.FileType == "" {
		n.FileType = DefaultFileType
	}

	var f *os.File
	base := naming.Sanitize(title, naming.UntitledNote, naming.NoteSlugLen)
	name, err := naming.Reserve(w.style, base, NoteExt, n.ID, func(name string) error {
		var err error
		f, err = os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		return err
	})
	if err != nil {
		return models.Note{}, fmt.Errorf("workspace: create note: %w", apperr.FromFS(err))
	}
	abs := filepath.Join(dir, name)

	if err := writeContent(f, parser.ComposeNote(n.ID, n.Title, n.FileType)); err != nil {
		_ = os.Remove(abs)
		return models.Note{}, fmt.Errorf("workspace: write note %s: %w", name, apperr.FromFS(err))
	}
	n.RelPath = filepath.Join(parentRel, name)
	return n, nil
}

// CreateFolder reserves a unique directory name for displayName under
// parentRel and writes its metadata file. If the metadata cannot be written
// the directory is removed again.
func (w *Workspace) CreateFolder(parentRel, displayName string, parentID uuid.UUID) (models.Folder, error) {
	dir, err := w.dirPath(parentRel)
	if err != nil {
		return models.Folder{}, fmt.Errorf("workspace: create folder: %w", err)
	}

	f := models.Folder{
		ID:          uuid.New(),
		ParentID:    parentID,
		DisplayName: parser.Normalize(displayName),
	}
	if f.DisplayName == "" {
		f.DisplayName = "Untitled"
	}
	base := naming.Sanitize(displayName, naming.UntitledFolder, naming.FolderSlugLen)
	name, err := naming.Reserve(w.style, base, "", f.ID, func(name string) error {
		return os.Mkdir(filepath.Join(dir, name), 0o755)
	})
	if err != nil {
		return models.Folder{}, fmt.Errorf("workspace: create folder: %w", apperr.FromFS(err))
	}
	abs := filepath.Join(dir, name)

	if err := writeExclusive(filepath.Join(abs, MetadataFile), parser.ComposeFolder(f.ID, f.DisplayName)); err != nil {
		_ = os.RemoveAll(abs)
		return models.Folder{}, fmt.Errorf("workspace: write metadata %s: %w", name, apperr.FromFS(err))
	}
	f.RelPath = filepath.Join(parentRel, name)
	return f, nil
}

// Content returns the full file content of n.
func Content(n models.Note) string {
	return parser.ComposeNote(n.ID, n.Title, n.FileType) + n.Body
}

// SaveNote overwrites the note file with its current front matter and body.
// The file must still exist.
func (w *Workspace) SaveNote(n models.Note) error {
	abs, err := w.existing(n.RelPath)
	if err != nil {
		return fmt.Errorf("workspace: save note: %w", err)
	}
	if err := atomic.WriteFile(abs, strings.NewReader(Content(n))); err != nil {
		return fmt.Errorf("workspace: save note %s: %w", n.RelPath, apperr.FromFS(err))
	}
	return nil
}

// SaveFolder overwrites the metadata file of f. The directory must still
// exist.
func (w *Workspace) SaveFolder(f models.Folder) error {
	if isRoot(f.RelPath) {
		return fmt.Errorf("workspace: save folder: root has no metadata: %w", apperr.ErrInvalidPath)
	}
	abs, err := w.existing(f.RelPath)
	if err != nil {
		return fmt.Errorf("workspace: save folder: %w", err)
	}
	content := parser.ComposeFolder(f.ID, parser.Normalize(f.DisplayName))
	if err := atomic.WriteFile(filepath.Join(abs, MetadataFile), strings.NewReader(content)); err != nil {
		return fmt.Errorf("workspace: save folder %s: %w", f.RelPath, apperr.FromFS(err))
	}
	return nil
}

// TrashNote moves the note file into the trash directory and returns its new
// relative path.
func (w *Workspace) TrashNote(rel string) (string, error) {
	return w.trash(rel, false)
}

// TrashFolder moves the directory and everything below it into the trash.
func (w *Workspace) TrashFolder(rel string) (string, error) {
	if isRoot(rel) {
		return "", fmt.Errorf("workspace: trash folder: refusing to trash root: %w", apperr.ErrInvalidPath)
	}
	return w.trash(rel, true)
}

// DeleteNote permanently removes a note file.
func (w *Workspace) DeleteNote(rel string) error {
	abs, err := w.existing(rel)
	if err != nil {
		return fmt.Errorf("workspace: delete note: %w", err)
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("workspace: delete note %s: %w", rel, apperr.FromFS(err))
	}
	return nil
}

// DeleteFolder permanently removes a directory and its contents.
func (w *Workspace) DeleteFolder(rel string) error {
	if isRoot(rel) {
		return fmt.Errorf("workspace: delete folder: refusing to delete root: %w", apperr.ErrInvalidPath)
	}
	abs, err := w.existing(rel)
	if err != nil {
		return fmt.Errorf("workspace: delete folder: %w", err)
	}
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("workspace: delete folder %s: %w", rel, apperr.FromFS(err))
	}
	return nil
}

// trash reserves a free name in the trash directory with an exclusive
// create, then renames the entry over the placeholder.
func (w *Workspace) trash(rel string, isDir bool) (string, error) {
	src, err := w.existing(rel)
	if err != nil {
		return "", fmt.Errorf("workspace: trash: %w", err)
	}
	trashDir := filepath.Join(w.root, TrashDir)
	if err := os.MkdirAll(trashDir, 0o755); err != nil {
		return "", fmt.Errorf("workspace: trash: %w", apperr.FromFS(err))
	}

	name := filepath.Base(src)
	ext := ""
	if !isDir {
		ext = filepath.Ext(name)
	}
	base := strings.TrimSuffix(name, ext)
	reserved, err := naming.Reserve(naming.StyleCounter, base, ext, uuid.Nil, func(candidate string) error {
		p := filepath.Join(trashDir, candidate)
		if isDir {
			return os.Mkdir(p, 0o755)
		}
		return writeExclusive(p, "")
	})
	if err != nil {
		return "", fmt.Errorf("workspace: trash %s: %w", rel, apperr.FromFS(err))
	}

	dst := filepath.Join(trashDir, reserved)
	if err := os.Rename(src, dst); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("workspace: trash %s: %w", rel, apperr.FromFS(err))
	}
	return filepath.Join(TrashDir, reserved), nil
}

// dirPath resolves rel to an existing directory.
func (w *Workspace) dirPath(rel string) (string, error) {
	abs, err := w.existing(rel)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", apperr.FromFS(err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s: %w", rel, apperr.ErrInvalidPath)
	}
	return abs, nil
}

// existing resolves rel and checks that something is there.
func (w *Workspace) existing(rel string) (string, error) {
	abs, err := w.safePath(rel)
	if err != nil {
		return "", err
	}
	if _, err := os.Lstat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", rel, apperr.ErrNotFound)
		}
		return "", apperr.FromFS(err)
	}
	return abs, nil
}

func isRoot(rel string) bool {
	return rel == "" || filepath.Clean(rel) == "."
}

// writeExclusive creates path, failing with fs.ErrExist if it is taken, and
// writes content to it.
func writeExclusive(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if err := writeContent(f, content); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// writeContent writes freshly created files. Tests replace it to fail the
// write after the name was reserved.
var writeContent = writeAndClose

func writeAndClose(f *os.File, content string) error {
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Package workspace is the only component that touches the workspace tree.
// It creates, reads, scans, saves and removes notes and folders, and keeps
// every path inside the configured root.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/scrap/internal/apperr"
	"github.com/starford/scrap/internal/naming"
)

// Reserved names, skipped during scans.
const (
	MetadataFile       = "_metadata.txt"
	LegacyMetadataFile = ".metadata.txt"
	TrashDir           = ".trash"
	CacheDir           = ".cache"
)

// NoteExt is the extension of note files.
const NoteExt = ".txt"

// DefaultFileType is assigned to notes whose front matter has no type.
const DefaultFileType = "rich-text"

// Workspace is rooted at an existing directory. It holds no entity state
// between calls.
type Workspace struct {
	root   string // absolute, symlinks resolved
	style  naming.Style
	logger *slog.Logger
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithNamingStyle selects how new file and directory names are built.
func WithNamingStyle(s naming.Style) Option {
	return func(w *Workspace) {
		w.style = s
	}
}

// WithLogger sets the logger used for scan repairs.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = l
	}
}

// Init creates root together with its trash and cache directories. It is
// safe to call on an existing workspace.
func Init(root string) error {
	for _, dir := range []string{root, filepath.Join(root, TrashDir), filepath.Join(root, CacheDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("workspace: init %s: %w", dir, apperr.FromFS(err))
		}
	}
	return nil
}

// New opens the workspace rooted at root. The directory must already exist.
func New(root string, opts ...Option) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root: %w", err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root: %w", apperr.FromFS(err))
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace: stat root: %w", apperr.FromFS(err))
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace: root is not a directory: %s: %w", abs, apperr.ErrInvalidPath)
	}

	w := &Workspace{
		root:   abs,
		style:  naming.StyleCounter,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Root returns the absolute workspace root.
func (w *Workspace) Root() string {
	return w.root
}

// CachePath returns the absolute path of name inside the cache directory.
func (w *Workspace) CachePath(name string) string {
	return filepath.Join(w.root, CacheDir, name)
}

// safePath resolves a relative path against the root and rejects any result
// that escapes it, either lexically or through a symlink.
func (w *Workspace) safePath(rel string) (string, error) {
	if rel == "" {
		return w.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) || filepath.VolumeName(cleaned) != "" {
		return "", fmt.Errorf("workspace: absolute paths not allowed: %s: %w", rel, apperr.ErrInvalidPath)
	}
	abs := filepath.Join(w.root, cleaned)
	if !w.contains(abs) {
		return "", fmt.Errorf("workspace: path escapes root: %s: %w", rel, apperr.ErrInvalidPath)
	}
	resolved, err := evalExisting(abs)
	if err != nil {
		return "", fmt.Errorf("workspace: resolve %s: %w", rel, apperr.FromFS(err))
	}
	if !w.contains(resolved) {
		return "", fmt.Errorf("workspace: path escapes root through a link: %s: %w", rel, apperr.ErrInvalidPath)
	}
	return abs, nil
}

func (w *Workspace) contains(abs string) bool {
	return abs == w.root || strings.HasPrefix(abs, w.root+string(os.PathSeparator))
}

// evalExisting resolves symlinks in the longest existing prefix of p and
// re-appends the part that does not exist yet.
func evalExisting(p string) (string, error) {
	var missing []string
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", err
		}
		missing = append([]string{filepath.Base(p)}, missing...)
		p = parent
	}
}

func isReserved(name string) bool {
	switch name {
	case MetadataFile, LegacyMetadataFile, TrashDir, CacheDir:
		return true
	}
	return false
}

// stem derives a display name from a file or directory name: the extension
// and any "____<uuid>" suffix are dropped.
func stem(name string) string {
	s := strings.TrimSuffix(name, filepath.Ext(name))
	if base, suffix, ok := strings.Cut(s, "____"); ok {
		if _, err := uuid.Parse(suffix); err == nil {
			s = base
		}
	}
	if s == "" {
		return "Untitled"
	}
	return s
}

// Package apperr defines the error kinds shared by the workspace, index and
// service layers. Callers branch on kinds with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrIDConflict       = errors.New("id conflict")
	ErrNameCollision    = errors.New("name collision")
	ErrNameExhausted    = errors.New("name exhausted")
	ErrAmbiguous        = errors.New("ambiguous id")
	ErrInvalidPath      = errors.New("invalid path")
	ErrPermissionDenied = errors.New("permission denied")
	ErrCorruptedFile    = errors.New("corrupted file")
	ErrStorageFull      = errors.New("storage full")
	ErrUnknown          = errors.New("unknown error")
)

// NotFoundError reports a note or folder id with no index entry.
type NotFoundError struct {
	Kind string
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IDConflictError reports an insert whose id is already indexed.
type IDConflictError struct {
	Kind string
	ID   uuid.UUID
}

func (e *IDConflictError) Error() string {
	return fmt.Sprintf("%s id %s already indexed", e.Kind, e.ID)
}

func (e *IDConflictError) Is(target error) bool { return target == ErrIDConflict }

// NameCollisionError is returned when no free on-disk name could be reserved
// for Name under the folder Parent.
type NameCollisionError struct {
	Name   string
	Parent uuid.UUID
	Err    error
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("no free name for %q in folder %s", e.Name, e.Parent)
}

func (e *NameCollisionError) Is(target error) bool { return target == ErrNameCollision }

func (e *NameCollisionError) Unwrap() error { return e.Err }

// Candidate is one match of an ambiguous id lookup.
type Candidate struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// AmbiguousError is returned when a shorthand matches more than one entity.
type AmbiguousError struct {
	Kind       string
	Input      string
	Candidates []Candidate
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous %s id %q: %d matches", e.Kind, e.Input, len(e.Candidates))
}

func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguous }

// FromFS classifies an error returned by the os package into one of the
// kinds above. The original error stays in the chain so its message is
// preserved for diagnostics. nil stays nil and already classified errors
// are returned unchanged.
func FromFS(err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != ErrUnknown || errors.Is(err, ErrUnknown) {
		return err
	}

	var kind error
	switch {
	case errors.Is(err, syscall.ENOSPC), errors.Is(err, syscall.EDQUOT):
		kind = ErrStorageFull
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermissionDenied
	case errors.Is(err, syscall.ENOTDIR), errors.Is(err, syscall.EINVAL),
		errors.Is(err, syscall.ENAMETOOLONG), errors.Is(err, fs.ErrInvalid):
		kind = ErrInvalidPath
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	default:
		kind = ErrUnknown
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Kind returns the sentinel matching err, or ErrUnknown.
func Kind(err error) error {
	for _, kind := range []error{
		ErrNotFound, ErrIDConflict, ErrNameCollision, ErrNameExhausted,
		ErrAmbiguous, ErrInvalidPath, ErrPermissionDenied,
		ErrCorruptedFile, ErrStorageFull,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrUnknown
}

// Package naming turns titles into filesystem-safe names and reserves a
// unique one through a caller-supplied exclusive create.
package naming

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/scrap/internal/apperr"
)

// MaxAttempts bounds the collision search of the counter style.
const MaxAttempts = 256

// Slug length limits.
const (
	NoteSlugLen   = 64
	FolderSlugLen = 32
)

// Placeholders used when a title slugifies to nothing.
const (
	Untitled       = "untitled"
	UntitledNote   = "untitled-note"
	UntitledFolder = "untitled-folder"
)

// Style selects how candidate names are built.
type Style string

const (
	// StyleCounter produces base, base_1, base_2, ...
	StyleCounter Style = "counter"
	// StyleIDSuffix produces base____<uuid> and makes a single attempt.
	StyleIDSuffix Style = "id-suffix"
)

const idSeparator = "____"

// Slugify lower-cases ASCII letters, maps spaces and underscores to '-',
// drops every other character outside [a-z0-9-], collapses runs of '-' and
// trims them from both ends.
func Slugify(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	prevDash := false
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			prevDash = false
		case r == ' ' || r == '_' || r == '-':
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// Sanitize slugifies input, substitutes placeholder for an empty result and
// truncates to maxLen bytes.
func Sanitize(input, placeholder string, maxLen int) string {
	slug := Slugify(input)
	if len(slug) > maxLen {
		slug = strings.TrimRight(slug[:maxLen], "-")
	}
	if slug == "" {
		return placeholder
	}
	return slug
}

// Attempts returns how many candidates the style will try.
func (s Style) Attempts() int {
	if s == StyleIDSuffix {
		return 1
	}
	return MaxAttempts
}

// Candidate returns the name tried on the given zero-based attempt. ext is
// appended verbatim and may be empty.
func (s Style) Candidate(base, ext string, id uuid.UUID, attempt int) string {
	switch {
	case s == StyleIDSuffix:
		return base + idSeparator + id.String() + ext
	case attempt == 0:
		return base + ext
	default:
		return fmt.Sprintf("%s_%d%s", base, attempt, ext)
	}
}

// Reserve calls create with successive candidate names until one succeeds.
// create must perform an exclusive create and report a taken name with an
// error matching fs.ErrExist; any other error aborts the search. When every
// attempt is taken the returned error matches apperr.ErrNameExhausted.
func Reserve(style Style, base, ext string, id uuid.UUID, create func(name string) error) (string, error) {
	for attempt := range style.Attempts() {
		name := style.Candidate(base, ext, id, attempt)
		err := create(name)
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %q after %d attempts", apperr.ErrNameExhausted, base+ext, style.Attempts())
}

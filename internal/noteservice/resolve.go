package noteservice

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/scrap/internal/apperr"
	"github.com/starford/scrap/internal/models"
	"github.com/starford/scrap/internal/resolver"
)

// rootAliases select the workspace root as a parent folder.
var rootAliases = []string{"", "root", "/", "."}

type target struct {
	kind string
	id   uuid.UUID
	path string
	name string
}

// resolve maps input to exactly one indexed entity of the given kinds. No
// match yields an error matching apperr.ErrNotFound; several yield an
// *apperr.AmbiguousError listing them so the caller can retry with a full id.
func (s *Service) resolve(input string, kinds ...string) (target, error) {
	input = strings.TrimSpace(input)
	var found []target
	for _, kind := range kinds {
		lookup := s.idx.NoteShorthand
		if kind == models.KindFolder {
			lookup = s.idx.FolderShorthand
		}
		for _, id := range resolver.Resolve(input, lookup) {
			if t, ok := s.lookup(kind, id); ok {
				found = append(found, t)
			}
		}
	}

	switch len(found) {
	case 0:
		return target{}, fmt.Errorf("%w: no %s matches %q", apperr.ErrNotFound, strings.Join(kinds, " or "), input)
	case 1:
		return found[0], nil
	}
	amb := &apperr.AmbiguousError{Kind: strings.Join(kinds, "/"), Input: input}
	for _, t := range found {
		amb.Candidates = append(amb.Candidates, apperr.Candidate{ID: t.id, Name: t.name})
	}
	return target{}, amb
}

// resolveParent is resolve for a folder that may also be the root.
func (s *Service) resolveParent(input string) (target, error) {
	if slices.Contains(rootAliases, strings.TrimSpace(input)) || input == s.rootID.String() {
		return target{kind: models.KindFolder, id: s.rootID, name: "root"}, nil
	}
	return s.resolve(input, models.KindFolder)
}

func (s *Service) lookup(kind string, id uuid.UUID) (target, bool) {
	if kind == models.KindFolder {
		f, err := s.idx.Folder(id)
		if err != nil {
			return target{}, false
		}
		return target{kind: kind, id: id, path: f.RelPath, name: f.DisplayName}, true
	}
	n, err := s.idx.Note(id)
	if err != nil {
		return target{}, false
	}
	return target{kind: kind, id: id, path: n.RelPath, name: n.Title}, true
}

// Match is an entity an id or shorthand resolved to.
type Match struct {
	Kind string    `json:"kind"`
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Path string    `json:"path"`
}

// Resolve maps a full id or shorthand to the single note or folder it names.
func (s *Service) Resolve(_ context.Context, input string) (Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.resolve(input, models.KindNote, models.KindFolder)
	if err != nil {
		return Match{}, err
	}
	return Match{Kind: t.kind, ID: t.id, Name: t.name, Path: t.path}, nil
}

// Package resolver turns user-supplied identifiers, either a full UUID or a
// six character shorthand, into candidate ids.
package resolver

import (
	"github.com/google/uuid"
)

// ShorthandLen is the length of an id shorthand.
const ShorthandLen = 6

// Shorthand returns the first ShorthandLen characters of the canonical form
// of id.
func Shorthand(id uuid.UUID) string {
	return id.String()[:ShorthandLen]
}

// Lookup returns the ids registered under a shorthand, in insertion order.
type Lookup func(shorthand string) []uuid.UUID

// Resolve returns the ids input may refer to. A full UUID is returned as is,
// without checking that it exists. An input of exactly ShorthandLen
// characters is looked up. Anything else yields no candidates.
func Resolve(input string, lookup Lookup) []uuid.UUID {
	if id, err := uuid.Parse(input); err == nil {
		return []uuid.UUID{id}
	}
	if len(input) != ShorthandLen {
		return nil
	}
	return lookup(input)
}

package index

import (
	"slices"

	"github.com/google/uuid"
)

// table maps a key to ids in insertion order.
type table map[string][]uuid.UUID

func (t table) add(key string, id uuid.UUID) {
	t[key] = append(t[key], id)
}

func (t table) remove(key string, id uuid.UUID) {
	ids := slices.DeleteFunc(t[key], func(c uuid.UUID) bool { return c == id })
	if len(ids) == 0 {
		delete(t, key)
		return
	}
	t[key] = ids
}

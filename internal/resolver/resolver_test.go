package resolver

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableLookup(ids ...uuid.UUID) Lookup {
	table := map[string][]uuid.UUID{}
	for _, id := range ids {
		s := Shorthand(id)
		table[s] = append(table[s], id)
	}
	return func(s string) []uuid.UUID { return table[s] }
}

func TestShorthand(t *testing.T) {
	id := uuid.MustParse("0b9f3c1e-8d2a-4c55-9a51-7f1d2e3c4b5a")
	assert.Equal(t, "0b9f3c", Shorthand(id))
}

func TestResolveFullIDBypassesShorthand(t *testing.T) {
	id := uuid.New()
	got := Resolve(id.String(), tableLookup())
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0])
}

func TestResolveShorthand(t *testing.T) {
	a := uuid.MustParse("abcdef00-0000-4000-8000-000000000001")
	b := uuid.MustParse("abcdef00-0000-4000-8000-000000000002")
	c := uuid.MustParse("123456aa-0000-4000-8000-000000000003")
	lookup := tableLookup(a, b, c)

	assert.Equal(t, []uuid.UUID{a, b}, Resolve("abcdef", lookup))
	assert.Equal(t, []uuid.UUID{c}, Resolve("123456", lookup))
	assert.Empty(t, Resolve("ffffff", lookup))
}

func TestResolveRejectsOtherInput(t *testing.T) {
	called := false
	lookup := func(string) []uuid.UUID {
		called = true
		return []uuid.UUID{uuid.New()}
	}
	for _, in := range []string{"", "abc", "abcdefg", "not-a-uuid-at-all"} {
		assert.Empty(t, Resolve(in, lookup), "input %q", in)
	}
	assert.False(t, called, "lookup must only run for shorthand-length input")
}

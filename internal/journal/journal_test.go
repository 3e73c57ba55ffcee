package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndRecent(t *testing.T) {
	db := testDB(t)
	a, b := uuid.New(), uuid.New()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.Record(Entry{Action: ActionCreate, Kind: "note", EntityID: a, Path: "a.txt", Checksum: "c1", RecordedAt: at}))
	require.NoError(t, db.Record(Entry{Action: ActionCreate, Kind: "folder", EntityID: b, Path: "b"}))
	require.NoError(t, db.Record(Entry{Action: ActionSave, Kind: "note", EntityID: a, Path: "a.txt", Checksum: "c2"}))

	got, err := db.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ActionSave, got[0].Action)
	assert.Equal(t, b, got[1].EntityID)
	assert.Equal(t, "c1", got[2].Checksum)
	assert.True(t, got[2].RecordedAt.Equal(at), "recorded_at = %v", got[2].RecordedAt)
	assert.False(t, got[1].RecordedAt.IsZero())

	limited, err := db.Recent(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestForEntity(t *testing.T) {
	db := testDB(t)
	a, b := uuid.New(), uuid.New()
	require.NoError(t, db.Record(Entry{Action: ActionCreate, Kind: "note", EntityID: a}))
	require.NoError(t, db.Record(Entry{Action: ActionCreate, Kind: "note", EntityID: b}))
	require.NoError(t, db.Record(Entry{Action: ActionTrash, Kind: "note", EntityID: a}))

	got, err := db.ForEntity(a, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ActionTrash, got[0].Action)
	assert.Equal(t, ActionCreate, got[1].Action)

	none, err := db.ForEntity(uuid.New(), 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Record(Entry{Action: ActionDelete, Kind: "folder", EntityID: uuid.New()}))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Recent(5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

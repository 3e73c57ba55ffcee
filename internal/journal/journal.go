// Package journal keeps an append-only SQLite log of workspace changes under
// the workspace cache directory. It is an audit trail only; nothing in it is
// read back into the index.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Actions recorded in the journal.
const (
	ActionCreate = "create"
	ActionSave   = "save"
	ActionTrash  = "trash"
	ActionDelete = "delete"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	action      TEXT NOT NULL,
	kind        TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	path        TEXT NOT NULL DEFAULT '',
	checksum    TEXT NOT NULL DEFAULT '',
	recorded_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_entity ON entries(entity_id);
`

// Entry is one recorded change.
type Entry struct {
	Seq        int64     `json:"seq"`
	Action     string    `json:"action"`
	Kind       string    `json:"kind"`
	EntityID   uuid.UUID `json:"entity_id"`
	Path       string    `json:"path"`
	Checksum   string    `json:"checksum,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// DB wraps the journal database.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the journal database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record appends e. A zero RecordedAt is set to the current time.
func (db *DB) Record(e Entry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	_, err := db.conn.Exec(`
		INSERT INTO entries (action, kind, entity_id, path, checksum, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Action, e.Kind, e.EntityID.String(), e.Path, e.Checksum, e.RecordedAt.UTC())
	if err != nil {
		return fmt.Errorf("journal: record %s %s: %w", e.Action, e.EntityID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (db *DB) Recent(limit int) ([]Entry, error) {
	rows, err := db.conn.Query(`
		SELECT id, action, kind, entity_id, path, checksum, recorded_at
		FROM entries ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	return scanEntries(rows)
}

// ForEntity returns up to limit entries about one note or folder, newest
// first.
func (db *DB) ForEntity(id uuid.UUID, limit int) ([]Entry, error) {
	rows, err := db.conn.Query(`
		SELECT id, action, kind, entity_id, path, checksum, recorded_at
		FROM entries WHERE entity_id = ? ORDER BY id DESC LIMIT ?
	`, id.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("journal: entity history: %w", err)
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			entityID string
		)
		if err := rows.Scan(&e.Seq, &e.Action, &e.Kind, &entityID, &e.Path, &e.Checksum, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("journal: scan entry: %w", err)
		}
		id, err := uuid.Parse(entityID)
		if err != nil {
			return nil, fmt.Errorf("journal: entry %d: %w", e.Seq, err)
		}
		e.EntityID = id
		out = append(out, e)
	}
	return out, rows.Err()
}

// Package testutil provides shared test helpers for setting up workspaces,
// journals and services.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/starford/scrap/internal/journal"
	"github.com/starford/scrap/internal/noteservice"
	"github.com/starford/scrap/internal/workspace"
)

// RootID is the root sentinel used by tests.
var RootID = uuid.MustParse("3e206920-6c75-7620-7520-6d722063656f")

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestWorkspace initialises a temporary workspace directory.
func TestWorkspace(t *testing.T, opts ...workspace.Option) *workspace.Workspace {
	t.Helper()
	dir := t.TempDir()
	if err := workspace.Init(dir); err != nil {
		t.Fatal(err)
	}
	ws, err := workspace.New(dir, append([]workspace.Option{workspace.WithLogger(Logger())}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

// TestJournal opens a journal in the cache directory of ws and closes it
// when the test ends.
func TestJournal(t *testing.T, ws *workspace.Workspace) *journal.DB {
	t.Helper()
	db, err := journal.Open(ws.CachePath("journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestService returns a synced service over a fresh workspace with a journal.
func TestService(t *testing.T, opts ...workspace.Option) *noteservice.Service {
	t.Helper()
	ws := TestWorkspace(t, opts...)
	return Reopen(t, ws.Root())
}

// Reopen builds a new service over an existing workspace directory, as a
// fresh process would, and syncs it.
func Reopen(t *testing.T, root string, opts ...workspace.Option) *noteservice.Service {
	t.Helper()
	ws, err := workspace.New(root, append([]workspace.Option{workspace.WithLogger(Logger())}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	svc := noteservice.New(ws, TestJournal(t, ws), RootID, Logger())
	if _, err := svc.Sync(t.Context()); err != nil {
		t.Fatal(err)
	}
	return svc
}

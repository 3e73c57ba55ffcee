package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/starford/scrap/internal/journal"
	"github.com/starford/scrap/internal/models"
	"github.com/starford/scrap/internal/noteservice"
	"github.com/starford/scrap/internal/testutil"
	"github.com/starford/scrap/internal/workspace"
)

// testEnv sets up a temp workspace, journal, service and router for testing.
// A non-empty authToken enables token mode.
func testEnv(t *testing.T, authToken string) (*noteservice.Service, http.Handler) {
	t.Helper()
	svc := testutil.TestService(t)
	return svc, NewRouter(svc, authToken != "", authToken, testutil.Logger())
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/notes", CreateNoteRequest{Title: "Hello", Type: "plain-text"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decodeBody[NoteDetail](t, w)
	if created.RelPath != "hello.txt" || created.FileType != "plain-text" {
		t.Errorf("created = %+v", created)
	}

	w = do(t, router, http.MethodGet, "/notes/"+created.ID.String()[:6], nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	got := decodeBody[NoteDetail](t, w)
	if got.ID != created.ID || got.Title != "Hello" {
		t.Errorf("got = %+v", got)
	}
}

func TestUpdateNote(t *testing.T) {
	_, router := testEnv(t, "")
	created := decodeBody[NoteDetail](t, do(t, router, http.MethodPost, "/notes", CreateNoteRequest{Title: "log"}))

	w := do(t, router, http.MethodPut, "/notes/"+created.ID.String(), UpdateNoteRequest{Body: "line\n"})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	updated := decodeBody[NoteDetail](t, w)
	if updated.Body != "line\n" || updated.Checksum == created.Checksum {
		t.Errorf("updated = %+v", updated)
	}
}

func TestUpdateNote_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPut, "/notes/"+uuid.NewString(), UpdateNoteRequest{Body: "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/notes/abcdef", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if body := decodeBody[errResponse](t, w); body.Code != codeNotFound {
		t.Errorf("code = %q, want %q", body.Code, codeNotFound)
	}
}

func TestCreateNote_BadJSON(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListNotes(t *testing.T) {
	_, router := testEnv(t, "")
	for _, title := range []string{"Draft", "Draft", "Other"} {
		do(t, router, http.MethodPost, "/notes", CreateNoteRequest{Title: title})
	}

	all := decodeBody[NoteListResponse](t, do(t, router, http.MethodGet, "/notes", nil))
	if all.Total != 3 {
		t.Errorf("total = %d, want 3", all.Total)
	}
	drafts := decodeBody[NoteListResponse](t, do(t, router, http.MethodGet, "/notes?title=Draft", nil))
	if drafts.Total != 2 || drafts.Notes[0].ID == drafts.Notes[1].ID {
		t.Errorf("drafts = %+v", drafts)
	}
	typed := decodeBody[NoteListResponse](t, do(t, router, http.MethodGet, "/notes?type=nothing", nil))
	if typed.Total != 0 || typed.Notes == nil {
		t.Errorf("typed = %+v", typed)
	}
}

func TestFolders(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/folders", CreateFolderRequest{DisplayName: "Projects"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create folder status = %d, body = %s", w.Code, w.Body.String())
	}
	folder := decodeBody[models.Folder](t, w)
	do(t, router, http.MethodPost, "/notes", CreateNoteRequest{Parent: folder.ID.String(), Title: "Todo"})

	view := decodeBody[noteservice.FolderView](t, do(t, router, http.MethodGet, "/folders/"+folder.ID.String(), nil))
	if view.DisplayName != "Projects" || len(view.Notes) != 1 || view.Notes[0].Title != "Todo" {
		t.Errorf("view = %+v", view)
	}

	root := decodeBody[noteservice.FolderView](t, do(t, router, http.MethodGet, "/folders/root", nil))
	if len(root.Folders) != 1 || len(root.Notes) != 0 {
		t.Errorf("root = %+v", root)
	}

	list := decodeBody[FolderListResponse](t, do(t, router, http.MethodGet, "/folders?name=Projects", nil))
	if list.Total != 1 {
		t.Errorf("list = %+v", list)
	}
}

func TestRenameFolder(t *testing.T) {
	_, router := testEnv(t, "")
	folder := decodeBody[models.Folder](t, do(t, router, http.MethodPost, "/folders", CreateFolderRequest{DisplayName: "Projects"}))

	w := do(t, router, http.MethodPut, "/folders/"+folder.ID.String(), RenameFolderRequest{DisplayName: "Work"})
	if w.Code != http.StatusOK {
		t.Fatalf("rename status = %d, body = %s", w.Code, w.Body.String())
	}
	renamed := decodeBody[models.Folder](t, w)
	if renamed.DisplayName != "Work" || renamed.RelPath != folder.RelPath {
		t.Errorf("renamed = %+v", renamed)
	}
	list := decodeBody[FolderListResponse](t, do(t, router, http.MethodGet, "/folders?name=Work", nil))
	if list.Total != 1 {
		t.Errorf("list = %+v", list)
	}

	w = do(t, router, http.MethodPut, "/folders/"+uuid.NewString(), RenameFolderRequest{DisplayName: "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown status = %d, want 404", w.Code)
	}
}

func TestDeleteFolderCascades(t *testing.T) {
	svc, router := testEnv(t, "")
	folder := decodeBody[models.Folder](t, do(t, router, http.MethodPost, "/folders", CreateFolderRequest{DisplayName: "Old"}))
	do(t, router, http.MethodPost, "/notes", CreateNoteRequest{Parent: folder.ID.String(), Title: "a"})

	w := do(t, router, http.MethodDelete, "/folders/"+folder.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body = %s", w.Code, w.Body.String())
	}
	out := decodeBody[noteservice.Outcome](t, w)
	if out.TrashPath != filepath.Join(workspace.TrashDir, "old") || len(out.Removed.Notes) != 1 {
		t.Errorf("outcome = %+v", out)
	}
	if n := len(svc.ListNotes(t.Context())); n != 0 {
		t.Errorf("%d notes left", n)
	}
}

func TestDeleteNote_KindMismatch(t *testing.T) {
	_, router := testEnv(t, "")
	folder := decodeBody[models.Folder](t, do(t, router, http.MethodPost, "/folders", CreateFolderRequest{DisplayName: "Keep"}))
	w := do(t, router, http.MethodDelete, "/notes/"+folder.ID.String(), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteNotePermanent(t *testing.T) {
	svc, router := testEnv(t, "")
	created := decodeBody[NoteDetail](t, do(t, router, http.MethodPost, "/notes", CreateNoteRequest{Title: "bye"}))
	w := do(t, router, http.MethodDelete, "/notes/"+created.ID.String()+"?permanent=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	view, err := svc.Folder(t.Context(), "root")
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Notes) != 0 {
		t.Errorf("root still lists %+v", view.Notes)
	}
}

func TestResolveAmbiguous(t *testing.T) {
	ws := testutil.TestWorkspace(t)
	for i, id := range []string{"abcdef00-0000-4000-8000-000000000001", "abcdef00-0000-4000-8000-000000000002"} {
		content := fmt.Sprintf("---\nid: %q\ntitle: \"n%d\"\n---\n", id, i)
		if err := os.WriteFile(filepath.Join(ws.Root(), fmt.Sprintf("n%d.txt", i)), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	router := NewRouter(testutil.Reopen(t, ws.Root()), false, "", testutil.Logger())

	w := do(t, router, http.MethodGet, "/resolve/abcdef", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	body := decodeBody[ambiguousResponse](t, w)
	if body.Code != codeAmbiguous || len(body.Candidates) != 2 {
		t.Errorf("candidates = %+v", body.Candidates)
	}

	w = do(t, router, http.MethodGet, "/resolve/zzzzzz", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown status = %d, want 404", w.Code)
	}
}

func TestSyncAndHistory(t *testing.T) {
	_, router := testEnv(t, "")
	created := decodeBody[NoteDetail](t, do(t, router, http.MethodPost, "/notes", CreateNoteRequest{Title: "x"}))

	w := do(t, router, http.MethodPost, "/sync", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sync status = %d", w.Code)
	}
	report := decodeBody[noteservice.SyncReport](t, w)
	if report.Notes.Inserted != 1 {
		t.Errorf("report = %+v", report)
	}

	entries := decodeBody[[]journal.Entry](t, do(t, router, http.MethodGet, "/history?id="+created.ID.String(), nil))
	if len(entries) != 1 || entries[0].Action != journal.ActionCreate {
		t.Errorf("entries = %+v", entries)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	w := do(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/folders", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scrap/internal/models"
	"github.com/starford/scrap/internal/noteservice"
)

const maxBodySize = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc    *noteservice.Service
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes, optionally filtered by exact title or type
//	@Tags			notes
//	@Produce		json
//	@Param			title	query		string	false	"Exact title"
//	@Param			type	query		string	false	"File type"
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var items []models.NoteSummary
	switch {
	case q.Get("title") != "":
		items = summaries(h.svc.NotesByTitle(r.Context(), q.Get("title")))
	case q.Get("type") != "":
		items = summaries(h.svc.NotesByType(r.Context(), q.Get("type")))
	default:
		items = h.svc.ListNotes(r.Context())
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: nonNilSlice(items), Total: len(items)})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a note by id or shorthand
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id or shorthand"
//	@Success		200	{object}	NoteDetail
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	ambiguousResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Execute(r.Context(), noteservice.OpenNote{ID: chi.URLParam(r, "id")})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create an empty note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.svc.Execute(r.Context(), noteservice.CreateNote{Parent: req.Parent, Title: req.Title, FileType: req.Type})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out.Note)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Replace the body of a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Note id or shorthand"
//	@Param			body	body		UpdateNoteRequest	true	"New body"
//	@Success		200		{object}	NoteDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.svc.Execute(r.Context(), noteservice.UpdateNote{ID: chi.URLParam(r, "id"), Body: req.Body})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Note)
}

// DeleteNote handles DELETE /api/notes/{id}. The note is moved to the trash
// unless ?permanent=true.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, models.KindNote)
}

// ListFolders handles GET /api/folders.
//
//	@Summary		List folders, optionally filtered by exact display name
//	@Tags			folders
//	@Produce		json
//	@Param			name	query		string	false	"Exact display name"
//	@Success		200		{object}	FolderListResponse
//	@Security		BearerAuth
//	@Router			/folders [get]
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	var items []models.FolderSummary
	if name := r.URL.Query().Get("name"); name != "" {
		for _, f := range h.svc.FoldersByName(r.Context(), name) {
			items = append(items, models.FolderSummary{ID: f.ID, ParentID: f.ParentID, DisplayName: f.DisplayName})
		}
	} else {
		items = h.svc.ListFolders(r.Context())
	}
	writeJSON(w, http.StatusOK, FolderListResponse{Folders: nonNilSlice(items), Total: len(items)})
}

// GetFolder handles GET /api/folders/{id}. The id "root" selects the
// workspace root.
//
//	@Summary		Get a folder with its direct children
//	@Tags			folders
//	@Produce		json
//	@Param			id	path		string	true	"Folder id, shorthand or root"
//	@Success		200	{object}	noteservice.FolderView
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders/{id} [get]
func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Folder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	view.Notes = nonNilSlice(view.Notes)
	view.Folders = nonNilSlice(view.Folders)
	writeJSON(w, http.StatusOK, view)
}

// CreateFolder handles POST /api/folders.
//
//	@Summary		Create a folder
//	@Tags			folders
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateFolderRequest	true	"Folder to create"
//	@Success		201		{object}	models.Folder
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/folders [post]
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.svc.Execute(r.Context(), noteservice.CreateFolder{Parent: req.Parent, DisplayName: req.DisplayName})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out.Folder)
}

// RenameFolder handles PUT /api/folders/{id}. Only the display name changes;
// the directory keeps its name.
//
//	@Summary		Rename a folder
//	@Tags			folders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Folder id or shorthand"
//	@Param			body	body		RenameFolderRequest	true	"New display name"
//	@Success		200		{object}	models.Folder
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	ambiguousResponse
//	@Security		BearerAuth
//	@Router			/folders/{id} [put]
func (h *Handler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	var req RenameFolderRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.svc.Execute(r.Context(), noteservice.RenameFolder{ID: chi.URLParam(r, "id"), DisplayName: req.DisplayName})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Folder)
}

// DeleteFolder handles DELETE /api/folders/{id}. The folder and everything
// below it are moved to the trash unless ?permanent=true.
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, models.KindFolder)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request, kind string) {
	permanent, _ := strconv.ParseBool(r.URL.Query().Get("permanent"))
	out, err := h.svc.Execute(r.Context(), noteservice.Remove{ID: chi.URLParam(r, "id"), Kind: kind, Permanent: permanent})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Resolve handles GET /api/resolve/{input}.
//
//	@Summary		Resolve a full id or 6-character shorthand
//	@Tags			ids
//	@Produce		json
//	@Param			input	path		string	true	"Id or shorthand"
//	@Success		200		{object}	noteservice.Match
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	ambiguousResponse
//	@Security		BearerAuth
//	@Router			/resolve/{input} [get]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Resolve(r.Context(), chi.URLParam(r, "input"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Sync handles POST /api/sync: a full rescan of the workspace.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Sync(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// History handles GET /api/history.
//
//	@Summary		Recent workspace changes, optionally for one entity
//	@Tags			history
//	@Produce		json
//	@Param			id		query		string	false	"Entity id or shorthand"
//	@Param			limit	query		int		false	"Maximum entries"
//	@Success		200		{array}		journal.Entry
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	entries, err := h.svc.History(r.Context(), q.Get("id"), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilSlice(entries))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(codeBadRequest, "invalid JSON body"))
		return false
	}
	return true
}

func summaries(notes []models.Note) []models.NoteSummary {
	out := make([]models.NoteSummary, 0, len(notes))
	for _, n := range notes {
		out = append(out, models.NoteSummary{ID: n.ID, Title: n.Title, FileType: n.FileType})
	}
	return out
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

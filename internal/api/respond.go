package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/scrap/internal/apperr"
)

// Error codes carried in error bodies.
const (
	codeBadRequest    = "bad_request"
	codeUnauthorized  = "unauthorized"
	codeAmbiguous     = "ambiguous"
	codeNotFound      = "not_found"
	codeConflict      = "conflict"
	codeInvalidPath   = "invalid_path"
	codeForbidden     = "permission_denied"
	codeCorrupted     = "corrupted_file"
	codeStorageFull   = "storage_full"
	codeInternalError = "internal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

func errorBody(code, msg string) errResponse {
	return errResponse{Error: msg, Code: code}
}

// ambiguousResponse lists the candidates of an ambiguous shorthand.
type ambiguousResponse struct {
	errResponse
	Candidates []apperr.Candidate `json:"candidates"`
}

// errorStatus maps an error kind to its status and code. Kinds whose
// message may leak host paths get a fixed message.
var errorStatus = []struct {
	kind    error
	status  int
	code    string
	message string
}{
	{apperr.ErrNotFound, http.StatusNotFound, codeNotFound, ""},
	{apperr.ErrNameCollision, http.StatusConflict, codeConflict, ""},
	{apperr.ErrNameExhausted, http.StatusConflict, codeConflict, ""},
	{apperr.ErrIDConflict, http.StatusConflict, codeConflict, ""},
	{apperr.ErrInvalidPath, http.StatusBadRequest, codeInvalidPath, ""},
	{apperr.ErrPermissionDenied, http.StatusForbidden, codeForbidden, "permission denied"},
	{apperr.ErrCorruptedFile, http.StatusUnprocessableEntity, codeCorrupted, ""},
	{apperr.ErrStorageFull, http.StatusInsufficientStorage, codeStorageFull, "storage full"},
}

// writeError maps error kinds to HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var amb *apperr.AmbiguousError
	if errors.As(err, &amb) {
		writeJSON(w, http.StatusConflict, ambiguousResponse{
			errResponse: errorBody(codeAmbiguous, err.Error()),
			Candidates:  amb.Candidates,
		})
		return
	}
	kind := apperr.Kind(err)
	for _, e := range errorStatus {
		if kind != e.kind {
			continue
		}
		msg := e.message
		if msg == "" {
			msg = err.Error()
		}
		writeJSON(w, e.status, errorBody(e.code, msg))
		return
	}
	h.logger.Error("request failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody(codeInternalError, "internal error"))
}

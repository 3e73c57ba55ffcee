package api

import (
	"github.com/starford/scrap/internal/models"
	"github.com/starford/scrap/internal/noteservice"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Parent string `json:"parent,omitempty" example:"0b9f3c"`
	Title  string `json:"title" example:"Todo" validate:"required"`
	Type   string `json:"type,omitempty" example:"plain-text"`
}

// UpdateNoteRequest is the request body for replacing a note body.
type UpdateNoteRequest struct {
	Body string `json:"body" example:"buy milk"`
}

// CreateFolderRequest is the request body for creating a folder.
type CreateFolderRequest struct {
	Parent      string `json:"parent,omitempty" example:"root"`
	DisplayName string `json:"display_name" example:"Projects" validate:"required"`
}

// RenameFolderRequest is the request body for changing a folder's display
// name.
type RenameFolderRequest struct {
	DisplayName string `json:"display_name" example:"Work" validate:"required"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.NoteSummary `json:"notes" validate:"required"`
	Total int                  `json:"total" example:"42" validate:"required"`
}

// FolderListResponse wraps folder listings.
type FolderListResponse struct {
	Folders []models.FolderSummary `json:"folders" validate:"required"`
	Total   int                    `json:"total" example:"3" validate:"required"`
}

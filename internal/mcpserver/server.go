// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes scrap workspace tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/scrap/internal/apperr"
	"github.com/starford/scrap/internal/noteservice"
)

const formatURI = "scrap://note-format"

// Server wraps the MCP server with scrap tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"scrap",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes as JSON. With a folder id, only its direct child notes."),
		mcp.WithString("folder", mcp.Description("Optional folder id or 6-character shorthand")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("list_folders",
		mcp.WithDescription("List every folder with its parent id as JSON."),
	), s.listFolders)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note: id, title, type, path and body."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id or 6-character shorthand")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create an empty note. The file name is derived from the title."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("type", mcp.Description("File type tag, e.g. plain-text or rich-text")),
		mcp.WithString("parent", mcp.Description("Parent folder id or shorthand; empty for the root")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("create_folder",
		mcp.WithDescription("Create a folder."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Folder display name")),
		mcp.WithString("parent", mcp.Description("Parent folder id or shorthand; empty for the root")),
	), s.createFolder)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace the body of a note. The front matter is kept."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id or shorthand")),
		mcp.WithString("body", mcp.Required(), mcp.Description("New body text")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("remove",
		mcp.WithDescription("Move a note or folder to the trash. Folders take everything below them."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note or folder id or shorthand")),
		mcp.WithBoolean("permanent", mcp.Description("Delete instead of moving to the trash")),
	), s.remove)

	s.mcp.AddTool(mcp.NewTool("sync",
		mcp.WithDescription("Rescan the workspace after files changed outside scrap."),
	), s.syncWorkspace)

	s.mcp.AddTool(mcp.NewTool("resolve_id",
		mcp.WithDescription("Resolve a full id or 6-character shorthand to a note or folder."),
		mcp.WithString("input", mcp.Required(), mcp.Description("Full id or shorthand")),
	), s.resolveID)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the on-disk note and folder format."),
	), s.getNoteContract)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Note Format Contract",
			mcp.WithResourceDescription("On-disk layout of scrap notes and folders."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := req.GetString("folder", "")
	if folder == "" {
		return jsonResult(s.svc.ListNotes(ctx))
	}
	view, err := s.svc.Folder(ctx, folder)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(view.Notes)
}

func (s *Server) listFolders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ListFolders(ctx))
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.Execute(ctx, noteservice.OpenNote{ID: id})
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(out.Note)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.Execute(ctx, noteservice.CreateNote{
		Parent:   req.GetString("parent", ""),
		Title:    title,
		FileType: req.GetString("type", ""),
	})
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created note %s at %s", out.Note.ID, out.Note.RelPath)), nil
}

func (s *Server) createFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.Execute(ctx, noteservice.CreateFolder{
		Parent:      req.GetString("parent", ""),
		DisplayName: name,
	})
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created folder %s at %s", out.Folder.ID, out.Folder.RelPath)), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.Execute(ctx, noteservice.UpdateNote{ID: id, Body: body})
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved note %s (%s)", out.Note.ID, out.Note.Checksum)), nil
}

func (s *Server) remove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.Execute(ctx, noteservice.Remove{ID: id, Permanent: req.GetBool("permanent", false)})
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(out)
}

func (s *Server) syncWorkspace(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.svc.Sync(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(report)
}

func (s *Server) resolveID(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("input")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := s.svc.Resolve(ctx, input)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(m)
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError reports err to the model. Ambiguous ids list their candidates so
// the model can retry with a full id.
func toolError(err error) *mcp.CallToolResult {
	var amb *apperr.AmbiguousError
	if errors.As(err, &amb) {
		var b strings.Builder
		fmt.Fprintf(&b, "%s; use one of the full ids:", err)
		for _, c := range amb.Candidates {
			fmt.Fprintf(&b, "\n%s  %s", c.ID, c.Name)
		}
		return mcp.NewToolResultError(b.String())
	}
	return mcp.NewToolResultError(err.Error())
}

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"noteful/internal/domain"
	"noteful/internal/named"
	"noteful/internal/notes"
)

// NewServer creates an MCP server with tools over notes, folders and tags
func NewServer(noteSvc *notes.Service, folderSvc, tagSvc *named.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"Noteful",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Tool: list_notes - Search and filter notes
	s.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List notes in creation order. Optionally filter by a case-insensitive search term (matched against title and content), a folder id or a tag id."),
			mcp.WithString("searchTerm",
				mcp.Description("Optional: text to look for in title or content"),
			),
			mcp.WithString("folderId",
				mcp.Description("Optional: only notes in this folder (24-character hex id)"),
			),
			mcp.WithString("tagId",
				mcp.Description("Optional: only notes carrying this tag (24-character hex id)"),
			),
		),
		handleListNotes(noteSvc),
	)

	// Tool: get_note - Get a specific note by ID
	s.AddTool(
		mcp.NewTool("get_note",
			mcp.WithDescription("Get a note by its ID with its folder and tags resolved to names."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID (24-character hex string)"),
			),
		),
		handleGetNote(noteSvc),
	)

	// Tool: create_note
	s.AddTool(
		mcp.NewTool("create_note",
			mcp.WithDescription("Create a note. Content is markdown. Use list_folders and list_tags to find ids."),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Note title"),
			),
			mcp.WithString("content",
				mcp.Description("Markdown body"),
			),
			mcp.WithString("folderId",
				mcp.Description("Optional: folder to file the note in"),
			),
			mcp.WithArray("tags",
				mcp.Description("Optional: tag ids"),
				mcp.WithStringItems(),
			),
		),
		handleCreateNote(noteSvc),
	)

	s.AddTool(
		mcp.NewTool("list_folders",
			mcp.WithDescription("List folders. Use this to map folder names to ids."),
			mcp.WithString("searchTerm", mcp.Description("Optional: text to look for in the name")),
			mcp.WithString("sort", mcp.Description("Optional: 'name' for alphabetical order, creation order otherwise")),
		),
		handleListNamed(folderSvc),
	)

	s.AddTool(
		mcp.NewTool("list_tags",
			mcp.WithDescription("List tags. Use this to map tag names to ids."),
			mcp.WithString("searchTerm", mcp.Description("Optional: text to look for in the name")),
			mcp.WithString("sort", mcp.Description("Optional: 'name' for alphabetical order, creation order otherwise")),
		),
		handleListNamed(tagSvc),
	)

	return s
}

// NoteResult represents a note in tool responses. FolderID and TagIDs are
// always set; the Folder and Tags names only by get_note.
type NoteResult struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	FolderID  string     `json:"folderId,omitempty"`
	TagIDs    []string   `json:"tagIds"`
	Folder    string     `json:"folder,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func handleListNotes(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		noteList, err := svc.List(ctx, notes.ListQuery{
			SearchTerm: req.GetString("searchTerm", ""),
			FolderID:   req.GetString("folderId", ""),
			TagID:      req.GetString("tagId", ""),
		})
		if err != nil {
			return toolError("failed to list notes", err), nil
		}

		results := make([]NoteResult, len(noteList))
		for i, n := range noteList {
			results[i] = NoteResult{
				ID:      n.ID.Hex(),
				Title:   n.Title,
				Content: n.Content,
				TagIDs:  domain.HexIDs(n.Tags),
			}
			if n.FolderID != nil {
				results[i].FolderID = n.FolderID.Hex()
			}
		}
		return jsonResult(results), nil
	}
}

func handleGetNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		note, err := svc.Get(ctx, id)
		if err != nil {
			return toolError("failed to get note", err), nil
		}

		result := NoteResult{
			ID:        note.ID.Hex(),
			Title:     note.Title,
			Content:   note.Content,
			TagIDs:    domain.HexIDs(note.Tags),
			CreatedAt: &note.CreatedAt,
			UpdatedAt: &note.UpdatedAt,
		}
		if note.FolderID != nil {
			result.FolderID = note.FolderID.Hex()
		}
		if f := note.Expanded.Folder; f != nil {
			result.Folder = f.Name
		}
		for _, t := range note.Expanded.Tags {
			result.Tags = append(result.Tags, t.Name)
		}
		return jsonResult(result), nil
	}
}

func handleCreateNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError("title is required"), nil
		}

		note, err := svc.Create(ctx, notes.CreateNoteInput{
			Title:    title,
			Content:  req.GetString("content", ""),
			FolderID: req.GetString("folderId", ""),
			Tags:     req.GetStringSlice("tags", nil),
		})
		if err != nil {
			return toolError("failed to create note", err), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("created note %s", note.ID.Hex())), nil
	}
}

func handleListNamed(svc *named.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, err := svc.List(ctx, named.ListQuery{
			SearchTerm: req.GetString("searchTerm", ""),
			Sort:       req.GetString("sort", ""),
		})
		if err != nil {
			return toolError(fmt.Sprintf("failed to list %ss", svc.Kind().Name), err), nil
		}
		return jsonResult(items), nil
	}
}

// Helper functions

// toolError reports client errors verbatim and hides everything else.
func toolError(prefix string, err error) *mcp.CallToolResult {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return mcp.NewToolResultError(verr.Message)
	case errors.Is(err, domain.ErrNotFound):
		return mcp.NewToolResultError("not found")
	default:
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", prefix, err))
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(data))
}

// Package mcptools exposes the content gate as MCP tools so agents can
// submit drafts and read verdicts.
//
// Each tool is a struct with its dependencies injected via constructor,
// a Definition() returning the mcp.Tool schema and a Handle() method.
package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"ContentGate/internal/domain"
	"ContentGate/internal/usecase"
)

// CreateTool handles the content_create MCP tool.
type CreateTool struct {
	content ContentService
}

// NewCreateTool creates a CreateTool.
func NewCreateTool(content ContentService) *CreateTool {
	return &CreateTool{content: content}
}

// Definition returns the MCP tool definition for content_create.
func (t *CreateTool) Definition() mcp.Tool {
	return mcp.NewTool("content_create",
		mcp.WithDescription("Create a content item. Items created in the review stage are verified automatically."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Working title")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Draft text")),
		mcp.WithString("content_type", mcp.Required(),
			mcp.Description("shortPost, email, blogPost, landingPage or other"),
		),
		mcp.WithString("stage", mcp.Description("idea (default), review, approved or published")),
		mcp.WithString("created_by", mcp.Description("Author identifier")),
		mcp.WithString("assigned_to", mcp.Description("Reviewer identifier")),
		mcp.WithString("notes", mcp.Description("Free-form notes")),
	)
}

// Handle processes the content_create tool call.
func (t *CreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	item, err := t.content.CreateContent(ctx, usecase.CreateContentInput{
		Title:       title,
		Body:        req.GetString("body", ""),
		ContentType: req.GetString("content_type", ""),
		Stage:       req.GetString("stage", ""),
		CreatedBy:   req.GetString("created_by", ""),
		AssignedTo:  req.GetString("assigned_to", ""),
		Notes:       optString(req, "notes"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create content: %v", err)), nil
	}
	return mcp.NewToolResultText("Content created.\n\n" + formatItem(item)), nil
}

// MoveTool handles the content_move MCP tool.
type MoveTool struct {
	content ContentService
}

// NewMoveTool creates a MoveTool.
func NewMoveTool(content ContentService) *MoveTool {
	return &MoveTool{content: content}
}

// Definition returns the MCP tool definition for content_move.
func (t *MoveTool) Definition() mcp.Tool {
	return mcp.NewTool("content_move",
		mcp.WithDescription("Move a content item to another stage. Entering review starts a verification."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Content item ID")),
		mcp.WithString("stage", mcp.Required(), mcp.Description("idea, review, approved or published")),
		mcp.WithString("notes", mcp.Description("Replace the item's notes")),
		mcp.WithString("published_url", mcp.Description("Public URL, kept when moving to published")),
	)
}

// Handle processes the content_move tool call.
func (t *MoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	item, err := t.content.MoveStage(ctx, usecase.MoveStageInput{
		ID:           id,
		Stage:        req.GetString("stage", ""),
		Notes:        optString(req, "notes"),
		PublishedURL: optString(req, "published_url"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to move content: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Moved to %s.\n\n%s", item.Stage, formatItem(item))), nil
}

// EditTool handles the content_edit MCP tool.
type EditTool struct {
	content ContentService
}

// NewEditTool creates an EditTool.
func NewEditTool(content ContentService) *EditTool {
	return &EditTool{content: content}
}

// Definition returns the MCP tool definition for content_edit.
func (t *EditTool) Definition() mcp.Tool {
	return mcp.NewTool("content_edit",
		mcp.WithDescription(
			"Edit a content item. Omitted fields are unchanged. Changing title, body or type of an item in review re-runs verification.",
		),
		mcp.WithString("id", mcp.Required(), mcp.Description("Content item ID")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("body", mcp.Description("New body")),
		mcp.WithString("content_type", mcp.Description("New content type")),
		mcp.WithString("notes", mcp.Description("New notes")),
	)
}

// Handle processes the content_edit tool call.
func (t *EditTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	item, err := t.content.EditContent(ctx, usecase.EditContentInput{
		ID:          id,
		Title:       optString(req, "title"),
		Body:        optString(req, "body"),
		ContentType: optString(req, "content_type"),
		Notes:       optString(req, "notes"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to edit content: %v", err)), nil
	}
	return mcp.NewToolResultText("Content updated.\n\n" + formatItem(item)), nil
}

// DeleteTool handles the content_delete MCP tool.
type DeleteTool struct {
	content ContentService
}

// NewDeleteTool creates a DeleteTool.
func NewDeleteTool(content ContentService) *DeleteTool {
	return &DeleteTool{content: content}
}

// Definition returns the MCP tool definition for content_delete.
func (t *DeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("content_delete",
		mcp.WithDescription("Delete a content item. Its verification history is kept."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Content item ID")),
	)
}

// Handle processes the content_delete tool call.
func (t *DeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if err := t.content.DeleteContent(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete content: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Content %s deleted.", id)), nil
}

// optString returns nil when key is absent so edits can tell "unset" from "".
func optString(req mcp.CallToolRequest, key string) *string {
	v, ok := req.GetArguments()[key].(string)
	if !ok {
		return nil
	}
	return &v
}

func formatItem(item domain.ContentItem) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("- **ID**: %s\n", item.ID))
	sb.WriteString(fmt.Sprintf("- **Title**: %s\n", item.Title))
	sb.WriteString(fmt.Sprintf("- **Type**: %s\n", item.ContentType))
	sb.WriteString(fmt.Sprintf("- **Stage**: %s\n", item.Stage))
	if item.VerificationStatus != nil {
		sb.WriteString(fmt.Sprintf("- **Verification**: %s", *item.VerificationStatus))
		if item.VerificationScore != nil {
			sb.WriteString(fmt.Sprintf(" (%d/100)", *item.VerificationScore))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"ContentGate/internal/domain"
	"ContentGate/internal/usecase"
)

// Version is reported to MCP clients during initialization.
const Version = "0.1.0"

// ContentService is the lifecycle side the tools drive.
type ContentService interface {
	CreateContent(ctx context.Context, in usecase.CreateContentInput) (domain.ContentItem, error)
	MoveStage(ctx context.Context, in usecase.MoveStageInput) (domain.ContentItem, error)
	EditContent(ctx context.Context, in usecase.EditContentInput) (domain.ContentItem, error)
	DeleteContent(ctx context.Context, id string) error
}

// ReviewService is the verification side the tools read and override.
type ReviewService interface {
	LatestVerification(ctx context.Context, contentID string) (domain.VerificationRecord, error)
	VerificationHistory(ctx context.Context, authorID string) ([]domain.VerificationRecord, error)
	VerificationStats(ctx context.Context, authorID string) (domain.VerificationStats, error)
	Override(ctx context.Context, contentID, overriddenBy string) (domain.VerificationRecord, error)
}

// NewServer creates an MCP server with every content gate tool registered.
func NewServer(content ContentService, reviews ReviewService) *server.MCPServer {
	s := server.NewMCPServer(
		"contentgate",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(
			"ContentGate verifies marketing drafts when they enter review. "+
				"Create or move items with content_* tools, then read verdicts with verification_* tools. "+
				"Verification runs in the background: poll verification_latest after a move or edit.",
		),
	)

	createTool := NewCreateTool(content)
	s.AddTool(createTool.Definition(), createTool.Handle)

	moveTool := NewMoveTool(content)
	s.AddTool(moveTool.Definition(), moveTool.Handle)

	editTool := NewEditTool(content)
	s.AddTool(editTool.Definition(), editTool.Handle)

	deleteTool := NewDeleteTool(content)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	latestTool := NewLatestTool(reviews)
	s.AddTool(latestTool.Definition(), latestTool.Handle)

	historyTool := NewHistoryTool(reviews)
	s.AddTool(historyTool.Definition(), historyTool.Handle)

	statsTool := NewStatsTool(reviews)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	overrideTool := NewOverrideTool(reviews)
	s.AddTool(overrideTool.Definition(), overrideTool.Handle)

	return s
}

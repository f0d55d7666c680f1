package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"ContentGate/internal/domain"
)

const defaultHistoryLimit = 20

// LatestTool handles the verification_latest MCP tool.
type LatestTool struct {
	reviews ReviewService
}

// NewLatestTool creates a LatestTool.
func NewLatestTool(reviews ReviewService) *LatestTool {
	return &LatestTool{reviews: reviews}
}

// Definition returns the MCP tool definition for verification_latest.
func (t *LatestTool) Definition() mcp.Tool {
	return mcp.NewTool("verification_latest",
		mcp.WithDescription("Show the most recent verification record of a content item, with per-check findings."),
		mcp.WithString("content_id", mcp.Required(), mcp.Description("Content item ID")),
	)
}

// Handle processes the verification_latest tool call.
func (t *LatestTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("content_id", "")
	if id == "" {
		return mcp.NewToolResultError("'content_id' is required"), nil
	}
	record, err := t.reviews.LatestVerification(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load verification: %v", err)), nil
	}
	return mcp.NewToolResultText(formatRecord(record)), nil
}

// HistoryTool handles the verification_history MCP tool.
type HistoryTool struct {
	reviews ReviewService
}

// NewHistoryTool creates a HistoryTool.
func NewHistoryTool(reviews ReviewService) *HistoryTool {
	return &HistoryTool{reviews: reviews}
}

// Definition returns the MCP tool definition for verification_history.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("verification_history",
		mcp.WithDescription("List verification records, newest first."),
		mcp.WithString("author", mcp.Description("Only records of this author")),
		mcp.WithNumber("limit", mcp.Description("Maximum records to show (default: 20)")),
	)
}

// Handle processes the verification_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := t.reviews.VerificationHistory(ctx, req.GetString("author", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list verifications: %v", err)), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText("No verification records yet."), nil
	}

	limit := intArg(req, "limit", defaultHistoryLimit)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Verification History (%d)\n\n", len(records)))
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("- %s `%s` %s %d/100", r.VerifiedAt.Format("2006-01-02 15:04"), r.ContentID, r.Status(), r.OverallScore))
		if len(r.IssueReasons) > 0 {
			sb.WriteString(": " + joinReasons(r.IssueReasons))
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// StatsTool handles the verification_stats MCP tool.
type StatsTool struct {
	reviews ReviewService
}

// NewStatsTool creates a StatsTool.
func NewStatsTool(reviews ReviewService) *StatsTool {
	return &StatsTool{reviews: reviews}
}

// Definition returns the MCP tool definition for verification_stats.
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("verification_stats",
		mcp.WithDescription("Show pass rate, common issues, tone drift and the weekly trend."),
		mcp.WithString("author", mcp.Description("Only records of this author")),
	)
}

// Handle processes the verification_stats tool call.
func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := t.reviews.VerificationStats(ctx, req.GetString("author", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get stats: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString("## Verification Statistics\n\n")
	sb.WriteString(fmt.Sprintf("- **Verifications**: %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("- **Pass rate**: %d%%\n", stats.PassRate))
	sb.WriteString(fmt.Sprintf("- **Tone drift**: %.1f\n", stats.ToneDrift))
	if len(stats.CommonIssues) > 0 {
		parts := make([]string, 0, len(stats.CommonIssues))
		for _, issue := range stats.CommonIssues {
			parts = append(parts, fmt.Sprintf("%s (%d)", issue.Reason, issue.Count))
		}
		sb.WriteString("- **Common issues**: " + strings.Join(parts, ", ") + "\n")
	}
	sb.WriteString("\n### Weekly trend\n\n")
	for _, week := range stats.WeeklyTrend {
		sb.WriteString(fmt.Sprintf("- %s: %d/%d passed (%d%%)\n",
			week.WeekStart.Format("2006-01-02"), week.Passed, week.Total, week.PassRate))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// OverrideTool handles the verification_override MCP tool.
type OverrideTool struct {
	reviews ReviewService
}

// NewOverrideTool creates an OverrideTool.
func NewOverrideTool(reviews ReviewService) *OverrideTool {
	return &OverrideTool{reviews: reviews}
}

// Definition returns the MCP tool definition for verification_override.
func (t *OverrideTool) Definition() mcp.Tool {
	return mcp.NewTool("verification_override",
		mcp.WithDescription("Accept the latest verification of an item despite its findings. The findings are kept."),
		mcp.WithString("content_id", mcp.Required(), mcp.Description("Content item ID")),
		mcp.WithString("overridden_by", mcp.Required(), mcp.Description("Who accepts the content")),
	)
}

// Handle processes the verification_override tool call.
func (t *OverrideTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("content_id", "")
	if id == "" {
		return mcp.NewToolResultError("'content_id' is required"), nil
	}
	record, err := t.reviews.Override(ctx, id, req.GetString("overridden_by", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to override: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Verification overridden by %s.\n\n%s", *record.OverriddenBy, formatRecord(record))), nil
}

func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func joinReasons(reasons []domain.IssueReason) string {
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ", ")
}

func formatRecord(r domain.VerificationRecord) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Verification of %s (run %d)\n\n", r.ContentID, r.Run))
	sb.WriteString(fmt.Sprintf("- **Status**: %s\n", r.Status()))
	sb.WriteString(fmt.Sprintf("- **Score**: %d/100\n", r.OverallScore))
	if len(r.IssueReasons) > 0 {
		sb.WriteString("- **Issues**: " + joinReasons(r.IssueReasons) + "\n")
	}

	c := r.Checks
	sb.WriteString(fmt.Sprintf("- **Characters**: %d/%d %s\n", c.CharacterCount.Count, c.CharacterCount.Limit, mark(c.CharacterCount.Passed)))
	sb.WriteString(fmt.Sprintf("- **Links**: %d checked, %d broken %s\n", len(c.Links.URLs), len(c.Links.Broken), mark(c.Links.Passed)))
	for _, u := range c.Links.Broken {
		sb.WriteString(fmt.Sprintf("  - broken: %s\n", u))
	}
	sb.WriteString(fmt.Sprintf("- **Tone**: %d/100 %s\n", c.Tone.Score, mark(c.Tone.Passed)))
	sb.WriteString(fmt.Sprintf("- **Formatting**: %s\n", mark(c.Formatting.Passed)))
	for _, issue := range c.Formatting.Issues {
		sb.WriteString(fmt.Sprintf("  - %s\n", issue))
	}

	warnings := make([]string, 0)
	warnings = append(warnings, c.CharacterCount.Warnings...)
	warnings = append(warnings, c.Links.Warnings...)
	warnings = append(warnings, c.Tone.Warnings...)
	warnings = append(warnings, c.Formatting.Warnings...)
	if len(warnings) > 0 {
		sb.WriteString("\n### Warnings\n\n")
		for _, w := range warnings {
			sb.WriteString("- " + w + "\n")
		}
	}
	return sb.String()
}

func mark(passed bool) string {
	if passed {
		return "✅"
	}
	return "❌"
}

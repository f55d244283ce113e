package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/recertlabs/recert/internal/assessment"
	"github.com/recertlabs/recert/internal/store"
)

// AssessmentScoreTool handles the assessment_score MCP tool: the read-only
// aggregation consumed by dashboard and reporting collaborators.
type AssessmentScoreTool struct {
	store  *store.Store
	engine *assessment.Engine
}

// NewAssessmentScoreTool creates the tool with its dependencies.
func NewAssessmentScoreTool(st *store.Store, engine *assessment.Engine) *AssessmentScoreTool {
	return &AssessmentScoreTool{store: st, engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *AssessmentScoreTool) Definition() mcp.Tool {
	return mcp.NewTool("assessment_score",
		mcp.WithDescription(
			"Compute the current compliance score for an assessment: "+
				"per-category rollups, overall percentage, classified gap "+
				"list, and the certification-readiness verdict.",
		),
		mcp.WithString("assessment_id",
			mcp.Required(),
			mcp.Description("The assessment to score"),
		),
	)
}

// Handle processes the assessment_score tool call.
func (t *AssessmentScoreTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("assessment_id", "")
	if strings.TrimSpace(id) == "" {
		return mcp.NewToolResultError("'assessment_id' is required"), nil
	}

	a, err := t.store.Load(id)
	if err == store.ErrNotFound {
		return mcp.NewToolResultError(fmt.Sprintf("assessment %q not found", id)), nil
	}
	if err != nil {
		return nil, err
	}

	res, err := t.engine.Aggregate(a)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"assessment_id": a.ID,
		"state":         a.State,
		"score":         res,
		"review_flags":  a.ReviewFlags,
	})
}

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/recertlabs/recert/internal/store"
)

// AssessmentStatusTool handles the assessment_status MCP tool. Without an
// assessment_id it lists all assessments; with one it returns the full
// record including answers, the active set, and review flags.
type AssessmentStatusTool struct {
	store *store.Store
}

// NewAssessmentStatusTool creates the tool with its store dependency.
func NewAssessmentStatusTool(st *store.Store) *AssessmentStatusTool {
	return &AssessmentStatusTool{store: st}
}

// Definition returns the MCP tool definition for registration.
func (t *AssessmentStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("assessment_status",
		mcp.WithDescription(
			"Show assessment status. With no assessment_id, lists all "+
				"assessments. With one, returns the full record: state, "+
				"intake, answers (including orphaned ones), active question "+
				"set, and review flags.",
		),
		mcp.WithString("assessment_id",
			mcp.Description("The assessment to inspect; omit to list all"),
		),
	)
}

// Handle processes the assessment_status tool call.
func (t *AssessmentStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("assessment_id", "")
	if strings.TrimSpace(id) == "" {
		summaries, err := t.store.List()
		if err != nil {
			return nil, err
		}
		return jsonResult(map[string]any{"assessments": summaries})
	}

	a, err := t.store.Load(id)
	if err == store.ErrNotFound {
		return mcp.NewToolResultError(fmt.Sprintf("assessment %q not found", id)), nil
	}
	if err != nil {
		return nil, err
	}

	var answered, orphaned int
	for _, ans := range a.Answers {
		if ans.Orphaned {
			orphaned++
		} else {
			answered++
		}
	}

	return jsonResult(map[string]any{
		"assessment": a,
		"progress": map[string]any{
			"active_questions": len(a.ActiveIDs),
			"answered":         answered,
			"orphaned":         orphaned,
		},
	})
}

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/recertlabs/recert/internal/assessment"
	"github.com/recertlabs/recert/internal/store"
)

// AssessmentTransitionTool handles the assessment_transition MCP tool:
// lifecycle moves through draft → in_progress → under_review → completed,
// plus explicit reopen. Completion is guarded by unresolved critical gaps
// unless a reviewer override with justification is supplied.
type AssessmentTransitionTool struct {
	store  *store.Store
	engine *assessment.Engine
}

// NewAssessmentTransitionTool creates the tool with its dependencies.
func NewAssessmentTransitionTool(st *store.Store, engine *assessment.Engine) *AssessmentTransitionTool {
	return &AssessmentTransitionTool{store: st, engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *AssessmentTransitionTool) Definition() mcp.Tool {
	return mcp.NewTool("assessment_transition",
		mcp.WithDescription(
			"Move an assessment through its lifecycle. Valid transitions: "+
				"draft→in_progress, in_progress→under_review (submit, freezes "+
				"the active set against intake changes), under_review→completed "+
				"(requires zero critical gaps or a justified override), and "+
				"under_review/completed→in_progress (reopen). Anything else is "+
				"rejected.",
		),
		mcp.WithString("assessment_id",
			mcp.Required(),
			mcp.Description("The assessment to transition"),
		),
		mcp.WithString("target_state",
			mcp.Required(),
			mcp.Description("Target lifecycle state"),
			mcp.Enum("in_progress", "under_review", "completed"),
		),
		mcp.WithBoolean("override",
			mcp.Description("Reviewer override: complete despite unresolved critical gaps"),
		),
		mcp.WithString("justification",
			mcp.Description("Required with override: why completion is acceptable"),
		),
	)
}

// Handle processes the assessment_transition tool call.
func (t *AssessmentTransitionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target := assessment.State(req.GetString("target_state", ""))
	override := req.GetBool("override", false)
	justification := req.GetString("justification", "")

	var state assessment.State
	var flags []assessment.ReviewFlag
	result, err := loadForUpdate(t.store, req.GetString("assessment_id", ""), func(a *assessment.Assessment) (*mcp.CallToolResult, error) {
		if err := t.engine.Transition(a, target, override, justification); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		state = a.State
		flags = a.ReviewFlags
		return nil, nil
	})
	if result != nil || err != nil {
		return result, err
	}

	return jsonResult(map[string]any{
		"state":        state,
		"review_flags": flags,
	})
}

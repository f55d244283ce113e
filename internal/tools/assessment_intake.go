package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/recertlabs/recert/internal/assessment"
	"github.com/recertlabs/recert/internal/selection"
	"github.com/recertlabs/recert/internal/store"
)

// AssessmentIntakeTool handles the assessment_intake MCP tool. It replaces
// the intake snapshot mid-assessment and reselects the active question set.
// After submission the active set is frozen: the edit is stored and flagged
// for review instead.
type AssessmentIntakeTool struct {
	store  *store.Store
	engine *assessment.Engine
}

// NewAssessmentIntakeTool creates the tool with its dependencies.
func NewAssessmentIntakeTool(st *store.Store, engine *assessment.Engine) *AssessmentIntakeTool {
	return &AssessmentIntakeTool{store: st, engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *AssessmentIntakeTool) Definition() mcp.Tool {
	return mcp.NewTool("assessment_intake",
		mcp.WithDescription(
			"Update an assessment's intake facts. Before submission this "+
				"reselects the active question set; answers whose questions "+
				"leave scope are retained as orphaned, and restored questions "+
				"rejoin scoring with their recorded answers. After submission "+
				"the change is recorded as a review flag instead.",
		),
		mcp.WithString("assessment_id",
			mcp.Required(),
			mcp.Description("The assessment to update"),
		),
		mcp.WithString("equipment_categories", mcp.Description(equipmentDesc)),
		mcp.WithString("processing_activities", mcp.Description(activityDesc)),
		mcp.WithString("focus_materials", mcp.Description(materialDesc)),
		mcp.WithBoolean("data_bearing_devices",
			mcp.Description("Whether the facility receives data-bearing devices"),
		),
		mcp.WithBoolean("international_shipments",
			mcp.Description("Whether equipment or materials ship internationally"),
		),
		mcp.WithBoolean("downstream_brokers",
			mcp.Description("Whether downstream vendors or brokers are used"),
		),
	)
}

// Handle processes the assessment_intake tool call.
func (t *AssessmentIntakeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fact := intakeFromRequest(req)

	var res selection.ReselectResult
	var state assessment.State
	result, err := loadForUpdate(t.store, req.GetString("assessment_id", ""), func(a *assessment.Assessment) (*mcp.CallToolResult, error) {
		r, err := t.engine.UpdateIntake(a, fact)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res = r
		state = a.State
		return nil, nil
	})
	if result != nil || err != nil {
		return result, err
	}

	return jsonResult(map[string]any{
		"state":          state,
		"active_ids":     res.ActiveIDs,
		"newly_orphaned": res.NewlyOrphaned,
		"newly_restored": res.NewlyRestored,
		"frozen":         state.Frozen(),
	})
}

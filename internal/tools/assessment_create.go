package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/recertlabs/recert/internal/assessment"
	"github.com/recertlabs/recert/internal/store"
)

// AssessmentCreateTool handles the assessment_create MCP tool.
// It builds a draft assessment from an intake snapshot, resolves the
// applicable requirements, and derives the initial active question set.
type AssessmentCreateTool struct {
	store  *store.Store
	engine *assessment.Engine
}

// NewAssessmentCreateTool creates the tool with its dependencies.
func NewAssessmentCreateTool(st *store.Store, engine *assessment.Engine) *AssessmentCreateTool {
	return &AssessmentCreateTool{store: st, engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *AssessmentCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("assessment_create",
		mcp.WithDescription(
			"Create a new compliance assessment from a facility intake. "+
				"Resolves which Core Requirements and Appendices apply and "+
				"selects the initial active question set.",
		),
		mcp.WithString("facility_name",
			mcp.Required(),
			mcp.Description("Name of the facility being assessed"),
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

// Handle processes the assessment_create tool call.
func (t *AssessmentCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	facility := req.GetString("facility_name", "")
	fact := intakeFromRequest(req)

	a, err := t.engine.Create(facility, fact)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.store.WithLock(a.ID, func() error { return t.store.Save(a) }); err != nil {
		return nil, err
	}

	return jsonResult(map[string]any{
		"assessment_id":   a.ID,
		"state":           a.State,
		"catalog_version": a.CatalogVersion,
		"active_ids":      a.ActiveIDs,
		"review_flags":    a.ReviewFlags,
	})
}

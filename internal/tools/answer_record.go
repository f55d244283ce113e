package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/recertlabs/recert/internal/assessment"
	"github.com/recertlabs/recert/internal/store"
)

// AnswerRecordTool handles the answer_record MCP tool. It validates and
// records one answer, derives its compliance and score, and refreshes the
// active question set (answers can switch dependent questions on or off).
type AnswerRecordTool struct {
	store  *store.Store
	engine *assessment.Engine
	// saved is called after a successful save; the server wires a debounced
	// score recompute behind it.
	saved func(assessmentID string)
}

// NewAnswerRecordTool creates the tool with its dependencies. saved may be
// nil.
func NewAnswerRecordTool(st *store.Store, engine *assessment.Engine, saved func(assessmentID string)) *AnswerRecordTool {
	return &AnswerRecordTool{store: st, engine: engine, saved: saved}
}

// Definition returns the MCP tool definition for registration.
func (t *AnswerRecordTool) Definition() mcp.Tool {
	return mcp.NewTool("answer_record",
		mcp.WithDescription(
			"Record or update one answer on an assessment. The compliance "+
				"level and weighted score are derived, never user-entered. "+
				"The first answer moves a draft assessment to in_progress.",
		),
		mcp.WithString("assessment_id",
			mcp.Required(),
			mcp.Description("The assessment to answer"),
		),
		mcp.WithString("question_id",
			mcp.Required(),
			mcp.Description("The question being answered, e.g. CR7-01"),
		),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("Answer value: yes (fully compliant), partial, no, or na (not applicable)"),
			mcp.Enum("yes", "partial", "no", "na"),
		),
		mcp.WithString("notes",
			mcp.Description("Free-text notes attached to the answer"),
		),
		mcp.WithString("evidence_refs",
			mcp.Description("Comma-separated evidence references (document ids, file paths)"),
		),
	)
}

// Handle processes the answer_record tool call.
func (t *AnswerRecordTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	assessmentID := req.GetString("assessment_id", "")
	questionID := req.GetString("question_id", "")
	value := req.GetString("value", "")
	notes := req.GetString("notes", "")
	evidence := splitList(req.GetString("evidence_refs", ""))

	var ans *assessment.Answer
	var state assessment.State
	var activeIDs []string
	result, err := loadForUpdate(t.store, assessmentID, func(a *assessment.Assessment) (*mcp.CallToolResult, error) {
		recorded, err := t.engine.RecordAnswer(a, questionID, value, notes, evidence)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ans = recorded
		state = a.State
		activeIDs = a.ActiveIDs
		return nil, nil
	})
	if result != nil || err != nil {
		return result, err
	}

	if t.saved != nil {
		t.saved(assessmentID)
	}

	return jsonResult(map[string]any{
		"answer":     ans,
		"state":      state,
		"active_ids": activeIDs,
	})
}

// Package tools implements the MCP tool handlers exposing the compliance
// engine to assessment UI/API collaborators.
//
// Each tool is a struct receiving its dependencies (store, engine) at
// construction and exposing Definition/Handle. User-facing input problems
// come back as tool errors; internal failures are returned as Go errors.
package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/recertlabs/recert/internal/assessment"
	"github.com/recertlabs/recert/internal/intake"
	"github.com/recertlabs/recert/internal/store"
)

// jsonResult marshals v as the tool's text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// splitList parses a comma-separated enum list parameter.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// intakeFromRequest reads the shared intake parameters.
func intakeFromRequest(req mcp.CallToolRequest) intake.Fact {
	var fact intake.Fact
	for _, v := range splitList(req.GetString("equipment_categories", "")) {
		fact.EquipmentCategories = append(fact.EquipmentCategories, intake.EquipmentCategory(v))
	}
	for _, v := range splitList(req.GetString("processing_activities", "")) {
		fact.ProcessingActivities = append(fact.ProcessingActivities, intake.ProcessingActivity(v))
	}
	for _, v := range splitList(req.GetString("focus_materials", "")) {
		fact.FocusMaterials = append(fact.FocusMaterials, intake.FocusMaterial(v))
	}
	fact.DataBearingDevices = req.GetBool("data_bearing_devices", false)
	fact.InternationalShipments = req.GetBool("international_shipments", false)
	fact.DownstreamBrokers = req.GetBool("downstream_brokers", false)
	return fact
}

// loadForUpdate loads an assessment, runs fn under the per-assessment write
// lock, and saves the result. fn returning a non-nil tool result
// short-circuits without saving (validation failures).
func loadForUpdate(st *store.Store, id string, fn func(a *assessment.Assessment) (*mcp.CallToolResult, error)) (*mcp.CallToolResult, error) {
	if strings.TrimSpace(id) == "" {
		return mcp.NewToolResultError("'assessment_id' is required"), nil
	}

	var result *mcp.CallToolResult
	err := st.WithLock(id, func() error {
		a, err := st.Load(id)
		if err == store.ErrNotFound {
			result = mcp.NewToolResultError(fmt.Sprintf("assessment %q not found", id))
			return nil
		}
		if err != nil {
			return err
		}

		r, err := fn(a)
		if err != nil {
			return err
		}
		if r != nil {
			result = r
			return nil
		}
		return st.Save(a)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// intakeParamDescriptions documents the shared intake parameters once.
const (
	equipmentDesc = "Comma-separated equipment categories processed: it_assets, mobile_devices, storage_media, displays, components, appliances"
	activityDesc  = "Comma-separated processing activities: resale, refurbishment, materials_recovery, data_sanitization, brokering, dismantling"
	materialDesc  = "Comma-separated focus materials present: circuit_boards, batteries, mercury_devices, crt_glass, toner_cartridges"
)

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/recertlabs/recert/internal/catalog"
)

// CatalogCoverageTool handles the catalog_coverage MCP tool: the operator
// view of the loaded standard version: per-requirement question counts and
// the evidence-required question list.
type CatalogCoverageTool struct {
	cat *catalog.Catalog
}

// NewCatalogCoverageTool creates the tool bound to the loaded catalog.
func NewCatalogCoverageTool(cat *catalog.Catalog) *CatalogCoverageTool {
	return &CatalogCoverageTool{cat: cat}
}

// Definition returns the MCP tool definition for registration.
func (t *CatalogCoverageTool) Definition() mcp.Tool {
	return mcp.NewTool("catalog_coverage",
		mcp.WithDescription(
			"Report question coverage for the loaded standard version: "+
				"question counts per Core Requirement and Appendix, plus the "+
				"questions that require evidence.",
		),
	)
}

// Handle processes the catalog_coverage tool call.
func (t *CatalogCoverageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.cat.Coverage())
}

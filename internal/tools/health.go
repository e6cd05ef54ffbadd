package tools

import (
	"context"

	"github.com/MissionSquad/mcp-trello/internal/diagnose"
	"github.com/mark3labs/mcp-go/mcp"
)

// HealthTool handles the get_health MCP tool.
type HealthTool struct {
	engine *diagnose.Engine
}

// NewHealthTool creates a HealthTool.
func NewHealthTool(engine *diagnose.Engine) *HealthTool {
	return &HealthTool{engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *HealthTool) Definition() mcp.Tool {
	return newTool("get_health",
		mcp.WithDescription(
			"Basic health check: one authenticated round-trip to confirm the "+
				"credentials work and the service is reachable, with latency.",
		),
	)
}

// Handle processes the get_health tool call.
func (t *HealthTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.engine.BasicHealth(ctx, credentials(req))), nil
}

// HealthDetailedTool handles the get_health_detailed MCP tool.
type HealthDetailedTool struct {
	engine *diagnose.Engine
}

// NewHealthDetailedTool creates a HealthDetailedTool.
func NewHealthDetailedTool(engine *diagnose.Engine) *HealthDetailedTool {
	return &HealthDetailedTool{engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *HealthDetailedTool) Definition() mcp.Tool {
	return newTool("get_health_detailed",
		mcp.WithDescription(
			"Detailed health check: the basic connectivity check plus independent "+
				"probes of board reachability, list/card counts, the checklist "+
				"subsystem, and rate-limit headroom. A failing probe is reported as "+
				"its own finding and never hides the others.",
		),
	)
}

// Handle processes the get_health_detailed tool call.
func (t *HealthDetailedTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.engine.DetailedHealth(ctx, credentials(req))), nil
}

// HealthMetadataTool handles the get_health_metadata MCP tool.
type HealthMetadataTool struct {
	engine *diagnose.Engine
}

// NewHealthMetadataTool creates a HealthMetadataTool.
func NewHealthMetadataTool(engine *diagnose.Engine) *HealthMetadataTool {
	return &HealthMetadataTool{engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *HealthMetadataTool) Definition() mcp.Tool {
	return newTool("get_health_metadata",
		mcp.WithDescription(
			"Metadata consistency check: verifies session state against the remote "+
				"service (stale active board/workspace) and referential integrity on "+
				"the active board (card->list, checklist->card, label->board). "+
				"Each violated invariant is one finding with an entity reference.",
		),
	)
}

// Handle processes the get_health_metadata tool call.
func (t *HealthMetadataTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.engine.MetadataHealth(ctx, credentials(req))), nil
}

// HealthPerformanceTool handles the get_health_performance MCP tool.
type HealthPerformanceTool struct {
	engine *diagnose.Engine
}

// NewHealthPerformanceTool creates a HealthPerformanceTool.
func NewHealthPerformanceTool(engine *diagnose.Engine) *HealthPerformanceTool {
	return &HealthPerformanceTool{engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *HealthPerformanceTool) Definition() mcp.Tool {
	return newTool("get_health_performance",
		mcp.WithDescription(
			"Performance check: measures round-trip latency for representative "+
				"read operations and reports min/median/max per class with a coarse "+
				"acceptable/slow verdict. Issues no writes.",
		),
	)
}

// Handle processes the get_health_performance tool call.
func (t *HealthPerformanceTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.engine.PerformanceHealth(ctx, credentials(req))), nil
}

// RepairTool handles the perform_repair MCP tool.
type RepairTool struct {
	repairer *diagnose.Repairer
}

// NewRepairTool creates a RepairTool.
func NewRepairTool(repairer *diagnose.Repairer) *RepairTool {
	return &RepairTool{repairer: repairer}
}

// Definition returns the MCP tool definition for registration.
func (t *RepairTool) Definition() mcp.Tool {
	return newTool("perform_repair",
		mcp.WithDescription(
			"Run the detailed and metadata checks, then apply corrective actions "+
				"for repairable findings (limited to this server's own session "+
				"state, e.g. clearing a stale active board) and re-check them. "+
				"Never deletes or mutates anything on the remote service.",
		),
	)
}

// Handle processes the perform_repair tool call.
func (t *RepairTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.repairer.PerformRepair(ctx, credentials(req))), nil
}

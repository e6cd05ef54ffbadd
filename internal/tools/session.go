package tools

import (
	"context"
	"fmt"

	"github.com/MissionSquad/mcp-trello/internal/session"
	"github.com/MissionSquad/mcp-trello/internal/trello"
	"github.com/mark3labs/mcp-go/mcp"
)

// SetActiveBoardTool handles the set_active_board MCP tool.
type SetActiveBoardTool struct {
	sess *session.Manager
}

// NewSetActiveBoardTool creates a SetActiveBoardTool.
func NewSetActiveBoardTool(sess *session.Manager) *SetActiveBoardTool {
	return &SetActiveBoardTool{sess: sess}
}

// Definition returns the MCP tool definition for registration.
func (t *SetActiveBoardTool) Definition() mcp.Tool {
	return newTool("set_active_board",
		mcp.WithDescription(
			"Set the active board. Operations that omit a boardId will use it as "+
				"their default scope. The board must be reachable with the supplied "+
				"credentials; the choice persists across server restarts.",
		),
		mcp.WithString("boardId",
			mcp.Required(),
			mcp.Description("ID of the board to activate."),
		),
	)
}

// Handle processes the set_active_board tool call.
func (t *SetActiveBoardTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := req.RequireString("boardId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	board, err := t.sess.SetActiveBoard(ctx, credentials(req), boardID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(board), nil
}

// SetActiveWorkspaceTool handles the set_active_workspace MCP tool.
type SetActiveWorkspaceTool struct {
	sess *session.Manager
}

// NewSetActiveWorkspaceTool creates a SetActiveWorkspaceTool.
func NewSetActiveWorkspaceTool(sess *session.Manager) *SetActiveWorkspaceTool {
	return &SetActiveWorkspaceTool{sess: sess}
}

// Definition returns the MCP tool definition for registration.
func (t *SetActiveWorkspaceTool) Definition() mcp.Tool {
	return newTool("set_active_workspace",
		mcp.WithDescription(
			"Set the active workspace. list_boards_in_workspace uses it when no "+
				"workspaceId is supplied. The workspace must be reachable with the "+
				"supplied credentials; the choice persists across server restarts.",
		),
		mcp.WithString("workspaceId",
			mcp.Required(),
			mcp.Description("ID of the workspace (organization) to activate."),
		),
	)
}

// Handle processes the set_active_workspace tool call.
func (t *SetActiveWorkspaceTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspaceID, err := req.RequireString("workspaceId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ws, err := t.sess.SetActiveWorkspace(ctx, credentials(req), workspaceID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ws), nil
}

// ActiveBoardInfoTool handles the get_active_board_info MCP tool.
// Staleness of the active board is detected here, lazily, on use.
type ActiveBoardInfoTool struct {
	sess   *session.Manager
	remote session.Verifier
}

// NewActiveBoardInfoTool creates an ActiveBoardInfoTool.
func NewActiveBoardInfoTool(sess *session.Manager, remote session.Verifier) *ActiveBoardInfoTool {
	return &ActiveBoardInfoTool{sess: sess, remote: remote}
}

// Definition returns the MCP tool definition for registration.
func (t *ActiveBoardInfoTool) Definition() mcp.Tool {
	return newTool("get_active_board_info",
		mcp.WithDescription(
			"Show the current session context: the active board (with live "+
				"details) and the active workspace id, if set.",
		),
	)
}

// activeBoardInfo is the result payload for get_active_board_info.
type activeBoardInfo struct {
	ActiveBoard       *trello.Board `json:"activeBoard,omitempty"`
	ActiveBoardID     string        `json:"activeBoardId,omitempty"`
	ActiveWorkspaceID string        `json:"activeWorkspaceId,omitempty"`
	Note              string        `json:"note,omitempty"`
}

// Handle processes the get_active_board_info tool call.
func (t *ActiveBoardInfoTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snapshot := t.sess.Snapshot()
	info := activeBoardInfo{
		ActiveBoardID:     snapshot.ActiveBoardID,
		ActiveWorkspaceID: snapshot.ActiveWorkspaceID,
	}

	if snapshot.ActiveBoardID == "" {
		info.Note = "no active board set"
		return jsonResult(info), nil
	}

	board, err := t.remote.GetBoard(ctx, credentials(req), snapshot.ActiveBoardID)
	if err != nil {
		// Deleted and access-revoked boards are both stale: the same
		// condition perform_repair clears.
		if trello.IsNotFound(err) || trello.IsAccessDenied(err) {
			info.Note = fmt.Sprintf(
				"active board %s is stale (unreachable with current credentials); run perform_repair to clear it",
				snapshot.ActiveBoardID,
			)
			return jsonResult(info), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	info.ActiveBoard = board
	return jsonResult(info), nil
}

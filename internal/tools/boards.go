package tools

import (
	"context"

	"github.com/MissionSquad/mcp-trello/internal/session"
	"github.com/MissionSquad/mcp-trello/internal/trello"
	"github.com/mark3labs/mcp-go/mcp"
)

// ListBoardsTool handles the list_boards MCP tool.
type ListBoardsTool struct {
	client *trello.Client
}

// NewListBoardsTool creates a ListBoardsTool.
func NewListBoardsTool(client *trello.Client) *ListBoardsTool {
	return &ListBoardsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListBoardsTool) Definition() mcp.Tool {
	return newTool("list_boards",
		mcp.WithDescription("List all open boards visible to the credentials."),
	)
}

// Handle processes the list_boards tool call.
func (t *ListBoardsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boards, err := t.client.ListBoards(ctx, credentials(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(boards), nil
}

// ListWorkspacesTool handles the list_workspaces MCP tool.
type ListWorkspacesTool struct {
	client *trello.Client
}

// NewListWorkspacesTool creates a ListWorkspacesTool.
func NewListWorkspacesTool(client *trello.Client) *ListWorkspacesTool {
	return &ListWorkspacesTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ListWorkspacesTool) Definition() mcp.Tool {
	return newTool("list_workspaces",
		mcp.WithDescription("List all workspaces (organizations) visible to the credentials."),
	)
}

// Handle processes the list_workspaces tool call.
func (t *ListWorkspacesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspaces, err := t.client.ListWorkspaces(ctx, credentials(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(workspaces), nil
}

// ListBoardsInWorkspaceTool handles the list_boards_in_workspace MCP tool.
type ListBoardsInWorkspaceTool struct {
	client *trello.Client
	sess   *session.Manager
}

// NewListBoardsInWorkspaceTool creates a ListBoardsInWorkspaceTool.
func NewListBoardsInWorkspaceTool(client *trello.Client, sess *session.Manager) *ListBoardsInWorkspaceTool {
	return &ListBoardsInWorkspaceTool{client: client, sess: sess}
}

// Definition returns the MCP tool definition for registration.
func (t *ListBoardsInWorkspaceTool) Definition() mcp.Tool {
	return newTool("list_boards_in_workspace",
		mcp.WithDescription(
			"List the open boards of a workspace. Defaults to the active workspace "+
				"when no workspaceId is supplied.",
		),
		mcp.WithString("workspaceId",
			mcp.Description("Workspace ID. Defaults to the active workspace."),
		),
	)
}

// Handle processes the list_boards_in_workspace tool call.
func (t *ListBoardsInWorkspaceTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspaceID := req.GetString("workspaceId", "")
	if workspaceID == "" {
		workspaceID = t.sess.ActiveWorkspace()
	}
	if workspaceID == "" {
		return mcp.NewToolResultError(
			"list_boards_in_workspace requires a workspaceId, or an active workspace set via set_active_workspace",
		), nil
	}

	boards, err := t.client.ListBoardsInWorkspace(ctx, credentials(req), workspaceID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(boards), nil
}

// RecentActivityTool handles the get_recent_activity MCP tool.
type RecentActivityTool struct {
	client *trello.Client
	sess   *session.Manager
}

// NewRecentActivityTool creates a RecentActivityTool.
func NewRecentActivityTool(client *trello.Client, sess *session.Manager) *RecentActivityTool {
	return &RecentActivityTool{client: client, sess: sess}
}

// Definition returns the MCP tool definition for registration.
func (t *RecentActivityTool) Definition() mcp.Tool {
	return newTool("get_recent_activity",
		mcp.WithDescription(
			"Fetch the most recent activity (action log) of a board, newest first. "+
				"Defaults to the active board.",
		),
		mcp.WithString("boardId",
			mcp.Description("Board ID. Defaults to the active board."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of actions to return. Default 10."),
		),
	)
}

// Handle processes the get_recent_activity tool call.
func (t *RecentActivityTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID := effectiveBoardID(req, t.sess)
	if boardID == "" {
		return missingBoardScope("get_recent_activity"), nil
	}

	limit := intArg(req, "limit", 10)
	actions, err := t.client.GetRecentActivity(ctx, credentials(req), boardID, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(actions), nil
}

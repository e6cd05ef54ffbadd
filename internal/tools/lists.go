package tools

import (
	"context"

	"github.com/MissionSquad/mcp-trello/internal/session"
	"github.com/MissionSquad/mcp-trello/internal/trello"
	"github.com/mark3labs/mcp-go/mcp"
)

// GetListsTool handles the get_lists MCP tool.
type GetListsTool struct {
	client *trello.Client
	sess   *session.Manager
}

// NewGetListsTool creates a GetListsTool.
func NewGetListsTool(client *trello.Client, sess *session.Manager) *GetListsTool {
	return &GetListsTool{client: client, sess: sess}
}

// Definition returns the MCP tool definition for registration.
func (t *GetListsTool) Definition() mcp.Tool {
	return newTool("get_lists",
		mcp.WithDescription(
			"List the lists (columns) of a board. Defaults to the active board. "+
				"Archived lists are excluded unless includeArchived is set.",
		),
		mcp.WithString("boardId",
			mcp.Description("Board ID. Defaults to the active board."),
		),
		mcp.WithBoolean("includeArchived",
			mcp.Description("Include archived lists. Default false."),
		),
	)
}

// Handle processes the get_lists tool call.
func (t *GetListsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID := effectiveBoardID(req, t.sess)
	if boardID == "" {
		return missingBoardScope("get_lists"), nil
	}

	lists, err := t.client.GetLists(ctx, credentials(req), boardID, boolArg(req, "includeArchived", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(lists), nil
}

// AddListTool handles the add_list_to_board MCP tool.
type AddListTool struct {
	client *trello.Client
	sess   *session.Manager
}

// NewAddListTool creates an AddListTool.
func NewAddListTool(client *trello.Client, sess *session.Manager) *AddListTool {
	return &AddListTool{client: client, sess: sess}
}

// Definition returns the MCP tool definition for registration.
func (t *AddListTool) Definition() mcp.Tool {
	return newTool("add_list_to_board",
		mcp.WithDescription("Create a new list on a board. Defaults to the active board."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the new list."),
		),
		mcp.WithString("boardId",
			mcp.Description("Board ID. Defaults to the active board."),
		),
	)
}

// Handle processes the add_list_to_board tool call.
func (t *AddListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	boardID := effectiveBoardID(req, t.sess)
	if boardID == "" {
		return missingBoardScope("add_list_to_board"), nil
	}

	list, err := t.client.CreateList(ctx, credentials(req), boardID, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(list), nil
}

// ArchiveListTool handles the archive_list MCP tool.
type ArchiveListTool struct {
	client *trello.Client
}

// NewArchiveListTool creates an ArchiveListTool.
func NewArchiveListTool(client *trello.Client) *ArchiveListTool {
	return &ArchiveListTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ArchiveListTool) Definition() mcp.Tool {
	return newTool("archive_list",
		mcp.WithDescription("Archive (close) a list. Reversible on the Trello side."),
		mcp.WithString("listId",
			mcp.Required(),
			mcp.Description("ID of the list to archive."),
		),
	)
}

// Handle processes the archive_list tool call.
func (t *ArchiveListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listID, err := req.RequireString("listId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	list, err := t.client.ArchiveList(ctx, credentials(req), listID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(list), nil
}

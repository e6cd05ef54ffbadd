package tools

import (
	"context"
	"fmt"

	"github.com/MissionSquad/mcp-trello/internal/resolve"
	"github.com/MissionSquad/mcp-trello/internal/session"
	"github.com/MissionSquad/mcp-trello/internal/trello"
	"github.com/mark3labs/mcp-go/mcp"
)

// scopeOptions are the shared cardId/boardId arguments for name-scoped
// checklist lookups.
func scopeOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("cardId",
			mcp.Description("Restrict the search to one card. The cheap path — prefer it when known."),
		),
		mcp.WithString("boardId",
			mcp.Description("Restrict the search to one board. Defaults to the active board."),
		),
		mcp.WithBoolean("includeArchived",
			mcp.Description("Search archived lists too on a board-scoped lookup. Default false."),
		),
	}
}

// GetChecklistByNameTool handles the get_checklist_by_name MCP tool.
type GetChecklistByNameTool struct {
	index *resolve.Index
	sess  *session.Manager
}

// NewGetChecklistByNameTool creates a GetChecklistByNameTool.
func NewGetChecklistByNameTool(index *resolve.Index, sess *session.Manager) *GetChecklistByNameTool {
	return &GetChecklistByNameTool{index: index, sess: sess}
}

// Definition returns the MCP tool definition for registration.
func (t *GetChecklistByNameTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Find a checklist by exact name within a card or board scope and return " +
				"it with its items and completion percentage. Checklist names are only " +
				"unique per card: if the name matches on several cards, the call fails " +
				"listing every match so you can narrow the scope with a cardId. " +
				"An absent checklist is reported as found=false, not as an error.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Exact, case-sensitive checklist name."),
		),
	}
	return newTool("get_checklist_by_name", append(opts, scopeOptions()...)...)
}

// Handle processes the get_checklist_by_name tool call.
func (t *GetChecklistByNameTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	summary, err := t.index.ChecklistByName(ctx, credentials(req), name, scopeFromRequest(req, t.sess))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(summary), nil
}

// GetChecklistItemsTool handles the get_checklist_items MCP tool.
type GetChecklistItemsTool struct {
	index *resolve.Index
	sess  *session.Manager
}

// NewGetChecklistItemsTool creates a GetChecklistItemsTool.
func NewGetChecklistItemsTool(index *resolve.Index, sess *session.Manager) *GetChecklistItemsTool {
	return &GetChecklistItemsTool{index: index, sess: sess}
}

// Definition returns the MCP tool definition for registration.
func (t *GetChecklistItemsTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Return the items of a checklist found by exact name within a card or " +
				"board scope. Fails when the checklist does not exist or the name is " +
				"ambiguous within the scope.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Exact, case-sensitive checklist name."),
		),
	}
	return newTool("get_checklist_items", append(opts, scopeOptions()...)...)
}

// Handle processes the get_checklist_items tool call.
func (t *GetChecklistItemsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	items, err := t.index.ChecklistItems(ctx, credentials(req), name, scopeFromRequest(req, t.sess))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items), nil
}

// FindChecklistItemsTool handles the find_checklist_items_by_description
// MCP tool.
type FindChecklistItemsTool struct {
	index *resolve.Index
	sess  *session.Manager
}

// NewFindChecklistItemsTool creates a FindChecklistItemsTool.
func NewFindChecklistItemsTool(index *resolve.Index, sess *session.Manager) *FindChecklistItemsTool {
	return &FindChecklistItemsTool{index: index, sess: sess}
}

// Definition returns the MCP tool definition for registration.
func (t *FindChecklistItemsTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Find all checklist items whose text contains the query " +
				"(case-insensitive substring) within a card or board scope. " +
				"Returns every match with its checklist, card, and board.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Substring to search for in item text."),
		),
	}
	return newTool("find_checklist_items_by_description", append(opts, scopeOptions()...)...)
}

// Handle processes the find_checklist_items_by_description tool call.
func (t *FindChecklistItemsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	matches, err := t.index.FindItems(ctx, credentials(req), query, scopeFromRequest(req, t.sess))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if matches == nil {
		matches = []resolve.ItemMatch{}
	}
	return jsonResult(matches), nil
}

// AcceptanceCriteriaTool handles the get_acceptance_criteria MCP tool.
type AcceptanceCriteriaTool struct {
	index *resolve.Index
	sess  *session.Manager
}

// NewAcceptanceCriteriaTool creates an AcceptanceCriteriaTool.
func NewAcceptanceCriteriaTool(index *resolve.Index, sess *session.Manager) *AcceptanceCriteriaTool {
	return &AcceptanceCriteriaTool{index: index, sess: sess}
}

// Definition returns the MCP tool definition for registration.
func (t *AcceptanceCriteriaTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Shorthand for get_checklist_by_name with the literal name " +
				"\"Acceptance Criteria\". Same scoping and disambiguation rules.",
		),
	}
	return newTool("get_acceptance_criteria", append(opts, scopeOptions()...)...)
}

// Handle processes the get_acceptance_criteria tool call.
func (t *AcceptanceCriteriaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := t.index.AcceptanceCriteria(ctx, credentials(req), scopeFromRequest(req, t.sess))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(summary), nil
}

// checklistWriter is the slice of the client the add-item tool writes
// through. Satisfied by *trello.Client.
type checklistWriter interface {
	AddChecklistItem(ctx context.Context, creds trello.Credentials, checklistID, name string) (*trello.CheckItem, error)
}

// AddChecklistItemTool handles the add_checklist_item MCP tool. The
// target checklist is resolved by name through the same scoped lookup
// the read tools use.
type AddChecklistItemTool struct {
	index  *resolve.Index
	writer checklistWriter
	sess   *session.Manager
}

// NewAddChecklistItemTool creates an AddChecklistItemTool.
func NewAddChecklistItemTool(index *resolve.Index, writer checklistWriter, sess *session.Manager) *AddChecklistItemTool {
	return &AddChecklistItemTool{index: index, writer: writer, sess: sess}
}

// Definition returns the MCP tool definition for registration.
func (t *AddChecklistItemTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Append an item to a checklist resolved by exact name within a card or " +
				"board scope. The item starts incomplete.",
		),
		mcp.WithString("checklistName",
			mcp.Required(),
			mcp.Description("Exact, case-sensitive name of the target checklist."),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text of the new item."),
		),
	}
	return newTool("add_checklist_item", append(opts, scopeOptions()...)...)
}

// Handle processes the add_checklist_item tool call.
func (t *AddChecklistItemTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("checklistName")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	creds := credentials(req)
	summary, err := t.index.ChecklistByName(ctx, creds, name, scopeFromRequest(req, t.sess))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !summary.Found {
		return mcp.NewToolResultError(fmt.Sprintf("checklist %q not found in the given scope", name)), nil
	}

	item, err := t.writer.AddChecklistItem(ctx, creds, summary.Checklist.ID, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(item), nil
}

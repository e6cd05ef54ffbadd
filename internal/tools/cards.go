package tools

import (
	"context"
	"strings"

	"github.com/MissionSquad/mcp-trello/internal/trello"
	"github.com/mark3labs/mcp-go/mcp"
)

// GetCardsByListTool handles the get_cards_by_list_id MCP tool.
type GetCardsByListTool struct {
	client *trello.Client
}

// NewGetCardsByListTool creates a GetCardsByListTool.
func NewGetCardsByListTool(client *trello.Client) *GetCardsByListTool {
	return &GetCardsByListTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *GetCardsByListTool) Definition() mcp.Tool {
	return newTool("get_cards_by_list_id",
		mcp.WithDescription("List the open cards in a list."),
		mcp.WithString("listId",
			mcp.Required(),
			mcp.Description("ID of the list."),
		),
	)
}

// Handle processes the get_cards_by_list_id tool call.
func (t *GetCardsByListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listID, err := req.RequireString("listId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cards, err := t.client.GetCardsByList(ctx, credentials(req), listID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cards), nil
}

// GetMyCardsTool handles the get_my_cards MCP tool.
type GetMyCardsTool struct {
	client *trello.Client
}

// NewGetMyCardsTool creates a GetMyCardsTool.
func NewGetMyCardsTool(client *trello.Client) *GetMyCardsTool {
	return &GetMyCardsTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *GetMyCardsTool) Definition() mcp.Tool {
	return newTool("get_my_cards",
		mcp.WithDescription("List the open cards assigned to the credentials' member."),
	)
}

// Handle processes the get_my_cards tool call.
func (t *GetMyCardsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cards, err := t.client.GetMyCards(ctx, credentials(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cards), nil
}

// AddCardTool handles the add_card_to_list MCP tool.
type AddCardTool struct {
	client *trello.Client
}

// NewAddCardTool creates an AddCardTool.
func NewAddCardTool(client *trello.Client) *AddCardTool {
	return &AddCardTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *AddCardTool) Definition() mcp.Tool {
	return newTool("add_card_to_list",
		mcp.WithDescription("Create a new card in a list."),
		mcp.WithString("listId",
			mcp.Required(),
			mcp.Description("ID of the list the card goes into."),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Card name."),
		),
		mcp.WithString("description",
			mcp.Description("Card description (markdown)."),
		),
		mcp.WithString("dueDate",
			mcp.Description("Due date, ISO 8601 (e.g. 2026-09-15T12:00:00Z)."),
		),
		mcp.WithString("startDate",
			mcp.Description("Start date, ISO 8601."),
		),
		mcp.WithString("labelIds",
			mcp.Description("Comma-separated label IDs to attach."),
		),
		mcp.WithString("memberIds",
			mcp.Description("Comma-separated member IDs to assign."),
		),
	)
}

// Handle processes the add_card_to_list tool call.
func (t *AddCardTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listID, err := req.RequireString("listId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	card, err := t.client.CreateCard(ctx, credentials(req), trello.CreateCardParams{
		ListID:    listID,
		Name:      name,
		Desc:      req.GetString("description", ""),
		Due:       req.GetString("dueDate", ""),
		Start:     req.GetString("startDate", ""),
		IDLabels:  splitIDs(req.GetString("labelIds", "")),
		IDMembers: splitIDs(req.GetString("memberIds", "")),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(card), nil
}

// splitIDs parses a comma-separated id list, dropping empty segments.
func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// UpdateCardTool handles the update_card_details MCP tool.
type UpdateCardTool struct {
	client *trello.Client
}

// NewUpdateCardTool creates an UpdateCardTool.
func NewUpdateCardTool(client *trello.Client) *UpdateCardTool {
	return &UpdateCardTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateCardTool) Definition() mcp.Tool {
	return newTool("update_card_details",
		mcp.WithDescription(
			"Update a card in place. Only the supplied fields change.",
		),
		mcp.WithString("cardId",
			mcp.Required(),
			mcp.Description("ID of the card to update."),
		),
		mcp.WithString("name",
			mcp.Description("New card name."),
		),
		mcp.WithString("description",
			mcp.Description("New description."),
		),
		mcp.WithString("dueDate",
			mcp.Description("New due date, ISO 8601. Empty string clears it."),
		),
		mcp.WithString("startDate",
			mcp.Description("New start date, ISO 8601. Empty string clears it."),
		),
		mcp.WithBoolean("dueComplete",
			mcp.Description("Mark the due date complete or incomplete."),
		),
	)
}

// Handle processes the update_card_details tool call.
func (t *UpdateCardTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cardID, err := req.RequireString("cardId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var params trello.UpdateCardParams
	args := req.GetArguments()
	if v, ok := args["name"].(string); ok {
		params.Name = &v
	}
	if v, ok := args["description"].(string); ok {
		params.Desc = &v
	}
	if v, ok := args["dueDate"].(string); ok {
		params.Due = &v
	}
	if v, ok := args["startDate"].(string); ok {
		params.Start = &v
	}
	if v, ok := args["dueComplete"].(bool); ok {
		params.DueComplete = &v
	}

	card, err := t.client.UpdateCard(ctx, credentials(req), cardID, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(card), nil
}

// MoveCardTool handles the move_card MCP tool.
type MoveCardTool struct {
	client *trello.Client
}

// NewMoveCardTool creates a MoveCardTool.
func NewMoveCardTool(client *trello.Client) *MoveCardTool {
	return &MoveCardTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *MoveCardTool) Definition() mcp.Tool {
	return newTool("move_card",
		mcp.WithDescription("Move a card to another list."),
		mcp.WithString("cardId",
			mcp.Required(),
			mcp.Description("ID of the card to move."),
		),
		mcp.WithString("listId",
			mcp.Required(),
			mcp.Description("ID of the destination list."),
		),
	)
}

// Handle processes the move_card tool call.
func (t *MoveCardTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cardID, err := req.RequireString("cardId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	listID, err := req.RequireString("listId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	card, err := t.client.MoveCard(ctx, credentials(req), cardID, listID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(card), nil
}

// ArchiveCardTool handles the archive_card MCP tool.
type ArchiveCardTool struct {
	client *trello.Client
}

// NewArchiveCardTool creates an ArchiveCardTool.
func NewArchiveCardTool(client *trello.Client) *ArchiveCardTool {
	return &ArchiveCardTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *ArchiveCardTool) Definition() mcp.Tool {
	return newTool("archive_card",
		mcp.WithDescription("Archive (close) a card. Cards are never hard-deleted."),
		mcp.WithString("cardId",
			mcp.Required(),
			mcp.Description("ID of the card to archive."),
		),
	)
}

// Handle processes the archive_card tool call.
func (t *ArchiveCardTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cardID, err := req.RequireString("cardId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	card, err := t.client.ArchiveCard(ctx, credentials(req), cardID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(card), nil
}

// AddCommentTool handles the add_comment MCP tool.
type AddCommentTool struct {
	client *trello.Client
}

// NewAddCommentTool creates an AddCommentTool.
func NewAddCommentTool(client *trello.Client) *AddCommentTool {
	return &AddCommentTool{client: client}
}

// Definition returns the MCP tool definition for registration.
func (t *AddCommentTool) Definition() mcp.Tool {
	return newTool("add_comment",
		mcp.WithDescription("Add a comment to a card."),
		mcp.WithString("cardId",
			mcp.Required(),
			mcp.Description("ID of the card to comment on."),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Comment text (markdown)."),
		),
	)
}

// Handle processes the add_comment tool call.
func (t *AddCommentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cardID, err := req.RequireString("cardId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	action, err := t.client.AddComment(ctx, credentials(req), cardID, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(action), nil
}

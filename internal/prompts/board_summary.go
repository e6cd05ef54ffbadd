// Package prompts implements MCP prompt handlers for the Trello server.
//
// Prompts are user-triggered workflows (like slash commands): the user
// invokes one and the AI executes the described sequence with the
// server's tools.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// BoardSummaryPrompt handles the trello-board-summary MCP prompt.
// It instructs the AI to assemble a status overview of one board.
type BoardSummaryPrompt struct{}

// NewBoardSummaryPrompt creates a BoardSummaryPrompt.
func NewBoardSummaryPrompt() *BoardSummaryPrompt {
	return &BoardSummaryPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *BoardSummaryPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("trello-board-summary",
		mcp.WithPromptDescription(
			"Summarize the state of a Trello board: lists, card counts, "+
				"acceptance-criteria progress, and recent activity.",
		),
		mcp.WithArgument("board_id",
			mcp.ArgumentDescription("Board to summarize. Defaults to the active board."),
		),
	)
}

// Handle processes the trello-board-summary prompt request.
func (p *BoardSummaryPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	boardRef := "the active board (call get_active_board_info first; if none is set, ask the user which board to use and call set_active_board)"
	if args := req.Params.Arguments; args != nil {
		if id, ok := args["board_id"]; ok && id != "" {
			boardRef = fmt.Sprintf("board %s", id)
		}
	}

	instructions := fmt.Sprintf(`Build a status summary of %s:

1. Call get_lists to enumerate the board's lists.
2. For each list, call get_cards_by_list_id and count open cards.
3. For cards that look like work items, call get_acceptance_criteria with
   the card's id to report completion percentages. If the lookup reports
   an ambiguous name, narrow it with the cardId as instructed.
4. Call get_recent_activity (limit 10) for what changed recently.
5. Present a compact overview: per-list card counts, overall
   acceptance-criteria progress, and notable recent activity.

If any call fails with an upstream error, include the error in the
summary rather than stopping.`, boardRef)

	return &mcp.GetPromptResult{
		Description: "Summarize a Trello board",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(instructions),
			},
		},
	}, nil
}

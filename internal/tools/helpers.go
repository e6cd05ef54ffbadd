// Package tools implements the MCP tool handlers for the Trello server.
//
// Each tool is a struct that receives its dependencies via constructor
// and exposes Definition() plus a Handle compatible with mcp-go's
// CallToolRequest signature. One file groups one concern.
//
// Every tool accepts an optional apiKey/token pair; explicit arguments
// win over the TRELLO_API_KEY / TRELLO_TOKEN environment variables.
// Credentials are never echoed back in results or logs.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/MissionSquad/mcp-trello/internal/resolve"
	"github.com/MissionSquad/mcp-trello/internal/session"
	"github.com/MissionSquad/mcp-trello/internal/trello"
	"github.com/mark3labs/mcp-go/mcp"
)

// newTool builds a tool definition with the shared credential options
// appended, so every tool carries the same auth surface.
func newTool(name string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append(opts,
		mcp.WithString("apiKey",
			mcp.Description("Trello API key. Falls back to the TRELLO_API_KEY environment variable."),
		),
		mcp.WithString("token",
			mcp.Description("Trello API token. Falls back to the TRELLO_TOKEN environment variable."),
		),
	)
	return mcp.NewTool(name, opts...)
}

// credentials resolves the per-call credential pair. Explicit arguments
// win; the environment is the fallback.
func credentials(req mcp.CallToolRequest) trello.Credentials {
	creds := trello.CredentialsFromEnv()
	if v := req.GetString("apiKey", ""); v != "" {
		creds.Key = v
	}
	if v := req.GetString("token", ""); v != "" {
		creds.Token = v
	}
	return creds
}

// scopeFromRequest builds the lookup scope for name resolution:
// explicit cardId/boardId arguments win, otherwise the active board is
// the default. An empty result is the resolver's problem to reject.
func scopeFromRequest(req mcp.CallToolRequest, sess *session.Manager) resolve.Scope {
	scope := resolve.Scope{
		CardID:          req.GetString("cardId", ""),
		BoardID:         req.GetString("boardId", ""),
		IncludeArchived: boolArg(req, "includeArchived", false),
	}
	if scope.Empty() {
		scope.BoardID = sess.ActiveBoard()
	}
	return scope
}

// effectiveBoardID resolves a board-scoped operation's target: the
// explicit boardId argument, else the active board.
func effectiveBoardID(req mcp.CallToolRequest, sess *session.Manager) string {
	if boardID := req.GetString("boardId", ""); boardID != "" {
		return boardID
	}
	return sess.ActiveBoard()
}

// missingBoardScope is the uniform error result for board-scoped
// operations called with no board at all.
func missingBoardScope(operation string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf(
		"%s requires a boardId, or an active board set via set_active_board", operation,
	))
}

// intArg extracts an integer argument, returning defaultVal if the key
// is missing or not a number (JSON numbers decode as float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// jsonResult serializes a payload as indented JSON text content.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// Package resources implements MCP resource handlers for the Trello
// server. Resources are read-only data the host can pull for context,
// addressed by URI (trello://...).
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MissionSquad/mcp-trello/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handler serves the session-context resource.
type Handler struct {
	sess *session.Manager
}

// NewHandler creates a resource Handler.
func NewHandler(sess *session.Manager) *Handler {
	return &Handler{sess: sess}
}

// SessionResource returns the MCP resource definition for the current
// session context.
func (h *Handler) SessionResource() mcp.Resource {
	return mcp.NewResource(
		"trello://session",
		"Trello Session Context",
		mcp.WithResourceDescription("The active board and workspace ids, if set"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleSession returns the session context as JSON. No remote call is
// made here — staleness is detected lazily by the tools that use the
// active board.
func (h *Handler) HandleSession(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(h.sess.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling session context: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

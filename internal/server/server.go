// Package server wires all MCP components and creates the server
// instance. This is the composition root: it creates concrete
// implementations and injects them into the tools that depend on
// abstractions. No business logic lives here — only wiring.
package server

import (
	"log"
	"os"

	"github.com/MissionSquad/mcp-trello/internal/diagnose"
	"github.com/MissionSquad/mcp-trello/internal/prompts"
	"github.com/MissionSquad/mcp-trello/internal/resolve"
	"github.com/MissionSquad/mcp-trello/internal/resources"
	"github.com/MissionSquad/mcp-trello/internal/session"
	"github.com/MissionSquad/mcp-trello/internal/tools"
	"github.com/MissionSquad/mcp-trello/internal/trello"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered.
//
// The returned cleanup function closes the session store and must be
// called on shutdown (typically via defer). It is always non-nil and
// safe to call even when persistence failed to initialize.
func New() (*server.MCPServer, func(), error) {
	// --- Create shared dependencies ---

	client := trello.NewClient()

	// Session persistence is best-effort: when the store cannot be
	// opened the server still runs, it just forgets the active board
	// on restart.
	cleanup := noop
	var store session.Store
	if sqlStore, err := session.NewSQLiteStore(session.DefaultConfig()); err != nil {
		log.Printf("WARNING: session store unavailable: %v", err)
	} else {
		store = sqlStore
		cleanup = func() {
			if err := sqlStore.Close(); err != nil {
				log.Printf("WARNING: session store close: %v", err)
			}
		}
	}

	sess := session.NewManager(store, client, session.Context{
		ActiveBoardID:     os.Getenv("TRELLO_BOARD_ID"),
		ActiveWorkspaceID: os.Getenv("TRELLO_WORKSPACE_ID"),
	})

	resolver := resolve.NewResolver(client)
	index := resolve.NewIndex(resolver)
	engine := diagnose.NewEngine(client, sess)
	repairer := diagnose.NewRepairer(engine, sess)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"mcp-trello",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register session tools ---

	setBoard := tools.NewSetActiveBoardTool(sess)
	s.AddTool(setBoard.Definition(), setBoard.Handle)

	setWorkspace := tools.NewSetActiveWorkspaceTool(sess)
	s.AddTool(setWorkspace.Definition(), setWorkspace.Handle)

	boardInfo := tools.NewActiveBoardInfoTool(sess, client)
	s.AddTool(boardInfo.Definition(), boardInfo.Handle)

	// --- Register board/workspace tools ---

	listBoards := tools.NewListBoardsTool(client)
	s.AddTool(listBoards.Definition(), listBoards.Handle)

	listWorkspaces := tools.NewListWorkspacesTool(client)
	s.AddTool(listWorkspaces.Definition(), listWorkspaces.Handle)

	boardsInWorkspace := tools.NewListBoardsInWorkspaceTool(client, sess)
	s.AddTool(boardsInWorkspace.Definition(), boardsInWorkspace.Handle)

	recentActivity := tools.NewRecentActivityTool(client, sess)
	s.AddTool(recentActivity.Definition(), recentActivity.Handle)

	// --- Register list tools ---

	getLists := tools.NewGetListsTool(client, sess)
	s.AddTool(getLists.Definition(), getLists.Handle)

	addList := tools.NewAddListTool(client, sess)
	s.AddTool(addList.Definition(), addList.Handle)

	archiveList := tools.NewArchiveListTool(client)
	s.AddTool(archiveList.Definition(), archiveList.Handle)

	// --- Register card tools ---

	cardsByList := tools.NewGetCardsByListTool(client)
	s.AddTool(cardsByList.Definition(), cardsByList.Handle)

	myCards := tools.NewGetMyCardsTool(client)
	s.AddTool(myCards.Definition(), myCards.Handle)

	addCard := tools.NewAddCardTool(client)
	s.AddTool(addCard.Definition(), addCard.Handle)

	updateCard := tools.NewUpdateCardTool(client)
	s.AddTool(updateCard.Definition(), updateCard.Handle)

	moveCard := tools.NewMoveCardTool(client)
	s.AddTool(moveCard.Definition(), moveCard.Handle)

	archiveCard := tools.NewArchiveCardTool(client)
	s.AddTool(archiveCard.Definition(), archiveCard.Handle)

	addComment := tools.NewAddCommentTool(client)
	s.AddTool(addComment.Definition(), addComment.Handle)

	// --- Register checklist tools ---

	checklistByName := tools.NewGetChecklistByNameTool(index, sess)
	s.AddTool(checklistByName.Definition(), checklistByName.Handle)

	checklistItems := tools.NewGetChecklistItemsTool(index, sess)
	s.AddTool(checklistItems.Definition(), checklistItems.Handle)

	findItems := tools.NewFindChecklistItemsTool(index, sess)
	s.AddTool(findItems.Definition(), findItems.Handle)

	acceptance := tools.NewAcceptanceCriteriaTool(index, sess)
	s.AddTool(acceptance.Definition(), acceptance.Handle)

	addChecklistItem := tools.NewAddChecklistItemTool(index, client, sess)
	s.AddTool(addChecklistItem.Definition(), addChecklistItem.Handle)

	// --- Register diagnostics tools ---

	health := tools.NewHealthTool(engine)
	s.AddTool(health.Definition(), health.Handle)

	healthDetailed := tools.NewHealthDetailedTool(engine)
	s.AddTool(healthDetailed.Definition(), healthDetailed.Handle)

	healthMetadata := tools.NewHealthMetadataTool(engine)
	s.AddTool(healthMetadata.Definition(), healthMetadata.Handle)

	healthPerformance := tools.NewHealthPerformanceTool(engine)
	s.AddTool(healthPerformance.Definition(), healthPerformance.Handle)

	repair := tools.NewRepairTool(repairer)
	s.AddTool(repair.Definition(), repair.Handle)

	// --- Register prompts ---

	boardSummary := prompts.NewBoardSummaryPrompt()
	s.AddPrompt(boardSummary.Definition(), boardSummary.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(sess)
	s.AddResource(resourceHandler.SessionResource(), resourceHandler.HandleSession)

	return s, cleanup, nil
}

// noop is the default cleanup when persistence is disabled.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use this server effectively.
func serverInstructions() string {
	return `You have access to a Trello MCP server.

## Credentials
Every tool accepts optional apiKey/token arguments. If omitted, the
server falls back to the TRELLO_API_KEY and TRELLO_TOKEN environment
variables. Never print credentials back to the user.

## Session scope
The server remembers an "active" board and workspace across restarts.
Set them once with set_active_board / set_active_workspace, then omit
boardId on later calls — the active board is the default scope. Call
get_active_board_info to see the current session state. If the active
board was deleted or access was revoked, tools will report it stale;
run perform_repair to clear it.

## Checklist lookups
Checklist names are only unique within a single card. Name-based
lookups (get_checklist_by_name, get_checklist_items,
get_acceptance_criteria, add_checklist_item) therefore require a scope:
a cardId (cheap, preferred when known) or a boardId / the active board
(walks every card on the board). When a name matches on several cards
the call fails and lists every match — re-issue it with the cardId of
the one you meant. The server never guesses.

get_acceptance_criteria is get_checklist_by_name fixed to the name
"Acceptance Criteria" — the common convention for definition-of-done
checklists on work-item cards.

## Diagnostics
- get_health: quick connectivity + auth check.
- get_health_detailed: independent subsystem probes; a failing probe
  never hides the others.
- get_health_metadata: referential-integrity audit of the active board
  and session state.
- get_health_performance: read-latency measurements (no writes).
- perform_repair: fixes what is automatically fixable (stale session
  state only) and reports per-finding outcomes. It never deletes or
  modifies remote data.

## Failure handling
Upstream Trello errors are returned verbatim with the failing operation
and entity named. They are not retried by the server — if a call is
rate-limited (HTTP 429), wait before retrying.`
}

package session

import (
	"context"
	"log"
	"sync"

	"github.com/MissionSquad/mcp-trello/internal/resolve"
	"github.com/MissionSquad/mcp-trello/internal/trello"
)

// Verifier is the slice of the remote board service the manager needs
// to confirm that an id is reachable before activating it. Satisfied
// by *trello.Client.
type Verifier interface {
	GetBoard(ctx context.Context, creds trello.Credentials, boardID string) (*trello.Board, error)
	GetWorkspace(ctx context.Context, creds trello.Credentials, workspaceID string) (*trello.Workspace, error)
}

// Manager owns the in-memory session context and funnels every
// mutation through one critical section: read current value, decide,
// persist, all under the same lock. Concurrent SetActiveBoard calls
// race by design — the last write to complete wins — but the record is
// never a mix of two writes.
type Manager struct {
	mu     sync.Mutex
	store  Store // nil when persistence is unavailable
	remote Verifier
	ctx    Context
}

// NewManager loads the persisted context and returns a ready manager.
// A load failure falls back to the supplied defaults (typically sourced
// from the environment) rather than aborting — the session is then
// simply not durable. store may be nil for memory-only operation.
func NewManager(store Store, remote Verifier, defaults Context) *Manager {
	m := &Manager{store: store, remote: remote, ctx: defaults}

	if store == nil {
		log.Printf("WARNING: session persistence disabled; active board/workspace will not survive restarts")
		return m
	}

	loaded, err := store.Load()
	if err != nil {
		log.Printf("WARNING: loading session context: %v (starting empty)", err)
		return m
	}
	if loaded.ActiveBoardID != "" {
		m.ctx.ActiveBoardID = loaded.ActiveBoardID
	}
	if loaded.ActiveWorkspaceID != "" {
		m.ctx.ActiveWorkspaceID = loaded.ActiveWorkspaceID
	}
	return m
}

// ActiveBoard returns the active board id, or "" when none is set.
// Staleness is detected lazily on first use, not here.
func (m *Manager) ActiveBoard() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ctx.ActiveBoardID
}

// ActiveWorkspace returns the active workspace id, or "" when none is set.
func (m *Manager) ActiveWorkspace() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ctx.ActiveWorkspaceID
}

// Snapshot returns a copy of the current session context.
func (m *Manager) Snapshot() Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ctx
}

// SetActiveBoard activates a board. It succeeds only after a live
// round-trip confirms the board is reachable with the given
// credentials; an upstream not-found becomes *resolve.NotFoundError.
func (m *Manager) SetActiveBoard(ctx context.Context, creds trello.Credentials, boardID string) (*trello.Board, error) {
	board, err := m.remote.GetBoard(ctx, creds, boardID)
	if err != nil {
		if trello.IsNotFound(err) {
			return nil, &resolve.NotFoundError{Kind: "board", ID: boardID}
		}
		return nil, err
	}

	m.mutate(func(sc *Context) { sc.ActiveBoardID = board.ID })
	return board, nil
}

// SetActiveWorkspace activates a workspace, with the same confirmation
// contract as SetActiveBoard.
func (m *Manager) SetActiveWorkspace(ctx context.Context, creds trello.Credentials, workspaceID string) (*trello.Workspace, error) {
	ws, err := m.remote.GetWorkspace(ctx, creds, workspaceID)
	if err != nil {
		if trello.IsNotFound(err) {
			return nil, &resolve.NotFoundError{Kind: "workspace", ID: workspaceID}
		}
		return nil, err
	}

	m.mutate(func(sc *Context) { sc.ActiveWorkspaceID = ws.ID })
	return ws, nil
}

// ClearActiveBoard unsets the active board. Used by the repair engine
// when the board has gone stale.
func (m *Manager) ClearActiveBoard() {
	m.mutate(func(sc *Context) { sc.ActiveBoardID = "" })
}

// ClearActiveWorkspace unsets the active workspace.
func (m *Manager) ClearActiveWorkspace() {
	m.mutate(func(sc *Context) { sc.ActiveWorkspaceID = "" })
}

// mutate applies fn and persists the result as one critical section.
// A save failure is logged but does not roll back the in-memory value:
// the session stays usable for the rest of the process even if
// durability is lost.
func (m *Manager) mutate(fn func(*Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn(&m.ctx)
	if m.store == nil {
		return
	}
	if err := m.store.Save(m.ctx); err != nil {
		log.Printf("WARNING: persisting session context: %v (in-memory value kept)", err)
	}
}

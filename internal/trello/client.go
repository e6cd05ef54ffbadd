// Package trello is the client for the remote board service (the Trello
// REST API). Every call carries its own credential pair — the client
// holds no auth state — and every upstream failure is wrapped in an
// *APIError naming the failing operation and entity so callers can
// re-surface it with context.
//
// The client never retries and never logs credentials. Retry policy,
// if any, belongs to the caller's framework.
package trello

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// defaultBaseURL is the production Trello REST endpoint.
	defaultBaseURL = "https://api.trello.com/1"

	// requestTimeout bounds every round-trip.
	requestTimeout = 30 * time.Second
)

// Credentials is the per-call API key + token pair.
type Credentials struct {
	Key   string
	Token string
}

// Valid reports whether both halves of the pair are present.
func (c Credentials) Valid() bool { return c.Key != "" && c.Token != "" }

// CredentialsFromEnv reads the credential pair from the process
// environment. Used as the fallback when a tool call supplies none.
func CredentialsFromEnv() Credentials {
	return Credentials{
		Key:   os.Getenv("TRELLO_API_KEY"),
		Token: os.Getenv("TRELLO_TOKEN"),
	}
}

// APIError wraps an upstream failure with the operation and entity it
// belongs to. StatusCode is zero for transport-level failures.
type APIError struct {
	Op         string
	Entity     string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Entity != "" {
		fmt.Fprintf(&sb, " %q", e.Entity)
	}
	sb.WriteString(" failed")
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&sb, ": %s", e.Message)
	} else if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// NotFound reports whether the remote said the entity does not exist.
func (e *APIError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// RateLimited reports whether the remote rejected the call for quota.
func (e *APIError) RateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

// AccessDenied reports whether the remote rejected the credentials for
// this entity.
func (e *APIError) AccessDenied() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether err is an upstream not-found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}

// IsAccessDenied reports whether err is an upstream auth rejection.
func IsAccessDenied(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.AccessDenied()
}

// Client talks to the remote board service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client against the production API.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a client against a custom endpoint.
// Tests point this at an httptest.Server.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// ─── Request plumbing ────────────────────────────────────────────────────────

// do performs one authenticated round-trip and decodes the JSON response
// into out (skipped when out is nil). All failures become *APIError.
func (c *Client) do(ctx context.Context, creds Credentials, op, method, path, entity string, query url.Values, out any) error {
	if !creds.Valid() {
		return &APIError{Op: op, Entity: entity, Message: "missing API key or token"}
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("key", creds.Key)
	query.Set("token", creds.Token)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return &APIError{Op: op, Entity: entity, Err: redactQuery(err, c.baseURL+path)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Op: op, Entity: entity, Err: redactQuery(err, c.baseURL+path)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Trello error bodies are short plain-text or JSON messages.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			Op:         op,
			Entity:     entity,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Op: op, Entity: entity, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// redactQuery strips the query string from a transport-level error.
// url.Error embeds the full request URL in its message, and ours
// carries the key/token pair — that must never reach a tool result or
// a diagnostics report.
func redactQuery(err error, safeURL string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s %s: %w", urlErr.Op, safeURL, urlErr.Err)
	}
	return err
}

// ─── Workspaces & boards ─────────────────────────────────────────────────────

// ListWorkspaces returns the workspaces visible to the credentials.
// This is also the cheapest authenticated round-trip, so the
// diagnostics engine uses it as the connectivity probe.
func (c *Client) ListWorkspaces(ctx context.Context, creds Credentials) ([]Workspace, error) {
	var out []Workspace
	err := c.do(ctx, creds, "ListWorkspaces", http.MethodGet, "/members/me/organizations", "", nil, &out)
	return out, err
}

// GetWorkspace fetches one workspace by id.
func (c *Client) GetWorkspace(ctx context.Context, creds Credentials, workspaceID string) (*Workspace, error) {
	var out Workspace
	if err := c.do(ctx, creds, "GetWorkspace", http.MethodGet, "/organizations/"+workspaceID, workspaceID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBoards returns the open boards visible to the credentials.
func (c *Client) ListBoards(ctx context.Context, creds Credentials) ([]Board, error) {
	q := url.Values{"filter": {"open"}}
	var out []Board
	err := c.do(ctx, creds, "ListBoards", http.MethodGet, "/members/me/boards", "", q, &out)
	return out, err
}

// ListBoardsInWorkspace returns the open boards of one workspace.
func (c *Client) ListBoardsInWorkspace(ctx context.Context, creds Credentials, workspaceID string) ([]Board, error) {
	q := url.Values{"filter": {"open"}}
	var out []Board
	err := c.do(ctx, creds, "ListBoardsInWorkspace", http.MethodGet, "/organizations/"+workspaceID+"/boards", workspaceID, q, &out)
	return out, err
}

// GetBoard fetches one board by id.
func (c *Client) GetBoard(ctx context.Context, creds Credentials, boardID string) (*Board, error) {
	var out Board
	if err := c.do(ctx, creds, "GetBoard", http.MethodGet, "/boards/"+boardID, boardID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBoardLabels returns the labels defined on a board.
func (c *Client) GetBoardLabels(ctx context.Context, creds Credentials, boardID string) ([]Label, error) {
	var out []Label
	err := c.do(ctx, creds, "GetBoardLabels", http.MethodGet, "/boards/"+boardID+"/labels", boardID, nil, &out)
	return out, err
}

// GetRecentActivity returns the most recent actions on a board, newest
// first, capped at limit.
func (c *Client) GetRecentActivity(ctx context.Context, creds Credentials, boardID string, limit int) ([]Action, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var out []Action
	err := c.do(ctx, creds, "GetRecentActivity", http.MethodGet, "/boards/"+boardID+"/actions", boardID, q, &out)
	return out, err
}

// ─── Lists ───────────────────────────────────────────────────────────────────

// GetLists returns a board's lists. Archived lists are excluded unless
// includeArchived is set — scope traversals rely on this bound.
func (c *Client) GetLists(ctx context.Context, creds Credentials, boardID string, includeArchived bool) ([]List, error) {
	filter := "open"
	if includeArchived {
		filter = "all"
	}
	q := url.Values{"filter": {filter}}
	var out []List
	err := c.do(ctx, creds, "GetLists", http.MethodGet, "/boards/"+boardID+"/lists", boardID, q, &out)
	return out, err
}

// CreateList adds a list to a board.
func (c *Client) CreateList(ctx context.Context, creds Credentials, boardID, name string) (*List, error) {
	q := url.Values{"idBoard": {boardID}, "name": {name}}
	var out List
	if err := c.do(ctx, creds, "CreateList", http.MethodPost, "/lists", boardID, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ArchiveList closes a list. Archival is reversible on the remote side.
func (c *Client) ArchiveList(ctx context.Context, creds Credentials, listID string) (*List, error) {
	q := url.Values{"value": {"true"}}
	var out List
	if err := c.do(ctx, creds, "ArchiveList", http.MethodPut, "/lists/"+listID+"/closed", listID, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ─── Cards ───────────────────────────────────────────────────────────────────

// GetCardsByList returns the open cards in a list.
func (c *Client) GetCardsByList(ctx context.Context, creds Credentials, listID string) ([]Card, error) {
	var out []Card
	err := c.do(ctx, creds, "GetCardsByList", http.MethodGet, "/lists/"+listID+"/cards", listID, nil, &out)
	return out, err
}

// GetCard fetches one card by id.
func (c *Client) GetCard(ctx context.Context, creds Credentials, cardID string) (*Card, error) {
	var out Card
	if err := c.do(ctx, creds, "GetCard", http.MethodGet, "/cards/"+cardID, cardID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMyCards returns the open cards assigned to the credentials' member.
func (c *Client) GetMyCards(ctx context.Context, creds Credentials) ([]Card, error) {
	var out []Card
	err := c.do(ctx, creds, "GetMyCards", http.MethodGet, "/members/me/cards", "", nil, &out)
	return out, err
}

// CreateCard adds a card to a list.
func (c *Client) CreateCard(ctx context.Context, creds Credentials, p CreateCardParams) (*Card, error) {
	q := url.Values{"idList": {p.ListID}, "name": {p.Name}}
	if p.Desc != "" {
		q.Set("desc", p.Desc)
	}
	if p.Due != "" {
		q.Set("due", p.Due)
	}
	if p.Start != "" {
		q.Set("start", p.Start)
	}
	if len(p.IDLabels) > 0 {
		q.Set("idLabels", strings.Join(p.IDLabels, ","))
	}
	if len(p.IDMembers) > 0 {
		q.Set("idMembers", strings.Join(p.IDMembers, ","))
	}
	var out Card
	if err := c.do(ctx, creds, "CreateCard", http.MethodPost, "/cards", p.ListID, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCard applies a partial in-place update to a card.
func (c *Client) UpdateCard(ctx context.Context, creds Credentials, cardID string, p UpdateCardParams) (*Card, error) {
	q := url.Values{}
	if p.Name != nil {
		q.Set("name", *p.Name)
	}
	if p.Desc != nil {
		q.Set("desc", *p.Desc)
	}
	if p.Due != nil {
		q.Set("due", *p.Due)
	}
	if p.Start != nil {
		q.Set("start", *p.Start)
	}
	if p.DueComplete != nil {
		q.Set("dueComplete", strconv.FormatBool(*p.DueComplete))
	}
	var out Card
	if err := c.do(ctx, creds, "UpdateCard", http.MethodPut, "/cards/"+cardID, cardID, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MoveCard moves a card to another list.
func (c *Client) MoveCard(ctx context.Context, creds Credentials, cardID, listID string) (*Card, error) {
	q := url.Values{"idList": {listID}}
	var out Card
	if err := c.do(ctx, creds, "MoveCard", http.MethodPut, "/cards/"+cardID, cardID, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ArchiveCard closes a card. Cards are never hard-deleted by this server.
func (c *Client) ArchiveCard(ctx context.Context, creds Credentials, cardID string) (*Card, error) {
	q := url.Values{"closed": {"true"}}
	var out Card
	if err := c.do(ctx, creds, "ArchiveCard", http.MethodPut, "/cards/"+cardID, cardID, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddComment posts a comment on a card.
func (c *Client) AddComment(ctx context.Context, creds Credentials, cardID, text string) (*Action, error) {
	q := url.Values{"text": {text}}
	var out Action
	if err := c.do(ctx, creds, "AddComment", http.MethodPost, "/cards/"+cardID+"/actions/comments", cardID, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ─── Checklists ──────────────────────────────────────────────────────────────

// GetChecklists returns a card's checklists with their items embedded.
func (c *Client) GetChecklists(ctx context.Context, creds Credentials, cardID string) ([]Checklist, error) {
	q := url.Values{"checkItems": {"all"}}
	var out []Checklist
	err := c.do(ctx, creds, "GetChecklists", http.MethodGet, "/cards/"+cardID+"/checklists", cardID, q, &out)
	return out, err
}

// AddChecklistItem appends an item to a checklist in the incomplete state.
func (c *Client) AddChecklistItem(ctx context.Context, creds Credentials, checklistID, name string) (*CheckItem, error) {
	q := url.Values{"name": {name}}
	var out CheckItem
	if err := c.do(ctx, creds, "AddChecklistItem", http.MethodPost, "/checklists/"+checklistID+"/checkItems", checklistID, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

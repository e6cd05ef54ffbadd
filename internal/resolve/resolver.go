// Package resolve turns human-readable checklist names into concrete
// entities. Checklist names are unique only within their owning card,
// so every lookup is scoped: a card id gives the cheap path, a board id
// the expensive traversal, and no scope at all is a hard error — a
// global search could silently match an item the caller never meant.
package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/MissionSquad/mcp-trello/internal/trello"
)

// BoardService is the slice of the remote board service the resolver
// consumes. Satisfied by *trello.Client.
type BoardService interface {
	GetCard(ctx context.Context, creds trello.Credentials, cardID string) (*trello.Card, error)
	GetLists(ctx context.Context, creds trello.Credentials, boardID string, includeArchived bool) ([]trello.List, error)
	GetCardsByList(ctx context.Context, creds trello.Credentials, listID string) ([]trello.Card, error)
	GetChecklists(ctx context.Context, creds trello.Credentials, cardID string) ([]trello.Checklist, error)
}

// Scope is the (card, board) context for a name-based lookup. CardID
// wins when both are set. IncludeArchived widens a board traversal to
// archived lists; the default excludes them.
type Scope struct {
	CardID          string
	BoardID         string
	IncludeArchived bool
}

// Empty reports whether no scope at all was supplied.
func (s Scope) Empty() bool { return s.CardID == "" && s.BoardID == "" }

func (s Scope) describe() string {
	switch {
	case s.CardID != "":
		return fmt.Sprintf("card %s", s.CardID)
	case s.BoardID != "":
		return fmt.Sprintf("board %s", s.BoardID)
	default:
		return ""
	}
}

// Candidate is one checklist found during a scope traversal, annotated
// with its owning card and board.
type Candidate struct {
	Checklist trello.Checklist `json:"checklist"`
	CardID    string           `json:"cardId"`
	CardName  string           `json:"cardName"`
	BoardID   string           `json:"boardId"`
}

// ItemMatch is one checklist item matched by a description search,
// annotated with where it lives.
type ItemMatch struct {
	Item          trello.CheckItem `json:"item"`
	ChecklistID   string           `json:"checklistId"`
	ChecklistName string           `json:"checklistName"`
	CardID        string           `json:"cardId"`
	CardName      string           `json:"cardName"`
	BoardID       string           `json:"boardId"`
}

// Resolver enumerates checklists within a scope and applies the
// disambiguation policy.
type Resolver struct {
	svc BoardService
}

// NewResolver creates a Resolver over the given board service.
func NewResolver(svc BoardService) *Resolver {
	return &Resolver{svc: svc}
}

// ChecklistByName resolves a checklist name to exactly one checklist
// within scope. Name comparison is exact and case-sensitive. Zero
// matches yields *NotFoundError, more than one *AmbiguousMatchError.
func (r *Resolver) ChecklistByName(ctx context.Context, creds trello.Credentials, name string, scope Scope) (*Candidate, error) {
	candidates, err := r.collect(ctx, creds, "getChecklistByName", scope)
	if err != nil {
		return nil, err
	}

	var matches []Candidate
	for _, c := range candidates {
		if c.Checklist.Name == name {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Kind: "checklist", Name: name, Scope: scope}
	case 1:
		return &matches[0], nil
	default:
		return nil, &AmbiguousMatchError{Name: name, Candidates: matches}
	}
}

// ItemsByDescription returns every checklist item within scope whose
// text contains query, case-insensitively. "Find all" is the stated
// intent, so no uniqueness is required and an empty result is not an
// error.
func (r *Resolver) ItemsByDescription(ctx context.Context, creds trello.Credentials, query string, scope Scope) ([]ItemMatch, error) {
	candidates, err := r.collect(ctx, creds, "findChecklistItemsByDescription", scope)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var matches []ItemMatch
	for _, c := range candidates {
		for _, item := range c.Checklist.CheckItems {
			if strings.Contains(strings.ToLower(item.Name), needle) {
				matches = append(matches, ItemMatch{
					Item:          item,
					ChecklistID:   c.Checklist.ID,
					ChecklistName: c.Checklist.Name,
					CardID:        c.CardID,
					CardName:      c.CardName,
					BoardID:       c.BoardID,
				})
			}
		}
	}

	// Deterministic assembly regardless of traversal order.
	sort.Slice(matches, func(i, j int) bool { return matches[i].Item.ID < matches[j].Item.ID })
	return matches, nil
}

// collect enumerates every checklist visible under scope. The card path
// is O(checklists on the card); the board path walks every list and
// card. Archived lists are excluded unless the scope asks for them —
// that is the bound that keeps the expensive path tractable.
func (r *Resolver) collect(ctx context.Context, creds trello.Credentials, op string, scope Scope) ([]Candidate, error) {
	if scope.CardID != "" {
		card, err := r.svc.GetCard(ctx, creds, scope.CardID)
		if err != nil {
			return nil, err
		}
		return r.checklistsOnCard(ctx, creds, card)
	}

	if scope.BoardID == "" {
		return nil, &MissingScopeError{Operation: op}
	}

	lists, err := r.svc.GetLists(ctx, creds, scope.BoardID, scope.IncludeArchived)
	if err != nil {
		return nil, err
	}

	var all []Candidate
	for _, list := range lists {
		cards, err := r.svc.GetCardsByList(ctx, creds, list.ID)
		if err != nil {
			return nil, err
		}
		for i := range cards {
			found, err := r.checklistsOnCard(ctx, creds, &cards[i])
			if err != nil {
				return nil, err
			}
			all = append(all, found...)
		}
	}

	// Results are ordered by entity id, not by traversal order.
	sort.Slice(all, func(i, j int) bool { return all[i].Checklist.ID < all[j].Checklist.ID })
	return all, nil
}

func (r *Resolver) checklistsOnCard(ctx context.Context, creds trello.Credentials, card *trello.Card) ([]Candidate, error) {
	checklists, err := r.svc.GetChecklists(ctx, creds, card.ID)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(checklists))
	for _, cl := range checklists {
		boardID := cl.IDBoard
		if boardID == "" {
			boardID = card.IDBoard
		}
		candidates = append(candidates, Candidate{
			Checklist: cl,
			CardID:    card.ID,
			CardName:  card.Name,
			BoardID:   boardID,
		})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Checklist.ID < candidates[j].Checklist.ID })
	return candidates, nil
}

package resolve

import (
	"context"
	"errors"

	"github.com/MissionSquad/mcp-trello/internal/trello"
)

// AcceptanceCriteriaName is the fixed checklist name used by the
// acceptance-criteria convenience lookup.
const AcceptanceCriteriaName = "Acceptance Criteria"

// ChecklistSummary is the derived view of one resolved checklist. When
// Found is false the checklist simply does not exist in the searched
// scope — callers commonly treat that as a normal outcome, so it is a
// sentinel result rather than an error.
type ChecklistSummary struct {
	Found                bool               `json:"found"`
	Checklist            *trello.Checklist  `json:"checklist,omitempty"`
	CardID               string             `json:"cardId,omitempty"`
	CardName             string             `json:"cardName,omitempty"`
	BoardID              string             `json:"boardId,omitempty"`
	Items                []trello.CheckItem `json:"items"`
	CompletionPercentage float64            `json:"completionPercentage"`
}

// Index answers derived checklist queries on top of the resolver. It
// holds no cache: every call re-runs the scope traversal. Checklists
// are small, so repeated round-trips beat an invalidation problem.
type Index struct {
	resolver *Resolver
}

// NewIndex creates an Index over the given resolver.
func NewIndex(resolver *Resolver) *Index {
	return &Index{resolver: resolver}
}

// ChecklistByName resolves a checklist and computes its derived values.
// A NotFoundError from the resolver becomes the Found:false sentinel;
// MissingScopeError and AmbiguousMatchError still propagate.
func (ix *Index) ChecklistByName(ctx context.Context, creds trello.Credentials, name string, scope Scope) (*ChecklistSummary, error) {
	candidate, err := ix.resolver.ChecklistByName(ctx, creds, name, scope)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return &ChecklistSummary{Found: false, Items: []trello.CheckItem{}}, nil
		}
		return nil, err
	}

	items := candidate.Checklist.CheckItems
	if items == nil {
		items = []trello.CheckItem{}
	}
	cl := candidate.Checklist
	return &ChecklistSummary{
		Found:                true,
		Checklist:            &cl,
		CardID:               candidate.CardID,
		CardName:             candidate.CardName,
		BoardID:              candidate.BoardID,
		Items:                items,
		CompletionPercentage: CompletionPercentage(items),
	}, nil
}

// ChecklistItems resolves a checklist by name and returns its items.
// Unlike ChecklistByName, an absent checklist is an error here.
func (ix *Index) ChecklistItems(ctx context.Context, creds trello.Credentials, name string, scope Scope) ([]trello.CheckItem, error) {
	candidate, err := ix.resolver.ChecklistByName(ctx, creds, name, scope)
	if err != nil {
		return nil, err
	}
	if candidate.Checklist.CheckItems == nil {
		return []trello.CheckItem{}, nil
	}
	return candidate.Checklist.CheckItems, nil
}

// AcceptanceCriteria is ChecklistByName fixed to the literal name
// "Acceptance Criteria". It inherits the same scope and disambiguation
// behavior.
func (ix *Index) AcceptanceCriteria(ctx context.Context, creds trello.Credentials, scope Scope) (*ChecklistSummary, error) {
	return ix.ChecklistByName(ctx, creds, AcceptanceCriteriaName, scope)
}

// FindItems is the description search, re-exported at the index level
// so tools have a single query surface.
func (ix *Index) FindItems(ctx context.Context, creds trello.Credentials, query string, scope Scope) ([]ItemMatch, error) {
	return ix.resolver.ItemsByDescription(ctx, creds, query, scope)
}

// CompletionPercentage is complete-count / total-count. A checklist
// with zero items is 0, never NaN.
func CompletionPercentage(items []trello.CheckItem) float64 {
	if len(items) == 0 {
		return 0
	}
	complete := 0
	for _, item := range items {
		if item.Complete() {
			complete++
		}
	}
	return float64(complete) / float64(len(items))
}

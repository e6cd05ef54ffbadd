package resolve

import (
	"fmt"
	"strings"
)

// MissingScopeError is returned when a name lookup has neither a card
// nor a board to search in. Always recoverable by the caller supplying
// more scope; never retried automatically.
type MissingScopeError struct {
	Operation string
}

func (e *MissingScopeError) Error() string {
	return fmt.Sprintf(
		"%s requires a scope: supply a cardId or boardId, or set an active board first",
		e.Operation,
	)
}

// NotFoundError is returned when no entity matches a resolution query
// within the searched scope. Terminal for that call.
type NotFoundError struct {
	Kind  string // "checklist", "board", "workspace", ...
	Name  string // name searched for, when name-based
	ID    string // id searched for, when id-based
	Scope Scope
}

func (e *NotFoundError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind)
	if e.Name != "" {
		fmt.Fprintf(&sb, " %q", e.Name)
	}
	if e.ID != "" {
		fmt.Fprintf(&sb, " %s", e.ID)
	}
	sb.WriteString(" not found")
	if desc := e.Scope.describe(); desc != "" {
		fmt.Fprintf(&sb, " in %s", desc)
	}
	return sb.String()
}

// AmbiguousMatchError is returned when more than one candidate matches
// a name within scope. It carries every candidate so the caller can
// re-issue the lookup with a narrower scope — the resolver never picks
// one by recency or position.
type AmbiguousMatchError struct {
	Name       string
	Candidates []Candidate
}

func (e *AmbiguousMatchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "checklist name %q is ambiguous: %d matches", e.Name, len(e.Candidates))
	for _, c := range e.Candidates {
		fmt.Fprintf(&sb, "; checklist %s on card %q (%s)", c.Checklist.ID, c.CardName, c.CardID)
	}
	sb.WriteString(". Narrow the scope with a cardId.")
	return sb.String()
}

package trello

// Entity shapes mirror the Trello REST API's JSON field names. Only the
// fields this server reads or writes are declared — unknown fields are
// dropped at decode time.

// Workspace is a Trello organization: a collection of boards.
type Workspace struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// Board is a collection of lists.
type Board struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Desc           string `json:"desc,omitempty"`
	Closed         bool   `json:"closed"`
	IDOrganization string `json:"idOrganization,omitempty"`
	URL            string `json:"url,omitempty"`
	ShortURL       string `json:"shortUrl,omitempty"`
}

// List is a column of cards on a board.
type List struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	IDBoard string  `json:"idBoard"`
	Closed  bool    `json:"closed"`
	Pos     float64 `json:"pos,omitempty"`
}

// Card is a unit of work. Cards are archived (closed), never hard-deleted.
type Card struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Desc        string   `json:"desc,omitempty"`
	IDList      string   `json:"idList"`
	IDBoard     string   `json:"idBoard"`
	Closed      bool     `json:"closed"`
	Due         string   `json:"due,omitempty"`
	DueComplete bool     `json:"dueComplete"`
	Start       string   `json:"start,omitempty"`
	IDLabels    []string `json:"idLabels,omitempty"`
	IDMembers   []string `json:"idMembers,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// Checklist is a named group of items attached to exactly one card.
// The name is unique only within its owning card — cross-card
// collisions are expected.
type Checklist struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	IDCard     string      `json:"idCard"`
	IDBoard    string      `json:"idBoard,omitempty"`
	CheckItems []CheckItem `json:"checkItems,omitempty"`
}

// CheckItem is a single line in a checklist. State is binary:
// "complete" or "incomplete".
type CheckItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	State       string `json:"state"`
	IDChecklist string `json:"idChecklist,omitempty"`
	Due         string `json:"due,omitempty"`
}

// CheckItemStateComplete is the state value of a finished checklist item.
const CheckItemStateComplete = "complete"

// Complete reports whether the item is in the complete state.
func (i CheckItem) Complete() bool { return i.State == CheckItemStateComplete }

// Label is a board-scoped tag.
type Label struct {
	ID      string `json:"id"`
	IDBoard string `json:"idBoard"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"`
}

// Member is a user visible to the current credentials.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// Action is one entry from a board's activity log. Data is kept raw —
// its shape varies wildly by action type and this server only relays it.
type Action struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Date          string         `json:"date"`
	Data          map[string]any `json:"data,omitempty"`
	MemberCreator *Member        `json:"memberCreator,omitempty"`
}

// CreateCardParams holds the writable fields for a new card.
type CreateCardParams struct {
	ListID    string
	Name      string
	Desc      string
	Due       string
	Start     string
	IDLabels  []string
	IDMembers []string
}

// UpdateCardParams holds partial updates for an existing card. Nil
// pointers mean "leave unchanged".
type UpdateCardParams struct {
	Name        *string
	Desc        *string
	Due         *string
	Start       *string
	DueComplete *bool
}

package diagnose

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/MissionSquad/mcp-trello/internal/session"
	"github.com/MissionSquad/mcp-trello/internal/trello"
)

var testCreds = trello.Credentials{Key: "k", Token: "t"}

// stepClock hands out times advancing by a fixed step per call, so
// latency math is deterministic.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

// fakeSvc is an in-memory board service with per-method failure and
// panic injection.
type fakeSvc struct {
	workspaces []trello.Workspace
	boards     []trello.Board
	lists      map[string][]trello.List      // by board id
	cards      map[string][]trello.Card      // by list id
	checklists map[string][]trello.Checklist // by card id
	labels     map[string][]trello.Label     // by board id

	listWorkspacesErr error
	listBoardsErr     error
	getBoardErr       map[string]error
	getWorkspaceErr   map[string]error
	checklistsErr     error
	checklistsPanic   bool
}

func (f *fakeSvc) ListWorkspaces(context.Context, trello.Credentials) ([]trello.Workspace, error) {
	if f.listWorkspacesErr != nil {
		return nil, f.listWorkspacesErr
	}
	return f.workspaces, nil
}

func (f *fakeSvc) ListBoards(context.Context, trello.Credentials) ([]trello.Board, error) {
	if f.listBoardsErr != nil {
		return nil, f.listBoardsErr
	}
	return f.boards, nil
}

func (f *fakeSvc) GetBoard(_ context.Context, _ trello.Credentials, boardID string) (*trello.Board, error) {
	if err := f.getBoardErr[boardID]; err != nil {
		return nil, err
	}
	for i := range f.boards {
		if f.boards[i].ID == boardID {
			return &f.boards[i], nil
		}
	}
	return nil, &trello.APIError{Op: "GetBoard", Entity: boardID, StatusCode: 404}
}

func (f *fakeSvc) GetWorkspace(_ context.Context, _ trello.Credentials, workspaceID string) (*trello.Workspace, error) {
	if err := f.getWorkspaceErr[workspaceID]; err != nil {
		return nil, err
	}
	for i := range f.workspaces {
		if f.workspaces[i].ID == workspaceID {
			return &f.workspaces[i], nil
		}
	}
	return nil, &trello.APIError{Op: "GetWorkspace", Entity: workspaceID, StatusCode: 404}
}

func (f *fakeSvc) GetLists(_ context.Context, _ trello.Credentials, boardID string, includeArchived bool) ([]trello.List, error) {
	var out []trello.List
	for _, l := range f.lists[boardID] {
		if l.Closed && !includeArchived {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeSvc) GetCardsByList(_ context.Context, _ trello.Credentials, listID string) ([]trello.Card, error) {
	return f.cards[listID], nil
}

func (f *fakeSvc) GetChecklists(_ context.Context, _ trello.Credentials, cardID string) ([]trello.Checklist, error) {
	if f.checklistsPanic {
		panic("checklist subsystem exploded")
	}
	if f.checklistsErr != nil {
		return nil, f.checklistsErr
	}
	return f.checklists[cardID], nil
}

func (f *fakeSvc) GetBoardLabels(_ context.Context, _ trello.Credentials, boardID string) ([]trello.Label, error) {
	return f.labels[boardID], nil
}

// newHealthySvc builds one workspace holding board bA: list l1 with
// card c1 carrying one checklist, and one board-scoped label.
func newHealthySvc() *fakeSvc {
	return &fakeSvc{
		workspaces: []trello.Workspace{{ID: "w1", DisplayName: "Engineering"}},
		boards:     []trello.Board{{ID: "bA", Name: "Alpha"}},
		lists: map[string][]trello.List{
			"bA": {{ID: "l1", Name: "Doing", IDBoard: "bA"}},
		},
		cards: map[string][]trello.Card{
			"l1": {{ID: "c1", Name: "Ship it", IDList: "l1", IDBoard: "bA"}},
		},
		checklists: map[string][]trello.Checklist{
			"c1": {{ID: "cl1", Name: "Acceptance Criteria", IDCard: "c1"}},
		},
		labels: map[string][]trello.Label{
			"bA": {{ID: "lab1", IDBoard: "bA", Name: "urgent"}},
		},
		getBoardErr:     map[string]error{},
		getWorkspaceErr: map[string]error{},
	}
}

// newTestEngine wires an engine over svc with a deterministic clock.
// activeBoard/activeWorkspace seed the session.
func newTestEngine(svc Service, activeBoard, activeWorkspace string) (*Engine, *session.Manager) {
	sess := session.NewManager(nil, nil, session.Context{
		ActiveBoardID:     activeBoard,
		ActiveWorkspaceID: activeWorkspace,
	})
	e := NewEngine(svc, sess)
	clock := &stepClock{t: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), step: 10 * time.Millisecond}
	e.now = clock.now
	return e, sess
}

func findByCode(t *testing.T, findings []Finding, code string) Finding {
	t.Helper()
	for _, f := range findings {
		if f.Code == code {
			return f
		}
	}
	t.Fatalf("no finding with code %s in %+v", code, findings)
	return Finding{}
}

// --- Basic ---

func TestBasicHealth_OK(t *testing.T) {
	e, _ := newTestEngine(newHealthySvc(), "", "")

	report := e.BasicHealth(context.Background(), testCreds)
	if report.Overall != StatusOK {
		t.Errorf("Overall = %s, want ok", report.Overall)
	}
	if report.ID == "" {
		t.Error("report ID is empty")
	}
	if report.LatencyMS != 10 {
		t.Errorf("LatencyMS = %d, want 10 (one clock step)", report.LatencyMS)
	}
	f := findByCode(t, report.Findings, CodeConnectivity)
	if f.Severity != SeverityInfo {
		t.Errorf("connectivity severity = %s, want info", f.Severity)
	}
	if !strings.Contains(f.Message, "1 workspaces") {
		t.Errorf("message %q should report the workspace count", f.Message)
	}
}

func TestBasicHealth_Unreachable(t *testing.T) {
	svc := newHealthySvc()
	svc.listWorkspacesErr = &trello.APIError{Op: "ListWorkspaces", StatusCode: 503, Message: "down"}
	e, _ := newTestEngine(svc, "", "")

	report := e.BasicHealth(context.Background(), testCreds)
	if report.Overall != StatusDown {
		t.Errorf("Overall = %s, want down", report.Overall)
	}
	f := findByCode(t, report.Findings, CodeConnectivity)
	if f.Severity != SeverityError {
		t.Errorf("severity = %s, want error", f.Severity)
	}
}

func TestBasicHealth_SlowIsDegraded(t *testing.T) {
	e, _ := newTestEngine(newHealthySvc(), "", "")
	clock := &stepClock{t: time.Now(), step: 2 * time.Second}
	e.now = clock.now

	report := e.BasicHealth(context.Background(), testCreds)
	if report.Overall != StatusDegraded {
		t.Errorf("Overall = %s, want degraded", report.Overall)
	}
	f := findByCode(t, report.Findings, CodeConnectivity)
	if f.Severity != SeverityWarning || !strings.Contains(f.Message, "slow") {
		t.Errorf("finding = %+v, want slow warning", f)
	}
}

// --- Detailed ---

func TestDetailedHealth_AllProbesRun(t *testing.T) {
	e, _ := newTestEngine(newHealthySvc(), "bA", "")

	report := e.DetailedHealth(context.Background(), testCreds)
	if report.Overall != StatusOK {
		t.Fatalf("Overall = %s, want ok (findings: %+v)", report.Overall, report.Findings)
	}
	for _, code := range []string{CodeConnectivity, CodeBoardReachability, CodeCounts, CodeChecklistSubsystem, CodeRateLimitHeadroom} {
		f := findByCode(t, report.Findings, code)
		if f.Severity != SeverityInfo {
			t.Errorf("%s severity = %s, want info", code, f.Severity)
		}
	}
	counts := findByCode(t, report.Findings, CodeCounts)
	if !strings.Contains(counts.Message, "1 open lists, 1 open cards") {
		t.Errorf("counts message = %q", counts.Message)
	}
}

func TestDetailedHealth_ProbeFailureIsIsolated(t *testing.T) {
	svc := newHealthySvc()
	svc.checklistsErr = &trello.APIError{Op: "GetChecklists", StatusCode: 500, Message: "boom"}
	e, _ := newTestEngine(svc, "bA", "")

	report := e.DetailedHealth(context.Background(), testCreds)

	// The failing probe is one degraded finding; its siblings still ran.
	failed := findByCode(t, report.Findings, CodeChecklistSubsystem)
	if failed.Severity != SeverityError || !strings.Contains(failed.Message, "probe failed") {
		t.Errorf("checklist finding = %+v, want probe-failed error", failed)
	}
	board := findByCode(t, report.Findings, CodeBoardReachability)
	if board.Severity != SeverityInfo {
		t.Errorf("board probe severity = %s, want info despite checklist failure", board.Severity)
	}
	if report.Overall != StatusDegraded {
		t.Errorf("Overall = %s, want degraded (connectivity itself is fine)", report.Overall)
	}
}

func TestDetailedHealth_ProbePanicIsIsolated(t *testing.T) {
	svc := newHealthySvc()
	svc.checklistsPanic = true
	e, _ := newTestEngine(svc, "bA", "")

	report := e.DetailedHealth(context.Background(), testCreds)

	failed := findByCode(t, report.Findings, CodeChecklistSubsystem)
	if failed.Severity != SeverityError || !strings.Contains(failed.Message, "probe panicked") {
		t.Errorf("checklist finding = %+v, want probe-panicked error", failed)
	}
	rate := findByCode(t, report.Findings, CodeRateLimitHeadroom)
	if rate.Severity != SeverityInfo {
		t.Errorf("later probe severity = %s, want info (panic must not abort the battery)", rate.Severity)
	}
}

func TestDetailedHealth_RateLimitExhausted(t *testing.T) {
	svc := newHealthySvc()
	svc.listBoardsErr = &trello.APIError{Op: "ListBoards", StatusCode: 429}
	e, _ := newTestEngine(svc, "bA", "")

	report := e.DetailedHealth(context.Background(), testCreds)
	f := findByCode(t, report.Findings, CodeRateLimitHeadroom)
	if f.Severity != SeverityError || !strings.Contains(f.Message, "rate limit exhausted") {
		t.Errorf("finding = %+v, want rate-limit-exhausted error", f)
	}
}

func TestDetailedHealth_NoActiveBoardSkipsScopedProbes(t *testing.T) {
	e, _ := newTestEngine(newHealthySvc(), "", "")

	report := e.DetailedHealth(context.Background(), testCreds)
	if report.Overall != StatusOK {
		t.Fatalf("Overall = %s, want ok", report.Overall)
	}
	counts := findByCode(t, report.Findings, CodeCounts)
	if !strings.Contains(counts.Message, "skipped") {
		t.Errorf("counts message = %q, want skipped note", counts.Message)
	}
}

// --- Metadata ---

func TestMetadataHealth_Clean(t *testing.T) {
	e, _ := newTestEngine(newHealthySvc(), "bA", "w1")

	report := e.MetadataHealth(context.Background(), testCreds)
	if report.Overall != StatusOK {
		t.Fatalf("Overall = %s, want ok (findings: %+v)", report.Overall, report.Findings)
	}
	integrity := findByCode(t, report.Findings, CodeCardListRef)
	if !strings.Contains(integrity.Message, "intact") {
		t.Errorf("integrity message = %q", integrity.Message)
	}
}

func TestMetadataHealth_StaleActiveBoard(t *testing.T) {
	svc := newHealthySvc()
	e, _ := newTestEngine(svc, "ghost", "")

	report := e.MetadataHealth(context.Background(), testCreds)
	if report.Overall != StatusDegraded {
		t.Errorf("Overall = %s, want degraded", report.Overall)
	}
	f := findByCode(t, report.Findings, CodeActiveBoardStale)
	if f.Severity != SeverityError {
		t.Errorf("severity = %s, want error", f.Severity)
	}
	if f.Entity != "ghost" {
		t.Errorf("Entity = %q, want ghost", f.Entity)
	}
}

func TestMetadataHealth_StaleActiveWorkspace(t *testing.T) {
	e, _ := newTestEngine(newHealthySvc(), "", "gone")

	report := e.MetadataHealth(context.Background(), testCreds)
	f := findByCode(t, report.Findings, CodeActiveWorkspaceStale)
	if f.Severity != SeverityError || f.Entity != "gone" {
		t.Errorf("finding = %+v, want error on entity gone", f)
	}
}

func TestMetadataHealth_BrokenCardRef(t *testing.T) {
	svc := newHealthySvc()
	svc.cards["l1"] = append(svc.cards["l1"],
		trello.Card{ID: "c9", Name: "Stray", IDList: "l1", IDBoard: "other"})
	e, _ := newTestEngine(svc, "bA", "")

	report := e.MetadataHealth(context.Background(), testCreds)
	if report.Overall != StatusDegraded {
		t.Errorf("Overall = %s, want degraded", report.Overall)
	}
	var found bool
	for _, f := range report.Findings {
		if f.Code == CodeCardListRef && f.Entity == "c9" && f.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("no card-ref warning for c9 in %+v", report.Findings)
	}
}

func TestMetadataHealth_BrokenLabelRef(t *testing.T) {
	svc := newHealthySvc()
	svc.labels["bA"] = []trello.Label{{ID: "lab9", IDBoard: "other", Name: "stray"}}
	e, _ := newTestEngine(svc, "bA", "")

	report := e.MetadataHealth(context.Background(), testCreds)
	f := findByCode(t, report.Findings, CodeLabelBoardRef)
	if f.Severity != SeverityWarning || f.Entity != "lab9" {
		t.Errorf("finding = %+v, want warning on lab9", f)
	}
}

func TestMetadataHealth_NoSessionState(t *testing.T) {
	e, _ := newTestEngine(newHealthySvc(), "", "")

	report := e.MetadataHealth(context.Background(), testCreds)
	if report.Overall != StatusOK {
		t.Errorf("Overall = %s, want ok", report.Overall)
	}
	if len(report.Findings) != 1 || !strings.Contains(report.Findings[0].Message, "limited to session state") {
		t.Errorf("findings = %+v, want the single limited-checks note", report.Findings)
	}
}

// --- Performance ---

func TestPerformanceHealth_ReportsAllClasses(t *testing.T) {
	e, _ := newTestEngine(newHealthySvc(), "bA", "")

	report := e.PerformanceHealth(context.Background(), testCreds)
	if report.Overall != StatusOK {
		t.Fatalf("Overall = %s, want ok", report.Overall)
	}

	classes := map[string]bool{}
	for _, f := range report.Findings {
		if f.Code == CodePerfRead {
			classes[f.Entity] = true
			if f.Data == nil || f.Data["verdict"] != "acceptable" {
				t.Errorf("%s data = %+v, want acceptable verdict with raw numbers", f.Entity, f.Data)
			}
		}
	}
	for _, want := range []string{"workspace-read", "board-read", "list-read"} {
		if !classes[want] {
			t.Errorf("no measurement for class %s", want)
		}
	}

	write := findByCode(t, report.Findings, CodePerfWrite)
	if !strings.Contains(write.Message, "not measured") {
		t.Errorf("write finding = %q, want the explicit not-measured note", write.Message)
	}
}

func TestPerformanceHealth_NoActiveBoardSkipsListClass(t *testing.T) {
	e, _ := newTestEngine(newHealthySvc(), "", "")

	report := e.PerformanceHealth(context.Background(), testCreds)
	for _, f := range report.Findings {
		if f.Code == CodePerfRead && f.Entity == "list-read" {
			t.Error("list-read measured without an active board")
		}
	}
}

func TestPerformanceHealth_SlowMedianIsWarning(t *testing.T) {
	e, _ := newTestEngine(newHealthySvc(), "", "")
	clock := &stepClock{t: time.Now(), step: 2 * time.Second}
	e.now = clock.now

	report := e.PerformanceHealth(context.Background(), testCreds)
	if report.Overall != StatusDegraded {
		t.Errorf("Overall = %s, want degraded", report.Overall)
	}
	f := findByCode(t, report.Findings, CodePerfRead)
	if f.Severity != SeverityWarning || f.Data["verdict"] != "slow" {
		t.Errorf("finding = %+v, want slow warning", f)
	}
}

func TestPerformanceHealth_SampleFailure(t *testing.T) {
	svc := newHealthySvc()
	svc.listBoardsErr = &trello.APIError{Op: "ListBoards", StatusCode: 500}
	e, _ := newTestEngine(svc, "", "")

	report := e.PerformanceHealth(context.Background(), testCreds)
	var found bool
	for _, f := range report.Findings {
		if f.Code == CodePerfRead && f.Entity == "board-read" && f.Severity == SeverityError {
			found = true
		}
	}
	if !found {
		t.Errorf("no error finding for board-read in %+v", report.Findings)
	}
}

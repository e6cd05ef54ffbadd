package diagnose

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/MissionSquad/mcp-trello/internal/session"
	"github.com/MissionSquad/mcp-trello/internal/trello"
)

// slowCallThreshold is the soft bound above which a single round-trip
// is reported as slow. It is a reporting aid, not a contract.
const slowCallThreshold = 1500 * time.Millisecond

// perfSamples is how many round-trips each performance class measures.
const perfSamples = 3

// Service is the slice of the remote board service the diagnostics
// engine probes. Satisfied by *trello.Client.
type Service interface {
	ListWorkspaces(ctx context.Context, creds trello.Credentials) ([]trello.Workspace, error)
	ListBoards(ctx context.Context, creds trello.Credentials) ([]trello.Board, error)
	GetBoard(ctx context.Context, creds trello.Credentials, boardID string) (*trello.Board, error)
	GetWorkspace(ctx context.Context, creds trello.Credentials, workspaceID string) (*trello.Workspace, error)
	GetLists(ctx context.Context, creds trello.Credentials, boardID string, includeArchived bool) ([]trello.List, error)
	GetCardsByList(ctx context.Context, creds trello.Credentials, listID string) ([]trello.Card, error)
	GetChecklists(ctx context.Context, creds trello.Credentials, cardID string) ([]trello.Checklist, error)
	GetBoardLabels(ctx context.Context, creds trello.Credentials, boardID string) ([]trello.Label, error)
}

// Engine runs health checks. It holds no state between invocations.
type Engine struct {
	svc     Service
	session *session.Manager
	now     func() time.Time
}

// NewEngine creates a diagnostics engine over the given service and
// session manager.
func NewEngine(svc Service, sess *session.Manager) *Engine {
	return &Engine{svc: svc, session: sess, now: time.Now}
}

// ─── Basic health ────────────────────────────────────────────────────────────

// BasicHealth performs one authenticated round-trip to confirm the
// credential pair works and the service is reachable.
func (e *Engine) BasicHealth(ctx context.Context, creds trello.Credentials) *Report {
	report := newReport(e.now())

	start := e.now()
	workspaces, err := e.svc.ListWorkspaces(ctx, creds)
	elapsed := e.now().Sub(start)
	report.LatencyMS = elapsed.Milliseconds()

	switch {
	case err != nil:
		report.Findings = append(report.Findings, Finding{
			Code:     CodeConnectivity,
			Severity: SeverityError,
			Message:  fmt.Sprintf("service unreachable: %v", err),
		})
	case elapsed > slowCallThreshold:
		report.Findings = append(report.Findings, Finding{
			Code:     CodeConnectivity,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("service reachable but slow (%dms, %d workspaces)", elapsed.Milliseconds(), len(workspaces)),
		})
	default:
		report.Findings = append(report.Findings, Finding{
			Code:     CodeConnectivity,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("service reachable (%dms, %d workspaces visible)", elapsed.Milliseconds(), len(workspaces)),
		})
	}

	return report.finalize()
}

// ─── Detailed health ─────────────────────────────────────────────────────────

// DetailedHealth runs the basic check plus a fixed battery of subsystem
// probes. Probes run to completion even when an earlier one fails, and
// each failure — including a panic — is isolated into that probe's
// finding, never a thrown error for the whole report.
func (e *Engine) DetailedHealth(ctx context.Context, creds trello.Credentials) *Report {
	report := e.BasicHealth(ctx, creds)

	report.Findings = append(report.Findings,
		e.runProbe(CodeBoardReachability, func() (string, error) {
			return e.probeBoardReachability(ctx, creds)
		}),
		e.runProbe(CodeCounts, func() (string, error) {
			return e.probeCounts(ctx, creds)
		}),
		e.runProbe(CodeChecklistSubsystem, func() (string, error) {
			return e.probeChecklists(ctx, creds)
		}),
		e.runProbe(CodeRateLimitHeadroom, func() (string, error) {
			return e.probeRateLimit(ctx, creds)
		}),
	)

	return report.finalize()
}

// runProbe converts a probe's outcome into a finding. A panic becomes
// that probe's failed status.
func (e *Engine) runProbe(code string, probe func() (string, error)) (f Finding) {
	defer func() {
		if r := recover(); r != nil {
			f = Finding{Code: code, Severity: SeverityError, Message: fmt.Sprintf("probe panicked: %v", r)}
		}
	}()

	msg, err := probe()
	if err != nil {
		return Finding{Code: code, Severity: SeverityError, Message: fmt.Sprintf("probe failed: %v", err)}
	}
	return Finding{Code: code, Severity: SeverityInfo, Message: msg}
}

func (e *Engine) probeBoardReachability(ctx context.Context, creds trello.Credentials) (string, error) {
	if boardID := e.session.ActiveBoard(); boardID != "" {
		board, err := e.svc.GetBoard(ctx, creds, boardID)
		if err != nil {
			return "", fmt.Errorf("active board %s: %w", boardID, err)
		}
		return fmt.Sprintf("active board %q (%s) reachable", board.Name, board.ID), nil
	}

	boards, err := e.svc.ListBoards(ctx, creds)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("no active board set; %d boards visible", len(boards)), nil
}

func (e *Engine) probeCounts(ctx context.Context, creds trello.Credentials) (string, error) {
	boardID := e.session.ActiveBoard()
	if boardID == "" {
		return "no active board set; list/card counts skipped", nil
	}

	lists, err := e.svc.GetLists(ctx, creds, boardID, false)
	if err != nil {
		return "", err
	}
	cards := 0
	for _, list := range lists {
		cs, err := e.svc.GetCardsByList(ctx, creds, list.ID)
		if err != nil {
			return "", fmt.Errorf("list %s: %w", list.ID, err)
		}
		cards += len(cs)
	}
	return fmt.Sprintf("active board has %d open lists, %d open cards", len(lists), cards), nil
}

func (e *Engine) probeChecklists(ctx context.Context, creds trello.Credentials) (string, error) {
	boardID := e.session.ActiveBoard()
	if boardID == "" {
		return "no active board set; checklist probe skipped", nil
	}

	lists, err := e.svc.GetLists(ctx, creds, boardID, false)
	if err != nil {
		return "", err
	}
	// One representative card is enough to exercise the subsystem.
	for _, list := range lists {
		cards, err := e.svc.GetCardsByList(ctx, creds, list.ID)
		if err != nil {
			return "", fmt.Errorf("list %s: %w", list.ID, err)
		}
		if len(cards) == 0 {
			continue
		}
		checklists, err := e.svc.GetChecklists(ctx, creds, cards[0].ID)
		if err != nil {
			return "", fmt.Errorf("card %s: %w", cards[0].ID, err)
		}
		return fmt.Sprintf("checklist subsystem responsive (%d checklists on sampled card %s)", len(checklists), cards[0].ID), nil
	}
	return "no cards on active board; checklist probe skipped", nil
}

func (e *Engine) probeRateLimit(ctx context.Context, creds trello.Credentials) (string, error) {
	_, err := e.svc.ListBoards(ctx, creds)
	if err != nil {
		var apiErr *trello.APIError
		if errors.As(err, &apiErr) && apiErr.RateLimited() {
			return "", fmt.Errorf("rate limit exhausted: %w", err)
		}
		return "", err
	}
	return "rate limit headroom available", nil
}

// ─── Metadata health ─────────────────────────────────────────────────────────

// MetadataHealth cross-checks referential integrity: session
// staleness, card → list → board linkage, checklist → card linkage,
// and label → board linkage. Each violated invariant is one finding
// with an entity reference.
func (e *Engine) MetadataHealth(ctx context.Context, creds trello.Credentials) *Report {
	report := newReport(e.now())

	boardOK := e.checkActiveBoard(ctx, creds, report)
	e.checkActiveWorkspace(ctx, creds, report)
	if boardOK && e.session.ActiveBoard() != "" {
		e.checkBoardIntegrity(ctx, creds, e.session.ActiveBoard(), report)
	}

	if len(report.Findings) == 0 {
		report.Findings = append(report.Findings, Finding{
			Code:     CodeCounts,
			Severity: SeverityInfo,
			Message:  "no active board or workspace set; metadata checks limited to session state",
		})
	}

	return report.finalize()
}

// checkActiveBoard reports staleness of the active board. Returns true
// when the board is set and reachable.
func (e *Engine) checkActiveBoard(ctx context.Context, creds trello.Credentials, report *Report) bool {
	boardID := e.session.ActiveBoard()
	if boardID == "" {
		return false
	}

	board, err := e.svc.GetBoard(ctx, creds, boardID)
	if err != nil {
		report.Findings = append(report.Findings, Finding{
			Code:     CodeActiveBoardStale,
			Severity: SeverityError,
			Message:  fmt.Sprintf("active board %s is unreachable: %v", boardID, err),
			Entity:   boardID,
		})
		return false
	}

	report.Findings = append(report.Findings, Finding{
		Code:     CodeBoardReachability,
		Severity: SeverityInfo,
		Message:  fmt.Sprintf("active board %q (%s) reachable", board.Name, board.ID),
		Entity:   board.ID,
	})
	return true
}

func (e *Engine) checkActiveWorkspace(ctx context.Context, creds trello.Credentials, report *Report) {
	workspaceID := e.session.ActiveWorkspace()
	if workspaceID == "" {
		return
	}

	ws, err := e.svc.GetWorkspace(ctx, creds, workspaceID)
	if err != nil {
		report.Findings = append(report.Findings, Finding{
			Code:     CodeActiveWorkspaceStale,
			Severity: SeverityError,
			Message:  fmt.Sprintf("active workspace %s is unreachable: %v", workspaceID, err),
			Entity:   workspaceID,
		})
		return
	}

	report.Findings = append(report.Findings, Finding{
		Code:     CodeBoardReachability,
		Severity: SeverityInfo,
		Message:  fmt.Sprintf("active workspace %q (%s) reachable", ws.DisplayName, ws.ID),
		Entity:   ws.ID,
	})
}

// checkBoardIntegrity walks the active board and reports every broken
// reference. The walk continues past failures so one bad entity does
// not mask the rest.
func (e *Engine) checkBoardIntegrity(ctx context.Context, creds trello.Credentials, boardID string, report *Report) {
	lists, err := e.svc.GetLists(ctx, creds, boardID, true)
	if err != nil {
		report.Findings = append(report.Findings, Finding{
			Code:     CodeCardListRef,
			Severity: SeverityError,
			Message:  fmt.Sprintf("cannot enumerate lists on board %s: %v", boardID, err),
			Entity:   boardID,
		})
		return
	}

	listIDs := make(map[string]bool, len(lists))
	for _, list := range lists {
		listIDs[list.ID] = true
	}

	violations := 0
	for _, list := range lists {
		if list.Closed {
			continue
		}
		cards, err := e.svc.GetCardsByList(ctx, creds, list.ID)
		if err != nil {
			report.Findings = append(report.Findings, Finding{
				Code:     CodeCardListRef,
				Severity: SeverityError,
				Message:  fmt.Sprintf("cannot enumerate cards in list %s: %v", list.ID, err),
				Entity:   list.ID,
			})
			continue
		}
		for _, card := range cards {
			if !listIDs[card.IDList] || card.IDBoard != boardID {
				violations++
				report.Findings = append(report.Findings, Finding{
					Code:     CodeCardListRef,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("card %q (%s) references list %s / board %s outside board %s", card.Name, card.ID, card.IDList, card.IDBoard, boardID),
					Entity:   card.ID,
				})
				continue
			}
			checklists, err := e.svc.GetChecklists(ctx, creds, card.ID)
			if err != nil {
				report.Findings = append(report.Findings, Finding{
					Code:     CodeChecklistCardRef,
					Severity: SeverityError,
					Message:  fmt.Sprintf("cannot enumerate checklists on card %s: %v", card.ID, err),
					Entity:   card.ID,
				})
				continue
			}
			for _, cl := range checklists {
				if cl.IDCard != card.ID {
					violations++
					report.Findings = append(report.Findings, Finding{
						Code:     CodeChecklistCardRef,
						Severity: SeverityWarning,
						Message:  fmt.Sprintf("checklist %q (%s) references card %s instead of %s", cl.Name, cl.ID, cl.IDCard, card.ID),
						Entity:   cl.ID,
					})
				}
			}
		}
	}

	labels, err := e.svc.GetBoardLabels(ctx, creds, boardID)
	if err != nil {
		report.Findings = append(report.Findings, Finding{
			Code:     CodeLabelBoardRef,
			Severity: SeverityError,
			Message:  fmt.Sprintf("cannot enumerate labels on board %s: %v", boardID, err),
			Entity:   boardID,
		})
	} else {
		for _, label := range labels {
			if label.IDBoard != boardID {
				violations++
				report.Findings = append(report.Findings, Finding{
					Code:     CodeLabelBoardRef,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("label %q (%s) references board %s instead of %s", label.Name, label.ID, label.IDBoard, boardID),
					Entity:   label.ID,
				})
			}
		}
	}

	if violations == 0 {
		report.Findings = append(report.Findings, Finding{
			Code:     CodeCardListRef,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("referential integrity intact on board %s (%d lists checked)", boardID, len(lists)),
			Entity:   boardID,
		})
	}
}

// ─── Performance health ──────────────────────────────────────────────────────

// PerformanceHealth measures round-trip latency for representative
// read operations and reports min/median/max per class. Raw
// measurements are always reported; the acceptable/slow verdict is a
// coarse aid. Write operations are not sampled — the probe must stay
// non-destructive — and that is reported explicitly rather than faked.
func (e *Engine) PerformanceHealth(ctx context.Context, creds trello.Credentials) *Report {
	report := newReport(e.now())

	classes := []struct {
		name string
		call func() error
	}{
		{"workspace-read", func() error { _, err := e.svc.ListWorkspaces(ctx, creds); return err }},
		{"board-read", func() error { _, err := e.svc.ListBoards(ctx, creds); return err }},
	}
	if boardID := e.session.ActiveBoard(); boardID != "" {
		classes = append(classes, struct {
			name string
			call func() error
		}{"list-read", func() error { _, err := e.svc.GetLists(ctx, creds, boardID, false); return err }})
	}

	for _, class := range classes {
		report.Findings = append(report.Findings, e.measureClass(class.name, class.call))
	}

	report.Findings = append(report.Findings, Finding{
		Code:     CodePerfWrite,
		Severity: SeverityInfo,
		Message:  "write latency not measured: performance probe issues no writes",
	})

	return report.finalize()
}

func (e *Engine) measureClass(name string, call func() error) Finding {
	samples := make([]time.Duration, 0, perfSamples)
	for i := 0; i < perfSamples; i++ {
		start := e.now()
		if err := call(); err != nil {
			return Finding{
				Code:     CodePerfRead,
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s: sample %d failed: %v", name, i+1, err),
				Entity:   name,
			}
		}
		samples = append(samples, e.now().Sub(start))
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	minMS := samples[0].Milliseconds()
	medianMS := samples[len(samples)/2].Milliseconds()
	maxMS := samples[len(samples)-1].Milliseconds()

	verdict := "acceptable"
	severity := SeverityInfo
	if samples[len(samples)/2] > slowCallThreshold {
		verdict = "slow"
		severity = SeverityWarning
	}

	return Finding{
		Code:     CodePerfRead,
		Severity: severity,
		Message:  fmt.Sprintf("%s: min=%dms median=%dms max=%dms over %d samples (%s)", name, minMS, medianMS, maxMS, perfSamples, verdict),
		Entity:   name,
		Data: map[string]any{
			"minMs":    minMS,
			"medianMs": medianMS,
			"maxMs":    maxMS,
			"samples":  perfSamples,
			"verdict":  verdict,
		},
	}
}

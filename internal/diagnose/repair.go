package diagnose

import (
	"context"
	"fmt"

	"github.com/MissionSquad/mcp-trello/internal/session"
	"github.com/MissionSquad/mcp-trello/internal/trello"
	"github.com/google/uuid"
)

// Repairer classifies diagnostic findings and applies corrective
// actions for the ones it knows how to fix. The repairable set is
// deliberately small: only this server's own session state is ever
// corrected. Nothing on the remote service is deleted or mutated.
type Repairer struct {
	engine  *Engine
	session *session.Manager
}

// NewRepairer creates a Repairer over the given engine and session.
func NewRepairer(engine *Engine, sess *session.Manager) *Repairer {
	return &Repairer{engine: engine, session: sess}
}

// repairAction is one corrective action: what it does, and how to
// confirm afterwards that the finding is gone.
type repairAction struct {
	description string
	apply       func() error
	verify      func(ctx context.Context, creds trello.Credentials) bool
}

func (r *Repairer) actionFor(code string) (repairAction, bool) {
	switch code {
	case CodeActiveBoardStale:
		return repairAction{
			description: "cleared active board",
			apply:       func() error { r.session.ClearActiveBoard(); return nil },
			verify: func(ctx context.Context, creds trello.Credentials) bool {
				return r.session.ActiveBoard() == ""
			},
		}, true
	case CodeActiveWorkspaceStale:
		return repairAction{
			description: "cleared active workspace",
			apply:       func() error { r.session.ClearActiveWorkspace(); return nil },
			verify: func(ctx context.Context, creds trello.Credentials) bool {
				return r.session.ActiveWorkspace() == ""
			},
		}, true
	default:
		return repairAction{}, false
	}
}

// PerformRepair runs the detailed and metadata checks, then walks
// every non-info finding. Repairable findings get their action applied
// and re-checked; the rest are passed through with a note that no
// automated action exists. A failing action is captured in its entry —
// it never aborts the run.
func (r *Repairer) PerformRepair(ctx context.Context, creds trello.Credentials) *RepairReport {
	report := &RepairReport{
		ID:          uuid.NewString(),
		GeneratedAt: r.engine.now(),
		Entries:     []RepairEntry{},
	}

	findings := r.collectFindings(ctx, creds)
	for _, finding := range findings {
		report.Entries = append(report.Entries, r.repairOne(ctx, creds, finding))
	}
	for _, entry := range report.Entries {
		if entry.Outcome == "resolved" {
			report.Repaired++
		} else {
			report.Unrepaired++
		}
	}
	return report
}

// collectFindings merges detailed and metadata findings, keeping only
// actionable ones (info findings are healthy observations) and
// de-duplicating by code + entity.
func (r *Repairer) collectFindings(ctx context.Context, creds trello.Credentials) []Finding {
	detailed := r.engine.DetailedHealth(ctx, creds)
	metadata := r.engine.MetadataHealth(ctx, creds)

	seen := make(map[string]bool)
	var findings []Finding
	for _, f := range append(detailed.Findings, metadata.Findings...) {
		if f.Severity == SeverityInfo {
			continue
		}
		key := f.Code + "|" + f.Entity
		if seen[key] {
			continue
		}
		seen[key] = true
		findings = append(findings, f)
	}
	return findings
}

func (r *Repairer) repairOne(ctx context.Context, creds trello.Credentials, finding Finding) RepairEntry {
	entry := RepairEntry{Finding: finding, PostStatus: StatusDegraded}

	action, ok := r.actionFor(finding.Code)
	if !ok {
		entry.Action = "none available"
		entry.Outcome = "no action available"
		return entry
	}

	entry.Action = action.description
	if err := action.apply(); err != nil {
		entry.Outcome = "failed"
		entry.RepairErr = fmt.Sprintf("applying %s: %v", action.description, err)
		return entry
	}

	if action.verify(ctx, creds) {
		entry.Outcome = "resolved"
		entry.PostStatus = StatusOK
	} else {
		entry.Outcome = "unresolved"
	}
	return entry
}

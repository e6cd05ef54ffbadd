// Package diagnose runs consistency and performance checks against the
// remote board service and the session context, and can apply a
// bounded set of corrective actions. Reports are built fresh per
// invocation — nothing here persists across calls.
package diagnose

import (
	"time"

	"github.com/google/uuid"
)

// Status is the coarse health verdict for a report or probe.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// Severity classifies one finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding codes. The repair engine dispatches on these.
const (
	CodeConnectivity         = "connectivity"
	CodeBoardReachability    = "board.reachability"
	CodeCounts               = "counts"
	CodeChecklistSubsystem   = "checklist.subsystem"
	CodeRateLimitHeadroom    = "ratelimit.headroom"
	CodeActiveBoardStale     = "session.active_board_stale"
	CodeActiveWorkspaceStale = "session.active_workspace_stale"
	CodeCardListRef          = "metadata.card_list_ref"
	CodeChecklistCardRef     = "metadata.checklist_card_ref"
	CodeLabelBoardRef        = "metadata.label_board_ref"
	CodePerfRead             = "perf.read"
	CodePerfWrite            = "perf.write"
)

// Finding is one observation from a diagnostics run. Code is the
// machine-readable type used for repair dispatch; Entity references the
// offending entity when there is one. Data carries raw measurements.
type Finding struct {
	Code     string         `json:"code"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Entity   string         `json:"entity,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Report is the flat result of one diagnostics invocation.
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generatedAt"`
	Overall     Status    `json:"overall"`
	LatencyMS   int64     `json:"latencyMs,omitempty"`
	Findings    []Finding `json:"findings"`
}

func newReport(now time.Time) *Report {
	return &Report{
		ID:          uuid.NewString(),
		GeneratedAt: now,
		Findings:    []Finding{},
	}
}

// finalize derives the overall status from the findings: any error
// finding on connectivity means down, any other error or warning means
// degraded.
func (r *Report) finalize() *Report {
	r.Overall = StatusOK
	for _, f := range r.Findings {
		switch {
		case f.Severity == SeverityError && f.Code == CodeConnectivity:
			r.Overall = StatusDown
			return r
		case f.Severity == SeverityError || f.Severity == SeverityWarning:
			r.Overall = StatusDegraded
		}
	}
	return r
}

// RepairEntry records what happened to a single finding during a
// repair run.
type RepairEntry struct {
	Finding    Finding `json:"finding"`
	Action     string  `json:"action"`
	Outcome    string  `json:"outcome"` // "resolved", "unresolved", "failed", "no action available"
	RepairErr  string  `json:"repairError,omitempty"`
	PostStatus Status  `json:"postStatus"`
}

// RepairReport is the result of one full repair run.
type RepairReport struct {
	ID          string        `json:"id"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Entries     []RepairEntry `json:"entries"`
	Repaired    int           `json:"repaired"`
	Unrepaired  int           `json:"unrepaired"`
}

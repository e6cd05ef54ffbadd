package diagnose

import (
	"context"
	"testing"

	"github.com/MissionSquad/mcp-trello/internal/trello"
)

func findEntry(t *testing.T, entries []RepairEntry, code string) RepairEntry {
	t.Helper()
	for _, e := range entries {
		if e.Finding.Code == code {
			return e
		}
	}
	t.Fatalf("no entry for code %s in %+v", code, entries)
	return RepairEntry{}
}

func TestPerformRepair_HealthySystemHasNothingToDo(t *testing.T) {
	e, sess := newTestEngine(newHealthySvc(), "bA", "w1")
	r := NewRepairer(e, sess)

	report := r.PerformRepair(context.Background(), testCreds)
	if len(report.Entries) != 0 {
		t.Errorf("entries = %+v, want none on a healthy system", report.Entries)
	}
	if report.Repaired != 0 || report.Unrepaired != 0 {
		t.Errorf("counts = %d/%d, want 0/0", report.Repaired, report.Unrepaired)
	}
	if report.ID == "" {
		t.Error("report ID is empty")
	}
}

func TestPerformRepair_ClearsStaleActiveBoard(t *testing.T) {
	// Session points at a board the remote no longer knows.
	e, sess := newTestEngine(newHealthySvc(), "ghost", "")
	r := NewRepairer(e, sess)

	report := r.PerformRepair(context.Background(), testCreds)

	entry := findEntry(t, report.Entries, CodeActiveBoardStale)
	if entry.Action != "cleared active board" {
		t.Errorf("Action = %q, want cleared active board", entry.Action)
	}
	if entry.Outcome != "resolved" {
		t.Errorf("Outcome = %q, want resolved", entry.Outcome)
	}
	if entry.PostStatus != StatusOK {
		t.Errorf("PostStatus = %s, want ok", entry.PostStatus)
	}
	if report.Repaired < 1 {
		t.Errorf("Repaired = %d, want at least 1", report.Repaired)
	}

	// The correction took: no active board remains.
	if got := sess.ActiveBoard(); got != "" {
		t.Errorf("ActiveBoard after repair = %q, want empty", got)
	}
}

func TestPerformRepair_ClearsStaleActiveWorkspace(t *testing.T) {
	e, sess := newTestEngine(newHealthySvc(), "", "gone")
	r := NewRepairer(e, sess)

	report := r.PerformRepair(context.Background(), testCreds)

	entry := findEntry(t, report.Entries, CodeActiveWorkspaceStale)
	if entry.Action != "cleared active workspace" || entry.Outcome != "resolved" {
		t.Errorf("entry = %+v, want cleared/resolved", entry)
	}
	if got := sess.ActiveWorkspace(); got != "" {
		t.Errorf("ActiveWorkspace after repair = %q, want empty", got)
	}
}

func TestPerformRepair_NonRepairableIsPassedThrough(t *testing.T) {
	svc := newHealthySvc()
	svc.labels["bA"] = []trello.Label{{ID: "lab9", IDBoard: "other", Name: "stray"}}
	e, sess := newTestEngine(svc, "bA", "")
	r := NewRepairer(e, sess)

	report := r.PerformRepair(context.Background(), testCreds)

	entry := findEntry(t, report.Entries, CodeLabelBoardRef)
	if entry.Action != "none available" {
		t.Errorf("Action = %q, want none available", entry.Action)
	}
	if entry.Outcome != "no action available" {
		t.Errorf("Outcome = %q, want no action available", entry.Outcome)
	}
	if entry.PostStatus != StatusDegraded {
		t.Errorf("PostStatus = %s, want degraded", entry.PostStatus)
	}
	if report.Unrepaired < 1 {
		t.Errorf("Unrepaired = %d, want at least 1", report.Unrepaired)
	}
	// Remote data is never touched: the label is still there.
	if len(svc.labels["bA"]) != 1 {
		t.Error("repair must not mutate remote entities")
	}
	if got := sess.ActiveBoard(); got != "bA" {
		t.Errorf("ActiveBoard = %q, want bA untouched", got)
	}
}

func TestPerformRepair_SecondRunIsClean(t *testing.T) {
	e, sess := newTestEngine(newHealthySvc(), "ghost", "")
	r := NewRepairer(e, sess)

	first := r.PerformRepair(context.Background(), testCreds)
	if first.Repaired == 0 {
		t.Fatalf("first run repaired nothing: %+v", first.Entries)
	}

	// With the stale board cleared, a second pass finds nothing stale.
	second := r.PerformRepair(context.Background(), testCreds)
	for _, entry := range second.Entries {
		if entry.Finding.Code == CodeActiveBoardStale {
			t.Errorf("stale-board finding persisted after repair: %+v", entry)
		}
	}
}

func TestCollectFindings_DedupAndInfoFilter(t *testing.T) {
	// A stale board shows up in both the detailed probes and the
	// metadata checks; healthy info findings never become entries.
	e, sess := newTestEngine(newHealthySvc(), "ghost", "")
	r := NewRepairer(e, sess)

	findings := r.collectFindings(context.Background(), testCreds)
	seen := map[string]int{}
	for _, f := range findings {
		if f.Severity == SeverityInfo {
			t.Errorf("info finding %+v leaked into the actionable set", f)
		}
		seen[f.Code+"|"+f.Entity]++
	}
	for key, n := range seen {
		if n > 1 {
			t.Errorf("finding %s appears %d times, want deduplicated", key, n)
		}
	}
}

package engine

import (
	"strings"
	"testing"

	"github.com/embedstack/wvtriage/internal/catalog"
	"github.com/embedstack/wvtriage/internal/models"
	"github.com/embedstack/wvtriage/internal/trace"
)

func navFlow(t *testing.T) catalog.Flow {
	t.Helper()
	flow, ok := catalog.Default().FlowByName("navigation")
	if !ok {
		t.Fatalf("default navigation flow missing")
	}
	return flow
}

func segment(t *testing.T, lines []string) []models.Incarnation {
	t.Helper()
	events := trace.ParseLines(lines)
	classifier := NewClassifier("contoso", "", nil)
	procs := classifier.Classify(events, navFlow(t).KeyEvents)
	return NewSegmenter(navFlow(t), nil).Segment(events, procs)
}

func TestSegmentSyntheticWhenNoCreationEvents(t *testing.T) {
	lines := []string{
		"NavigationStarting, 1200000, msedgewebview2.exe(1024), NavigationId=7",
		"NavigationCompleted, 1500000, msedgewebview2.exe(1024), NavigationId=7",
	}
	incs := segment(t, lines)
	if len(incs) != 1 {
		t.Fatalf("expected 1 synthetic incarnation, got %d", len(incs))
	}
	inc := incs[0]
	if !inc.Synthetic || inc.ID != 1 {
		t.Fatalf("unexpected incarnation: %+v", inc)
	}
	if inc.CreationMicros != 1200000 || inc.DurationMicros != 300000 {
		t.Fatalf("synthetic window [%d, +%d], want [1200000, +300000]", inc.CreationMicros, inc.DurationMicros)
	}
	if inc.HasIssue {
		t.Fatalf("clean trace should have no issue: %+v", inc)
	}
}

func TestSegmentSyntheticFlagsErrors(t *testing.T) {
	lines := []string{
		"NavigationStarting, 1200000, msedgewebview2.exe(1024), NavigationId=7",
		"NavigationCompleted failed with Error 42, 1500000, msedgewebview2.exe(1024)",
	}
	incs := segment(t, lines)
	if len(incs) != 1 || !incs[0].HasIssue {
		t.Fatalf("expected flagged synthetic incarnation, got %+v", incs)
	}
	if !strings.Contains(incs[0].IssueHint, "error(s) detected") {
		t.Fatalf("unexpected hint %q", incs[0].IssueHint)
	}
}

func TestSegmentWindowsAndMembership(t *testing.T) {
	lines := []string{
		"CreateCoreWebView2Controller, 000000, contoso_shell.exe(812)",
		"NavigationStarting, 2000000, msedgewebview2.exe(1024), NavigationId=7",
		"NavigationCompleted, 2500000, msedgewebview2.exe(1024), NavigationId=7",
		"CreateCoreWebView2Controller, 5000000, contoso_shell.exe(813)",
		"NavigationStarting, 5200000, msedgewebview2.exe(2048), NavigationId=9",
	}
	incs := segment(t, lines)
	if len(incs) != 2 {
		t.Fatalf("expected 2 incarnations, got %d", len(incs))
	}
	if incs[0].ID != 1 || incs[1].ID != 2 {
		t.Fatalf("incarnation IDs must be 1-based increasing: %+v", incs)
	}
	if incs[0].CreationMicros != 0 || incs[1].CreationMicros != 5000000 {
		t.Fatalf("boundaries = %d, %d", incs[0].CreationMicros, incs[1].CreationMicros)
	}

	// A process first seen at t=2s belongs to incarnation #1, not #2.
	if !containsPID(incs[0].Processes, 1024) {
		t.Fatalf("pid 1024 should be a member of incarnation 1: %+v", incs[0].Processes)
	}
	if containsPID(incs[1].Processes, 1024) {
		t.Fatalf("pid 1024 must not be a member of incarnation 2")
	}
	if !containsPID(incs[1].Processes, 2048) {
		t.Fatalf("pid 2048 should be a member of incarnation 2")
	}

	// Every timestamped key event lands in exactly one window.
	total := len(incs[0].KeyEvents) + len(incs[1].KeyEvents)
	if total != 3 {
		t.Fatalf("key events split %d/%d, want 3 total", len(incs[0].KeyEvents), len(incs[1].KeyEvents))
	}
	for _, ev := range incs[0].KeyEvents {
		if ev.TimestampMicros >= 5000000 {
			t.Fatalf("event %q leaked into incarnation 1", ev.Name)
		}
	}
	for _, ev := range incs[1].KeyEvents {
		if ev.TimestampMicros < 5000000 {
			t.Fatalf("event %q leaked into incarnation 2", ev.Name)
		}
	}

	if incs[0].DurationMicros != 2500000 || !incs[0].HasDuration {
		t.Fatalf("incarnation 1 duration = %d", incs[0].DurationMicros)
	}
}

func TestSegmentFirstWindowCoversPreCreationEvents(t *testing.T) {
	lines := []string{
		"NavigationStarting, 500000, msedgewebview2.exe(900), NavigationId=3",
		"CreateCoreWebView2Controller, 1000000, contoso_shell.exe(812)",
		"NavigationStarting, 1200000, msedgewebview2.exe(1024), NavigationId=7",
		"CreateCoreWebView2Controller, 5000000, contoso_shell.exe(813)",
	}
	incs := segment(t, lines)
	if len(incs) != 2 {
		t.Fatalf("expected 2 incarnations, got %d", len(incs))
	}

	// The event before the first creation boundary belongs to
	// incarnation 1; no timestamped event is left without a window.
	if len(incs[0].KeyEvents) != 2 {
		t.Fatalf("incarnation 1 key events = %v, want both NavigationStarting lines", incs[0].KeyEvents)
	}
	if incs[0].KeyEvents[0].TimestampMicros != 500000 {
		t.Fatalf("pre-creation event missing from incarnation 1: %+v", incs[0].KeyEvents)
	}
	if len(incs[1].KeyEvents) != 0 {
		t.Fatalf("incarnation 2 key events = %v, want none", incs[1].KeyEvents)
	}
	if !containsPID(incs[0].Processes, 900) {
		t.Fatalf("pid 900 first seen before the boundary should join incarnation 1")
	}
}

func TestSegmentIssuePriority(t *testing.T) {
	// Process failure outranks the incomplete navigation in the same window.
	lines := []string{
		"CreateCoreWebView2Controller, 1000000, contoso_shell.exe(812)",
		"NavigationStarting, 1200000, msedgewebview2.exe(1024), NavigationId=7",
		"ProcessFailed, 1300000, msedgewebview2.exe(1024), reason=crashed",
	}
	incs := segment(t, lines)
	if len(incs) != 1 {
		t.Fatalf("expected 1 incarnation, got %d", len(incs))
	}
	if !incs[0].HasIssue || incs[0].IssueHint != "process failure" {
		t.Fatalf("issue hint = %q, want process failure", incs[0].IssueHint)
	}
}

func TestSegmentStartedNeverCompleted(t *testing.T) {
	lines := []string{
		"CreateCoreWebView2Controller, 1000000, contoso_shell.exe(812)",
		"NavigationStarting, 1200000, msedgewebview2.exe(1024), NavigationId=7",
	}
	incs := segment(t, lines)
	if incs[0].IssueHint != "started but never completed" {
		t.Fatalf("issue hint = %q", incs[0].IssueHint)
	}
}

func TestSegmentRendererUnresponsive(t *testing.T) {
	lines := []string{
		"CreateCoreWebView2Controller, 1000000, contoso_shell.exe(812)",
		"RendererUnresponsive, 1400000, msedgewebview2.exe(2048)",
	}
	incs := segment(t, lines)
	if incs[0].IssueHint != "renderer unresponsive" {
		t.Fatalf("issue hint = %q", incs[0].IssueHint)
	}
}

func containsPID(procs []models.Process, pid uint32) bool {
	for _, p := range procs {
		if p.PID == pid {
			return true
		}
	}
	return false
}

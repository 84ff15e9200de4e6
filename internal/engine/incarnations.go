package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/embedstack/wvtriage/internal/catalog"
	"github.com/embedstack/wvtriage/internal/models"
)

const (
	maxKeyEventsPerIncarnation = 50
	maxErrorsPerIncarnation    = 10

	// processPreRollMicros widens the membership window backwards so a
	// process spawned just before the creation event still lands in the
	// incarnation it belongs to.
	processPreRollMicros = 100_000
)

// Segmenter partitions the timeline into ordered, non-overlapping
// incarnations anchored by the flow's creation events.
type Segmenter struct {
	flow   catalog.Flow
	logger *slog.Logger
}

// NewSegmenter constructs a Segmenter for one flow catalog.
func NewSegmenter(flow catalog.Flow, logger *slog.Logger) *Segmenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{flow: flow, logger: logger}
}

type boundary struct {
	micros uint64
	line   int
}

// Segment returns the ordered incarnation list. The first window
// extends back to the start of the trace, so every timestamped event
// belongs to exactly one incarnation. With zero timestamped creation
// events a single synthetic incarnation spans the whole trace, flagged
// as an issue iff any process recorded at least one error.
func (s *Segmenter) Segment(events []models.Event, procs []models.Process) []models.Incarnation {
	boundaries := s.findBoundaries(events)
	if len(boundaries) == 0 {
		return []models.Incarnation{s.synthetic(events, procs)}
	}

	sort.Slice(boundaries, func(i, j int) bool {
		if boundaries[i].micros != boundaries[j].micros {
			return boundaries[i].micros < boundaries[j].micros
		}
		return boundaries[i].line < boundaries[j].line
	})

	incs := make([]models.Incarnation, 0, len(boundaries))
	for i, b := range boundaries {
		endMicros := uint64(0)
		endLine := -1
		bounded := false
		if i+1 < len(boundaries) {
			endMicros = boundaries[i+1].micros
			endLine = boundaries[i+1].line
			bounded = true
		}
		inc := s.buildIncarnation(i+1, b, endMicros, endLine, bounded, i == 0, events, procs)
		incs = append(incs, inc)
	}
	return incs
}

func (s *Segmenter) findBoundaries(events []models.Event) []boundary {
	var out []boundary
	for _, ev := range events {
		if !ev.HasTimestamp {
			// Creation lines without a timestamp cannot anchor a window;
			// degrade by skipping rather than guessing an order.
			continue
		}
		if s.matchesAny(ev, s.flow.CreationEvents) {
			out = append(out, boundary{micros: ev.TimestampMicros, line: ev.LineIndex})
		}
	}
	return out
}

func (s *Segmenter) matchesAny(ev models.Event, patterns []string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if ev.Name == p || strings.Contains(ev.Raw, p) {
			return true
		}
	}
	return false
}

func (s *Segmenter) buildIncarnation(id int, b boundary, endMicros uint64, endLine int, bounded, first bool, events []models.Event, procs []models.Process) models.Incarnation {
	inc := models.Incarnation{
		ID:             id,
		CreationMicros: b.micros,
		HasCreation:    true,
		CreationLine:   b.line,
	}

	keySet := make(map[string]struct{}, len(s.flow.KeyEvents))
	for _, k := range s.flow.KeyEvents {
		keySet[k] = struct{}{}
	}

	pidSet := make(map[uint32]struct{})
	var maxKeyTs uint64
	var sawKeyTs bool
	sawStart := false
	sawComplete := false
	sawFailure := false
	sawHang := false
	sawDrop := false

	for _, ev := range events {
		if !s.inWindow(ev, b, endMicros, endLine, bounded, first) {
			continue
		}
		if ev.PID != 0 {
			pidSet[ev.PID] = struct{}{}
		}
		if _, key := keySet[ev.Name]; key {
			if len(inc.KeyEvents) < maxKeyEventsPerIncarnation {
				inc.KeyEvents = append(inc.KeyEvents, ev)
			}
			if ev.HasTimestamp && (!sawKeyTs || ev.TimestampMicros > maxKeyTs) {
				maxKeyTs = ev.TimestampMicros
				sawKeyTs = true
			}
		}
		if s.matchesAny(ev, s.flow.ProcessFailureEvents) {
			sawFailure = true
		}
		if s.matchesAny(ev, s.flow.HangEvents) {
			sawHang = true
		}
		if s.flow.FlowStartEvent != "" && ev.Name == s.flow.FlowStartEvent {
			sawStart = true
		}
		if s.flow.FlowCompleteEvent != "" && ev.Name == s.flow.FlowCompleteEvent {
			sawComplete = true
		}
		if s.matchesAny(ev, s.flow.DropEvents) {
			sawDrop = true
		}
		if IsErrorLine(ev.Raw) {
			inc.ErrorCount++
			if len(inc.Errors) < maxErrorsPerIncarnation {
				inc.Errors = append(inc.Errors, ev.Raw)
			}
		}
	}

	inc.PIDs = sortedPIDs(pidSet)

	// Membership is decided by first-seen timestamp against the window
	// (with pre-roll), not by PID alone: PIDs may be reused across
	// incarnations.
	start := inc.CreationMicros
	if start > processPreRollMicros {
		start -= processPreRollMicros
	} else {
		start = 0
	}
	if first {
		start = 0
	}
	for _, p := range procs {
		if !p.HasTimestamps {
			continue
		}
		if p.FirstSeenMicros < start {
			continue
		}
		if bounded && p.FirstSeenMicros >= endMicros {
			continue
		}
		inc.Processes = append(inc.Processes, p)
	}

	if sawKeyTs && maxKeyTs >= inc.CreationMicros {
		inc.DurationMicros = maxKeyTs - inc.CreationMicros
		inc.HasDuration = true
	}

	// First matching rule wins.
	switch {
	case sawFailure:
		inc.HasIssue = true
		inc.IssueHint = "process failure"
	case sawHang:
		inc.HasIssue = true
		inc.IssueHint = "renderer unresponsive"
	case sawStart && !sawComplete:
		inc.HasIssue = true
		inc.IssueHint = "started but never completed"
	case sawDrop:
		inc.HasIssue = true
		inc.IssueHint = "events dropped"
	case inc.ErrorCount > 0:
		inc.HasIssue = true
		inc.IssueHint = fmt.Sprintf("%d error(s) detected", inc.ErrorCount)
	}

	return inc
}

// inWindow places an event into a window by timestamp when it has one,
// falling back to line position for untimestamped lines. The first
// window has no lower bound: events before the first creation boundary
// still belong to incarnation 1.
func (s *Segmenter) inWindow(ev models.Event, b boundary, endMicros uint64, endLine int, bounded, first bool) bool {
	if ev.HasTimestamp {
		if !first && ev.TimestampMicros < b.micros {
			return false
		}
		if bounded && ev.TimestampMicros >= endMicros {
			return false
		}
		return true
	}
	if !first && ev.LineIndex < b.line {
		return false
	}
	if bounded && endLine >= 0 && ev.LineIndex >= endLine {
		return false
	}
	return true
}

func (s *Segmenter) synthetic(events []models.Event, procs []models.Process) models.Incarnation {
	inc := models.Incarnation{ID: 1, Synthetic: true}

	var minTs, maxTs uint64
	var sawTs bool
	pidSet := make(map[uint32]struct{})
	keySet := make(map[string]struct{}, len(s.flow.KeyEvents))
	for _, k := range s.flow.KeyEvents {
		keySet[k] = struct{}{}
	}

	for _, ev := range events {
		if ev.PID != 0 {
			pidSet[ev.PID] = struct{}{}
		}
		if ev.HasTimestamp {
			if !sawTs || ev.TimestampMicros < minTs {
				minTs = ev.TimestampMicros
			}
			if !sawTs || ev.TimestampMicros > maxTs {
				maxTs = ev.TimestampMicros
			}
			sawTs = true
		}
		if _, key := keySet[ev.Name]; key && len(inc.KeyEvents) < maxKeyEventsPerIncarnation {
			inc.KeyEvents = append(inc.KeyEvents, ev)
		}
		if IsErrorLine(ev.Raw) {
			inc.ErrorCount++
			if len(inc.Errors) < maxErrorsPerIncarnation {
				inc.Errors = append(inc.Errors, ev.Raw)
			}
		}
	}

	if sawTs {
		inc.CreationMicros = minTs
		inc.HasCreation = true
		inc.DurationMicros = maxTs - minTs
		inc.HasDuration = true
	}
	inc.PIDs = sortedPIDs(pidSet)
	inc.Processes = append(inc.Processes, procs...)

	// The per-event scan already covers every process error line, so
	// inc.ErrorCount is the authoritative total here.
	if inc.ErrorCount > 0 {
		inc.HasIssue = true
		inc.IssueHint = fmt.Sprintf("%d error(s) detected", inc.ErrorCount)
	}
	return inc
}

func sortedPIDs(set map[uint32]struct{}) []uint32 {
	if len(set) == 0 {
		return nil
	}
	pids := make([]uint32, 0, len(set))
	for pid := range set {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}

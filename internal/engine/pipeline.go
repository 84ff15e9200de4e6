package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/embedstack/wvtriage/internal/catalog"
	"github.com/embedstack/wvtriage/internal/models"
	"github.com/embedstack/wvtriage/internal/trace"
)

// Pipeline runs one complete analysis: parse, index, classify, segment,
// playbook check, triage, aggregate. The engine is single-threaded and
// synchronous; a run either completes or fails outright, and every
// stage is a pure function of the immutable line set and the index.
type Pipeline struct {
	logger        *slog.Logger
	runtimeMarker string
}

// NewPipeline constructs an analysis pipeline. An empty runtimeMarker
// selects the default embedded-runtime executable name.
func NewPipeline(logger *slog.Logger, runtimeMarker string) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger, runtimeMarker: runtimeMarker}
}

// Analyze produces a TriageReport for the given lines, run parameters
// and catalog. The catalog is treated as read-only for the whole run.
func (p *Pipeline) Analyze(req models.AnalysisRequest, lines []string, cat *catalog.Catalog) (models.TriageReport, error) {
	flow, ok := cat.FlowByName(req.Flow)
	if !ok {
		return models.TriageReport{}, fmt.Errorf("unknown flow %q", req.Flow)
	}

	lines = filterLines(lines, req.FromMicros, req.ToMicros)

	report := models.TriageReport{
		ReportID:  fmt.Sprintf("report-%d", time.Now().UnixNano()),
		HostApp:   req.HostApp,
		Symptom:   req.Symptom,
		Flow:      flow.Name,
		CreatedAt: time.Now().UTC(),
		LineCount: len(lines),
	}

	events := trace.ParseLines(lines)
	for _, ev := range events {
		if ev.Name != "" {
			report.EventCount++
		}
	}

	ix := trace.NewIndex(lines, cat.Patterns())

	classifier := NewClassifier(req.HostApp, p.runtimeMarker, p.logger)
	report.Processes = classifier.Classify(events, flow.KeyEvents)

	segmenter := NewSegmenter(flow, p.logger)
	report.Incarnations = segmenter.Segment(events, report.Processes)

	playbook, err := NewPlaybook(flow, p.logger)
	if err != nil {
		return models.TriageReport{}, fmt.Errorf("build playbook: %w", err)
	}
	report.Playbook = playbook.Check(events, ix)

	triage := NewTriage(cat.Signatures, p.logger)
	report.Candidates = triage.Rank(ix, req.Symptom)

	report.Confidence = AggregateConfidence(report.Candidates, report.Incarnations, report.Playbook, report.Processes)

	report.NothingFound = nothingFound(ix, cat)
	if report.NothingFound {
		p.logger.Info("no events of interest found",
			slog.Int("lines", report.LineCount),
			slog.Int("events", report.EventCount))
	}

	return report, nil
}

// filterLines applies the optional time-range bounds. Lines without an
// extractable timestamp are never filtered: they may still contribute
// names and roles.
func filterLines(lines []string, fromMicros, toMicros uint64) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if fromMicros > 0 || toMicros > 0 {
			if ts, ok := trace.TimestampMicros(line); ok {
				if fromMicros > 0 && ts < fromMicros {
					continue
				}
				if toMicros > 0 && ts > toMicros {
					continue
				}
			}
		}
		out = append(out, line)
	}
	return out
}

// nothingFound distinguishes "analyzed and clean" from "nothing to
// analyze": true when no catalog pattern occurs anywhere in the trace.
func nothingFound(ix *trace.Index, cat *catalog.Catalog) bool {
	for _, pattern := range cat.Patterns() {
		if ix.Has(pattern) {
			return false
		}
	}
	return true
}

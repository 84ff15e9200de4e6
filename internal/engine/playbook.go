package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/embedstack/wvtriage/internal/catalog"
	"github.com/embedstack/wvtriage/internal/models"
	"github.com/embedstack/wvtriage/internal/trace"
)

const maxOrphanSamples = 10

// Playbook walks the ordered stage catalog for one flow type and checks
// each correlation key's events against it. There is no shared mutable
// state between keys: every key is an independent linear stage check.
type Playbook struct {
	flow    catalog.Flow
	keyRes  []*regexp.Regexp
	logger  *slog.Logger
	nameSet map[string]struct{}
}

// NewPlaybook compiles the flow's correlation-key patterns once; they
// are reused across all lines.
func NewPlaybook(flow catalog.Flow, logger *slog.Logger) (*Playbook, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res := make([]*regexp.Regexp, 0, len(flow.KeyPatterns))
	for _, pattern := range flow.KeyPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile key pattern %q: %w", pattern, err)
		}
		res = append(res, re)
	}

	nameSet := make(map[string]struct{})
	for _, stage := range flow.Stages {
		for _, name := range stage.Expected {
			nameSet[name] = struct{}{}
		}
		for _, name := range stage.Failures {
			nameSet[name] = struct{}{}
		}
	}

	return &Playbook{flow: flow, keyRes: res, logger: logger, nameSet: nameSet}, nil
}

// Check groups lifecycle events by correlation key and evaluates every
// stage for every key. Events that belong to a stage but carry no key
// are reported as orphans; orphans are diagnostic, not errors. Boundary
// checks run against the whole-trace index because handler-invocation
// lines do not reliably carry the correlation key.
func (p *Playbook) Check(events []models.Event, ix *trace.Index) models.PlaybookReport {
	report := models.PlaybookReport{Flow: p.flow.Name}

	grouped := make(map[string][]models.Event)
	for _, ev := range events {
		if _, relevant := p.nameSet[ev.Name]; !relevant {
			continue
		}
		key := p.extractKey(ev.Raw)
		if key == "" {
			report.OrphanCount++
			if len(report.OrphanSamples) < maxOrphanSamples {
				report.OrphanSamples = append(report.OrphanSamples, ev.Name)
			}
			continue
		}
		grouped[key] = append(grouped[key], ev)
	}

	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		report.Checks = append(report.Checks, p.checkKey(key, grouped[key]))
	}

	for _, boundary := range p.flow.Boundaries {
		report.Boundaries = append(report.Boundaries, checkBoundary(boundary, ix))
	}

	return report
}

func (p *Playbook) extractKey(line string) string {
	for _, re := range p.keyRes {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

func (p *Playbook) checkKey(key string, events []models.Event) models.FlowCheck {
	present := make(map[string]struct{}, len(events))
	for _, ev := range events {
		present[ev.Name] = struct{}{}
	}

	check := models.FlowCheck{Key: key}
	for _, stage := range p.flow.Stages {
		result := evaluateStage(stage, present)
		if result.Status == models.StageFailed && stage.Required && check.BreakStage == "" {
			// First failed required stage in catalog order is the break
			// point; downstream anomalies are assumed causally posterior.
			check.BreakStage = stage.Name
		}
		check.Stages = append(check.Stages, result)
	}
	return check
}

func evaluateStage(stage catalog.Stage, present map[string]struct{}) models.StageResult {
	result := models.StageResult{Stage: stage.Name}
	for _, name := range stage.Expected {
		if _, ok := present[name]; ok {
			result.MatchedEvents = append(result.MatchedEvents, name)
		}
	}
	for _, name := range stage.Failures {
		if _, ok := present[name]; ok {
			result.MatchedFailures = append(result.MatchedFailures, name)
		}
	}

	switch {
	case len(result.MatchedEvents) > 0 && len(result.MatchedFailures) == 0:
		result.Status = models.StagePassed
	case len(result.MatchedEvents) > 0 && len(result.MatchedFailures) > 0:
		result.Status = models.StagePartial
		result.Notes = "expected and failure-variant evidence both present"
	case len(result.MatchedFailures) > 0:
		result.Status = models.StageFailed
		result.Notes = "only failure-variant evidence present"
	case stage.Required:
		result.Status = models.StageFailed
		result.Notes = "required stage has no evidence"
	default:
		result.Status = models.StageSkipped
	}
	return result
}

func checkBoundary(boundary catalog.BoundaryCheck, ix *trace.Index) models.BoundaryResult {
	result := models.BoundaryResult{
		Name:     boundary.Name,
		Producer: boundary.Producer,
		Consumer: boundary.Consumer,
		Status:   models.BoundaryOK,
	}
	producerSeen, consumerSeen := boundarySides(boundary, ix)

	switch {
	case producerSeen && !consumerSeen:
		result.Status = models.BoundaryIssue
		result.Detail = fmt.Sprintf("%s emitted but %s never observed", boundary.Producer, boundary.Consumer)
	case !producerSeen && consumerSeen:
		result.Status = models.BoundaryIssue
		result.Detail = fmt.Sprintf("%s observed without a matching %s", boundary.Consumer, boundary.Producer)
	}
	return result
}

// boundarySides untangles literal-substring containment between the two
// patterns. A line carrying "Invoke_NavigationCompletedHandler" also
// matches "NavigationCompleted" in the index, so the contained side's
// count is corrected by the containing side's count before deciding
// presence. Works in both containment directions.
func boundarySides(boundary catalog.BoundaryCheck, ix *trace.Index) (bool, bool) {
	producerCount := ix.Count(boundary.Producer)
	consumerCount := ix.Count(boundary.Consumer)
	switch {
	case boundary.Producer == boundary.Consumer:
		return producerCount > 0, consumerCount > 0
	case strings.Contains(boundary.Consumer, boundary.Producer):
		return producerCount-consumerCount > 0, consumerCount > 0
	case strings.Contains(boundary.Producer, boundary.Consumer):
		return producerCount > 0, consumerCount-producerCount > 0
	default:
		return producerCount > 0, consumerCount > 0
	}
}

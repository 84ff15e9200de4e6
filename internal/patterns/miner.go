package patterns

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/embedstack/wvtriage/internal/models"
)

const maxEvidencePerPattern = 3

// Miner aggregates stored reports into recurring failure patterns:
// which root causes keep showing up, how often, and on what evidence.
type Miner struct {
	logger *slog.Logger
}

// NewMiner constructs a Miner.
func NewMiner(logger *slog.Logger) *Miner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Miner{logger: logger}
}

type aggregate struct {
	category      string
	label         string
	occurrences   int
	confidenceSum float64
	evidence      map[string]int
	lastSeenAt    int64
	lastSeen      models.TriageReport
}

// Mine ranks top-candidate recurrences across reports by prevalence.
func (m *Miner) Mine(reports []models.TriageReport) []models.FailurePattern {
	if len(reports) == 0 {
		return nil
	}

	aggs := make(map[string]*aggregate)
	order := make([]string, 0)

	for _, report := range reports {
		if len(report.Candidates) == 0 {
			continue
		}
		top := report.Candidates[0]
		key := top.Category + "/" + top.Label
		agg, ok := aggs[key]
		if !ok {
			agg = &aggregate{category: top.Category, label: top.Label, evidence: make(map[string]int)}
			aggs[key] = agg
			order = append(order, key)
		}
		agg.occurrences++
		agg.confidenceSum += top.Confidence
		for _, ev := range top.Evidence {
			agg.evidence[ev]++
		}
		if report.CreatedAt.UnixNano() > agg.lastSeenAt {
			agg.lastSeenAt = report.CreatedAt.UnixNano()
			agg.lastSeen = report
		}
	}

	patterns := make([]models.FailurePattern, 0, len(order))
	for _, key := range order {
		agg := aggs[key]
		pattern := models.FailurePattern{
			ID:             fmt.Sprintf("pattern-%s", key),
			Category:       agg.category,
			Label:          agg.label,
			Occurrences:    agg.occurrences,
			Prevalence:     float64(agg.occurrences) / float64(len(reports)),
			LastSeen:       agg.lastSeen.CreatedAt,
			MeanConfidence: agg.confidenceSum / float64(agg.occurrences),
			TopEvidence:    topEvidence(agg.evidence, maxEvidencePerPattern),
		}
		patterns = append(patterns, pattern)
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Prevalence > patterns[j].Prevalence
	})
	return patterns
}

func topEvidence(counts map[string]int, limit int) []string {
	evidence := make([]string, 0, len(counts))
	for ev := range counts {
		evidence = append(evidence, ev)
	}
	sort.Slice(evidence, func(i, j int) bool {
		if counts[evidence[i]] != counts[evidence[j]] {
			return counts[evidence[i]] > counts[evidence[j]]
		}
		return evidence[i] < evidence[j]
	})
	if len(evidence) > limit {
		evidence = evidence[:limit]
	}
	return evidence
}

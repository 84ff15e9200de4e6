package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/embedstack/wvtriage/internal/catalog"
	"github.com/embedstack/wvtriage/internal/models"
	"github.com/embedstack/wvtriage/internal/trace"
)

const (
	topCandidates = 3

	scoreMustPresentHit   = 20
	scoreMustPresentMiss  = -30
	scoreMustAbsentOK     = 25
	scoreMustAbsentFound  = -20
	scoreMayPresentHit    = 15
	scoreTimingExceeded   = 10
	scoreCategoryMention  = 20
	scoreLabelMention     = 10
	confidenceCeiling     = 0.95
	confidenceDenominator = 100.0
)

// Triage evaluates the fault-signature catalog against the event index
// and ranks root-cause candidates. Scoring is a transparent additive
// function: every point of confidence traces to one concrete
// present/absent pattern, so an operator can audit the ranking.
type Triage struct {
	signatures []catalog.Signature
	logger     *slog.Logger
}

// NewTriage constructs a scorer over the given signature catalog. The
// catalog is read-only; declaration order is the tie-break order.
func NewTriage(signatures []catalog.Signature, logger *slog.Logger) *Triage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Triage{signatures: signatures, logger: logger}
}

type scored struct {
	candidate models.TriageCandidate
	score     int
}

// Rank returns the top candidates by descending confidence. Signatures
// scoring zero or below are discarded. Ties keep catalog declaration
// order (stable sort over the capped confidence, so signatures meeting
// the ceiling together also tie), and two runs over the same input
// produce byte-identical rankings.
func (t *Triage) Rank(ix *trace.Index, symptom string) []models.TriageCandidate {
	symptomLower := strings.ToLower(symptom)

	ranked := make([]scored, 0, len(t.signatures))
	for _, sig := range t.signatures {
		entry := t.evaluate(sig, ix, symptomLower)
		if entry.score <= 0 {
			continue
		}
		ranked = append(ranked, entry)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].candidate.Confidence > ranked[j].candidate.Confidence
	})
	if len(ranked) > topCandidates {
		ranked = ranked[:topCandidates]
	}

	out := make([]models.TriageCandidate, 0, len(ranked))
	for _, entry := range ranked {
		out = append(out, entry.candidate)
	}
	return out
}

func (t *Triage) evaluate(sig catalog.Signature, ix *trace.Index, symptomLower string) scored {
	cand := models.TriageCandidate{
		Label:    sig.Label,
		Category: sig.Category,
		Stage:    sig.Stage,
	}
	score := 0

	// Presence, not count: additional occurrences of an already-present
	// pattern never change the score.
	for _, p := range sig.MustPresent {
		if ix.Has(p) {
			score += scoreMustPresentHit
			cand.Evidence = append(cand.Evidence, "present: "+p)
		} else {
			score += scoreMustPresentMiss
			cand.MissingSignals = append(cand.MissingSignals, "expected but missing: "+p)
		}
	}
	for _, p := range sig.MustAbsent {
		if !ix.Has(p) {
			score += scoreMustAbsentOK
			cand.Evidence = append(cand.Evidence, "absent as expected: "+p)
		} else {
			score += scoreMustAbsentFound
			cand.MissingSignals = append(cand.MissingSignals, "unexpectedly present: "+p)
		}
	}
	for _, p := range sig.MayPresent {
		if ix.Has(p) {
			score += scoreMayPresentHit
			cand.Evidence = append(cand.Evidence, "supporting: "+p)
		}
	}

	for _, pair := range sig.Timing {
		from, okFrom := ix.FirstTimestamp(pair.From)
		to, okTo := ix.FirstTimestamp(pair.To)
		if !okFrom || !okTo || to < from {
			continue
		}
		gapMs := (to - from) / 1000
		if gapMs > pair.ThresholdMs {
			score += scoreTimingExceeded
			cand.Evidence = append(cand.Evidence,
				fmt.Sprintf("timing: %s to %s took %dms (threshold %dms)", pair.From, pair.To, gapMs, pair.ThresholdMs))
		}
	}

	if bonus := symptomBonus(sig, symptomLower); bonus > 0 {
		score += bonus
		cand.Evidence = append(cand.Evidence, "symptom keywords match "+sig.Category)
	}

	cand.Confidence = float64(score) / confidenceDenominator
	if cand.Confidence > confidenceCeiling {
		cand.Confidence = confidenceCeiling
	}
	if cand.Confidence < 0 {
		cand.Confidence = 0
	}
	return scored{candidate: cand, score: score}
}

// symptomBonus rewards overlap between the operator's free-text symptom
// and the signature's category or label, capped inside [10, 20].
func symptomBonus(sig catalog.Signature, symptomLower string) int {
	if symptomLower == "" {
		return 0
	}
	if sig.Category != "" && strings.Contains(symptomLower, strings.ToLower(sig.Category)) {
		return scoreCategoryMention
	}
	for _, word := range strings.Fields(strings.ToLower(sig.Label)) {
		word = strings.Trim(word, ".,:;()")
		if len(word) < 4 {
			continue
		}
		if strings.Contains(symptomLower, word) {
			return scoreLabelMention
		}
	}
	return 0
}

package engine

import "github.com/embedstack/wvtriage/internal/models"

// Fixed linear weights for the final confidence. The recompute path in
// ComposeConfidence uses the same constants, keeping both numerically
// consistent.
const (
	weightSignalAgreement     = 0.40
	weightTemporalCorrelation = 0.35
	weightNoise               = 0.25
)

// AggregateConfidence combines the top triage candidate, structural
// signals from segmentation and classification, and playbook results
// into bounded sub-scores and one final confidence.
func AggregateConfidence(
	candidates []models.TriageCandidate,
	incarnations []models.Incarnation,
	playbook models.PlaybookReport,
	procs []models.Process,
) models.ConfidenceBreakdown {
	breakdown := models.ConfidenceBreakdown{
		SignalAgreement:     signalAgreement(candidates, playbook),
		TemporalCorrelation: temporalCorrelation(incarnations),
		NoiseLevel:          noiseLevel(playbook, procs),
	}
	breakdown.Final = ComposeConfidence(breakdown)
	return breakdown
}

// ComposeConfidence derives the final confidence from the sub-scores.
// Exposed separately so a consumer that lost the final value can
// recompute it and obtain the identical number.
func ComposeConfidence(b models.ConfidenceBreakdown) float64 {
	final := weightSignalAgreement*clamp01(b.SignalAgreement) +
		weightTemporalCorrelation*clamp01(b.TemporalCorrelation) +
		weightNoise*(1-clamp01(b.NoiseLevel))
	return clamp01(final)
}

// signalAgreement starts from the top candidate's confidence and adds a
// bonus when the playbook's break stage names the same stage the
// candidate blames.
func signalAgreement(candidates []models.TriageCandidate, playbook models.PlaybookReport) float64 {
	if len(candidates) == 0 {
		return 0
	}
	top := candidates[0]
	score := top.Confidence
	if top.Stage != "" {
		for _, check := range playbook.Checks {
			if check.BreakStage == top.Stage {
				score += 0.2
				break
			}
		}
	}
	return clamp01(score)
}

// temporalCorrelation is the fraction of incarnations flagged with an
// issue: a fault hypothesis gains weight when the timeline segments
// agree something went wrong.
func temporalCorrelation(incarnations []models.Incarnation) float64 {
	if len(incarnations) == 0 {
		return 0
	}
	issues := 0
	for _, inc := range incarnations {
		if inc.HasIssue {
			issues++
		}
	}
	return clamp01(float64(issues) / float64(len(incarnations)))
}

// noiseLevel grows with orphaned lifecycle events and raw error volume.
// A noisy trace weakens confidence in any single hypothesis.
func noiseLevel(playbook models.PlaybookReport, procs []models.Process) float64 {
	errorTotal := 0
	for _, p := range procs {
		errorTotal += p.ErrorCount
	}
	noise := float64(playbook.OrphanCount)/50.0 + float64(errorTotal)/100.0
	return clamp01(noise)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

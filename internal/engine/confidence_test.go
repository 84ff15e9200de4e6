package engine

import (
	"testing"

	"github.com/embedstack/wvtriage/internal/models"
)

func TestAggregateConfidenceEmptyInputs(t *testing.T) {
	b := AggregateConfidence(nil, nil, models.PlaybookReport{}, nil)
	if b.SignalAgreement != 0 || b.TemporalCorrelation != 0 || b.NoiseLevel != 0 {
		t.Fatalf("empty sub-scores = %+v", b)
	}
	// With zero noise the noise term still contributes its full weight.
	if b.Final != 0.25 {
		t.Fatalf("final = %v, want 0.25", b.Final)
	}
}

func TestAggregateConfidenceBreakStageAgreement(t *testing.T) {
	cand := []models.TriageCandidate{{Label: "x", Stage: "NavigationCompleted", Confidence: 0.45}}

	without := AggregateConfidence(cand, nil, models.PlaybookReport{}, nil)
	with := AggregateConfidence(cand, nil, models.PlaybookReport{
		Checks: []models.FlowCheck{{Key: "7", BreakStage: "NavigationCompleted"}},
	}, nil)

	if with.SignalAgreement <= without.SignalAgreement {
		t.Fatalf("break-stage agreement should raise signal agreement: %v vs %v",
			with.SignalAgreement, without.SignalAgreement)
	}
	if diff := with.SignalAgreement - 0.65; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("signal agreement = %v, want 0.65", with.SignalAgreement)
	}
}

func TestAggregateConfidenceTemporalRatio(t *testing.T) {
	incs := []models.Incarnation{
		{ID: 1, HasIssue: true},
		{ID: 2},
		{ID: 3, HasIssue: true},
		{ID: 4, HasIssue: true},
	}
	b := AggregateConfidence(nil, incs, models.PlaybookReport{}, nil)
	if b.TemporalCorrelation != 0.75 {
		t.Fatalf("temporal correlation = %v, want 0.75", b.TemporalCorrelation)
	}
}

func TestAggregateConfidenceNoisePenalty(t *testing.T) {
	quiet := AggregateConfidence(nil, nil, models.PlaybookReport{}, nil)
	noisy := AggregateConfidence(nil, nil,
		models.PlaybookReport{OrphanCount: 25},
		[]models.Process{{PID: 1, ErrorCount: 50}},
	)
	if noisy.NoiseLevel != 1.0 {
		t.Fatalf("noise level = %v, want saturated 1.0", noisy.NoiseLevel)
	}
	if noisy.Final >= quiet.Final {
		t.Fatalf("noise must lower final confidence: %v vs %v", noisy.Final, quiet.Final)
	}
}

func TestComposeConfidenceMatchesAggregate(t *testing.T) {
	cand := []models.TriageCandidate{{Label: "x", Stage: "Renderer", Confidence: 0.6}}
	incs := []models.Incarnation{{ID: 1, HasIssue: true}, {ID: 2}}
	pb := models.PlaybookReport{
		OrphanCount: 5,
		Checks:      []models.FlowCheck{{Key: "7", BreakStage: "Renderer"}},
	}
	procs := []models.Process{{PID: 1, ErrorCount: 3}}

	b := AggregateConfidence(cand, incs, pb, procs)
	if got := ComposeConfidence(b); got != b.Final {
		t.Fatalf("recomputed final %v != aggregated %v", got, b.Final)
	}
	if b.Final < 0 || b.Final > 1 {
		t.Fatalf("final out of bounds: %v", b.Final)
	}
}

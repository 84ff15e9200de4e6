package models

import "time"

// TriageCandidate is one scored root-cause hypothesis.
type TriageCandidate struct {
	Label    string `json:"label"`
	Category string `json:"category"`
	Stage    string `json:"stage,omitempty"`

	// Confidence is bounded to [0, 0.95].
	Confidence float64 `json:"confidence"`

	Evidence       []string `json:"evidence,omitempty"`
	MissingSignals []string `json:"missingSignals,omitempty"`
}

// ConfidenceBreakdown carries the aggregator's bounded sub-scores and
// the final confidence derived from them with fixed linear weights.
type ConfidenceBreakdown struct {
	SignalAgreement     float64 `json:"signalAgreement"`
	TemporalCorrelation float64 `json:"temporalCorrelation"`
	NoiseLevel          float64 `json:"noiseLevel"`
	Final               float64 `json:"final"`
}

// TriageReport is the complete output of one analysis run.
type TriageReport struct {
	ReportID  string    `json:"reportId"`
	HostApp   string    `json:"hostApp"`
	Symptom   string    `json:"symptom,omitempty"`
	Flow      string    `json:"flow"`
	CreatedAt time.Time `json:"createdAt"`

	LineCount  int `json:"lineCount"`
	EventCount int `json:"eventCount"`

	Processes    []Process           `json:"processes,omitempty"`
	Incarnations []Incarnation       `json:"incarnations,omitempty"`
	Playbook     PlaybookReport      `json:"playbook"`
	Candidates   []TriageCandidate   `json:"candidates,omitempty"`
	Confidence   ConfidenceBreakdown `json:"confidence"`

	// NothingFound distinguishes "analyzed and clean/empty" from an
	// analysis failure: true when no events of interest were present.
	NothingFound bool `json:"nothingFound"`
}

// RootCause returns the top candidate's label, or a placeholder when the
// scorer produced no candidates.
func (r *TriageReport) RootCause() string {
	if len(r.Candidates) == 0 {
		return "no dominant root cause"
	}
	return r.Candidates[0].Label
}

// ReportSummary is the compact listing row for stored reports.
type ReportSummary struct {
	ReportID   string    `json:"reportId"`
	HostApp    string    `json:"hostApp"`
	RootCause  string    `json:"rootCause"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"createdAt"`
}

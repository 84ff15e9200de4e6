package models

// AnalysisRequest carries the run parameters for one analysis.
type AnalysisRequest struct {
	// HostApp is the user-declared host application name used for role
	// classification.
	HostApp string `json:"hostApp"`

	// Symptom is optional free-text used by the triage scorer's keyword
	// bonus.
	Symptom string `json:"symptom,omitempty"`

	// Flow selects the lifecycle catalog; empty means the default flow.
	Flow string `json:"flow,omitempty"`

	// FromMicros/ToMicros optionally bound the analysis window; zero
	// means unbounded on that side. Lines without a timestamp are never
	// filtered by the bounds.
	FromMicros uint64 `json:"fromMicros,omitempty"`
	ToMicros   uint64 `json:"toMicros,omitempty"`
}

// ListReportsRequest captures filters for stored report history.
type ListReportsRequest struct {
	HostApp string `json:"hostApp,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

package models

import "time"

// FailurePattern is a recurring root-cause template mined from stored
// report history.
type FailurePattern struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Label       string    `json:"label"`
	Occurrences int       `json:"occurrences"`
	Prevalence  float64   `json:"prevalence"`
	LastSeen    time.Time `json:"lastSeen"`

	// TopEvidence lists the most frequent evidence lines contributing to
	// this pattern across reports.
	TopEvidence []string `json:"topEvidence,omitempty"`

	// MeanConfidence averages the candidate confidence across the reports
	// in which the pattern appeared.
	MeanConfidence float64 `json:"meanConfidence"`
}

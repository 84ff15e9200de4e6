package models

// Incarnation is one bounded, independent lifecycle of the embedded
// browser session within a capture. Incarnations are ordered and
// non-overlapping; the window of incarnation i runs from its creation
// timestamp to the next incarnation's creation timestamp (or to the end
// of the trace for the last one).
type Incarnation struct {
	// ID is 1-based and strictly increasing in creation order.
	ID int `json:"id"`

	CreationMicros uint64 `json:"creationMicros"`
	HasCreation    bool   `json:"hasCreation"`
	CreationLine   int    `json:"creationLine"`

	// Synthetic marks the single whole-trace incarnation emitted when no
	// creation event exists.
	Synthetic bool `json:"synthetic,omitempty"`

	PIDs      []uint32  `json:"pids,omitempty"`
	Processes []Process `json:"processes,omitempty"`

	// KeyEvents is the ordered, bounded list of catalog key events that
	// fell inside this incarnation's window.
	KeyEvents []Event `json:"keyEvents,omitempty"`

	Errors     []string `json:"errors,omitempty"`
	ErrorCount int      `json:"errorCount"`

	HasIssue  bool   `json:"hasIssue"`
	IssueHint string `json:"issueHint,omitempty"`

	DurationMicros uint64 `json:"durationMicros"`
	HasDuration    bool   `json:"hasDuration"`
}

package models

// StageStatus is the outcome of one lifecycle stage check.
type StageStatus string

const (
	StagePassed  StageStatus = "passed"
	StageFailed  StageStatus = "failed"
	StagePartial StageStatus = "partial"
	StageSkipped StageStatus = "skipped"
)

// StageResult records the evidence for one stage of one flow instance.
type StageResult struct {
	Stage           string      `json:"stage"`
	Status          StageStatus `json:"status"`
	MatchedEvents   []string    `json:"matchedEvents,omitempty"`
	MatchedFailures []string    `json:"matchedFailures,omitempty"`
	Notes           string      `json:"notes,omitempty"`
}

// BoundaryStatus is the outcome of a producer/consumer delivery check.
type BoundaryStatus string

const (
	BoundaryOK    BoundaryStatus = "ok"
	BoundaryIssue BoundaryStatus = "issue"
)

// BoundaryResult records one cross-boundary delivery check: did the
// application-level handler observe the event the runtime emitted?
type BoundaryResult struct {
	Name     string         `json:"name"`
	Producer string         `json:"producer"`
	Consumer string         `json:"consumer"`
	Status   BoundaryStatus `json:"status"`
	Detail   string         `json:"detail,omitempty"`
}

// FlowCheck is the stage-by-stage verdict for one correlation key.
type FlowCheck struct {
	Key    string        `json:"key"`
	Stages []StageResult `json:"stages"`

	// BreakStage names the first failed required stage in catalog order;
	// empty when no required stage failed. Downstream anomalies are not
	// blamed once an upstream required stage has failed.
	BreakStage string `json:"breakStage,omitempty"`
}

// PlaybookReport is the full lifecycle check output for one flow type.
type PlaybookReport struct {
	Flow       string           `json:"flow"`
	Checks     []FlowCheck      `json:"checks,omitempty"`
	Boundaries []BoundaryResult `json:"boundaries,omitempty"`

	// OrphanCount counts lifecycle events that could not be attributed to
	// any correlation key. Orphans are diagnostic, not errors.
	OrphanCount   int      `json:"orphanCount"`
	OrphanSamples []string `json:"orphanSamples,omitempty"`
}

package models

// Process aggregates everything observed about one (name, PID) pair.
//
// Identity is keyed by PID. OS PID reuse within one capture can fold two
// unrelated processes into one record; this is a known limitation of the
// capture format, mitigated downstream by timestamp-based incarnation
// membership rather than PID alone.
type Process struct {
	Name string `json:"name"`
	PID  uint32 `json:"pid"`
	Role Role   `json:"role"`

	FirstSeenMicros uint64 `json:"firstSeenMicros"`
	LastSeenMicros  uint64 `json:"lastSeenMicros"`
	HasTimestamps   bool   `json:"hasTimestamps"`

	EventCount int `json:"eventCount"`

	// KeyEvents holds the first N catalog key events emitted by this
	// process; KeyEventOverflow counts matches beyond the cap.
	KeyEvents        []string `json:"keyEvents,omitempty"`
	KeyEventOverflow int      `json:"keyEventOverflow,omitempty"`

	// ErrorSamples holds the first N error lines; ErrorCount is the total.
	ErrorSamples []string `json:"errorSamples,omitempty"`
	ErrorCount   int      `json:"errorCount"`
}

package models

// Event is one parsed trace line. Immutable once parsed.
type Event struct {
	// TimestampMicros is the capture-relative timestamp in microseconds.
	// Valid only when HasTimestamp is true; events without a timestamp
	// are kept for name/role extraction but excluded from ordering.
	TimestampMicros uint64 `json:"timestampMicros"`
	HasTimestamp    bool   `json:"hasTimestamp"`

	// LineIndex is the zero-based position of the line in the source dump.
	LineIndex   int    `json:"lineIndex"`
	ProcessName string `json:"processName,omitempty"`
	PID         uint32 `json:"pid,omitempty"`
	Name        string `json:"name,omitempty"`
	Raw         string `json:"raw"`
}

// Role classifies a traced process.
type Role string

const (
	RoleHost         Role = "host"
	RoleBrowser      Role = "browser"
	RoleRenderer     Role = "renderer"
	RoleGPU          Role = "gpu"
	RoleUtility      Role = "utility"
	RoleCrashHandler Role = "crashHandler"
	RoleUnclassified Role = "unclassified"
)

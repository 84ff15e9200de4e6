package engine

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/embedstack/wvtriage/internal/models"
)

const (
	// DefaultRuntimeMarker matches the embedded-runtime executable name.
	DefaultRuntimeMarker = "msedgewebview2"

	maxKeyEventsPerProcess    = 20
	maxErrorSamplesPerProcess = 10
)

var errorWordRe = regexp.MustCompile(`(?i)\b(failed|failure|error|invalid|timeout|unresponsive|crash|exception|abort)\b`)

// Markers on a runtime line that identify the browser (main) process.
var browserMarkers = []string{
	"BrowserProcessStarted",
	"CreateCoreWebView2",
	"BrowserMainThread",
}

// IsErrorLine reports whether a line matches the error vocabulary.
// Legend lines and the runtime's FallbackErrorPage feature-flag lines
// contain error words without describing a failure and are excluded.
func IsErrorLine(line string) bool {
	if strings.HasPrefix(line, "Columns:") {
		return false
	}
	if strings.Contains(line, "FallbackErrorPage") {
		return false
	}
	return errorWordRe.MatchString(line)
}

// provisional roles assigned during the first pass; generic runtime
// processes are resolved in the second pass once all evidence is in.
type provisionalRole int

const (
	rolePending provisionalRole = iota
	roleResolved
	roleGenericRuntime
)

type procState struct {
	proc       models.Process
	tag        provisionalRole
	sawFactory bool
}

// Classifier assigns roles to traced processes using ordered heuristic
// rules over the raw lines.
type Classifier struct {
	hostApp       string
	runtimeMarker string
	logger        *slog.Logger
}

// NewClassifier constructs a Classifier for the declared host
// application name. An empty runtimeMarker selects the default.
func NewClassifier(hostApp, runtimeMarker string, logger *slog.Logger) *Classifier {
	if runtimeMarker == "" {
		runtimeMarker = DefaultRuntimeMarker
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		hostApp:       strings.ToLower(hostApp),
		runtimeMarker: strings.ToLower(runtimeMarker),
		logger:        logger,
	}
}

// Classify builds the process set from parsed events. keyEvents is the
// catalog of lifecycle event names worth sampling per process. The
// algorithm is two-pass: pass one assigns provisional roles, pass two
// resolves generic runtime instances (promoted to browser when they
// emitted a factory event, demoted to renderer otherwise). Results are
// deterministic regardless of how often Classify is re-run.
func (c *Classifier) Classify(events []models.Event, keyEvents []string) []models.Process {
	keySet := make(map[string]struct{}, len(keyEvents))
	for _, k := range keyEvents {
		keySet[k] = struct{}{}
	}

	states := make(map[uint32]*procState)
	order := make([]uint32, 0)

	for _, ev := range events {
		if ev.PID == 0 || ev.ProcessName == "" {
			continue
		}
		state, ok := states[ev.PID]
		if !ok {
			state = &procState{proc: models.Process{Name: ev.ProcessName, PID: ev.PID, Role: models.RoleUnclassified}}
			states[ev.PID] = state
			order = append(order, ev.PID)
		}
		c.observe(state, ev, keySet)
	}

	// Pass two: resolve the generic runtime instances.
	for _, state := range states {
		if state.tag != roleGenericRuntime {
			continue
		}
		if state.sawFactory {
			state.proc.Role = models.RoleBrowser
		} else {
			state.proc.Role = models.RoleRenderer
		}
		state.tag = roleResolved
	}

	procs := make([]models.Process, 0, len(order))
	for _, pid := range order {
		procs = append(procs, states[pid].proc)
	}
	sort.SliceStable(procs, func(i, j int) bool {
		pi, pj := procs[i], procs[j]
		if pi.HasTimestamps != pj.HasTimestamps {
			return pi.HasTimestamps
		}
		if pi.HasTimestamps && pi.FirstSeenMicros != pj.FirstSeenMicros {
			return pi.FirstSeenMicros < pj.FirstSeenMicros
		}
		return pi.PID < pj.PID
	})
	return procs
}

func (c *Classifier) observe(state *procState, ev models.Event, keySet map[string]struct{}) {
	p := &state.proc
	p.EventCount++

	if ev.HasTimestamp {
		if !p.HasTimestamps || ev.TimestampMicros < p.FirstSeenMicros {
			p.FirstSeenMicros = ev.TimestampMicros
		}
		if !p.HasTimestamps || ev.TimestampMicros > p.LastSeenMicros {
			p.LastSeenMicros = ev.TimestampMicros
		}
		p.HasTimestamps = true
	}

	if ev.Name != "" {
		if _, key := keySet[ev.Name]; key {
			if len(p.KeyEvents) < maxKeyEventsPerProcess {
				p.KeyEvents = append(p.KeyEvents, ev.Name)
			} else {
				p.KeyEventOverflow++
			}
		}
	}

	if IsErrorLine(ev.Raw) {
		p.ErrorCount++
		if len(p.ErrorSamples) < maxErrorSamplesPerProcess {
			p.ErrorSamples = append(p.ErrorSamples, ev.Raw)
		}
	}

	lowerName := strings.ToLower(p.Name)
	isRuntime := strings.Contains(lowerName, c.runtimeMarker)
	if isRuntime && hasBrowserMarker(ev.Raw) {
		state.sawFactory = true
	}
	if state.tag == roleResolved {
		return
	}

	switch {
	case c.hostApp != "" && strings.Contains(lowerName, c.hostApp):
		p.Role = models.RoleHost
		state.tag = roleResolved
	case isRuntime:
		switch {
		case strings.Contains(ev.Raw, "--type=renderer"):
			p.Role = models.RoleRenderer
			state.tag = roleResolved
		case strings.Contains(ev.Raw, "--type=gpu"):
			p.Role = models.RoleGPU
			state.tag = roleResolved
		case strings.Contains(ev.Raw, "--type=utility"):
			p.Role = models.RoleUtility
			state.tag = roleResolved
		case strings.Contains(ev.Raw, "--type=crashpad"):
			p.Role = models.RoleCrashHandler
			state.tag = roleResolved
		case hasBrowserMarker(ev.Raw):
			p.Role = models.RoleBrowser
			state.tag = roleResolved
		default:
			state.tag = roleGenericRuntime
		}
	default:
		// Stays pending: a stronger signal may still appear on a later
		// line for this PID.
	}
}

func hasBrowserMarker(line string) bool {
	for _, marker := range browserMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

package trace

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/embedstack/wvtriage/internal/models"
)

// Tokens that begin legend/header lines in the capture format and never
// name an event.
var noiseTokens = map[string]struct{}{
	"Process": {},
	"Thread":  {},
	"Unknown": {},
}

var (
	pidRe     = regexp.MustCompile(`\((\d+)\)`)
	procRefRe = regexp.MustCompile(`([\w.\-]+)\((\d+)\)`)
)

// ParseLines tokenizes each non-empty line into an Event. Malformed
// lines degrade field by field: a line that matches no extraction
// heuristic still yields an Event carrying only its raw text.
func ParseLines(lines []string) []models.Event {
	events := make([]models.Event, 0, len(lines))
	for i, line := range lines {
		ev := models.Event{LineIndex: i, Raw: line}
		ev.Name = EventName(line)
		if ts, ok := TimestampMicros(line); ok {
			ev.TimestampMicros = ts
			ev.HasTimestamp = true
		}
		if name, pid, ok := ProcessRef(line); ok {
			ev.ProcessName = name
			ev.PID = pid
		}
		events = append(events, ev)
	}
	return events
}

// EventName extracts the event name: the first whitespace/comma/slash
// delimited token with trailing separators stripped. Purely numeric
// tokens, tokens shorter than 3 characters, the "---" marker, and known
// header tokens yield no name.
func EventName(line string) string {
	token := firstToken(line)
	token = strings.TrimRight(token, ",:;/")
	if len(token) < 3 || token == "---" {
		return ""
	}
	if isNumeric(token) {
		return ""
	}
	if _, noise := noiseTokens[token]; noise {
		return ""
	}
	return token
}

// TimestampMicros extracts the first run of at least five consecutive
// digits following a comma.
func TimestampMicros(line string) (uint64, bool) {
	for i := 0; i < len(line); i++ {
		if line[i] != ',' {
			continue
		}
		j := i + 1
		for j < len(line) && line[j] == ' ' {
			j++
		}
		k := j
		for k < len(line) && line[k] >= '0' && line[k] <= '9' {
			k++
		}
		if k-j >= 5 {
			ts, err := strconv.ParseUint(line[j:k], 10, 64)
			if err == nil {
				return ts, true
			}
		}
	}
	return 0, false
}

// PID extracts the first parenthesized digit group on the line.
func PID(line string) (uint32, bool) {
	m := pidRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	pid, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(pid), true
}

// ProcessRef extracts the first name(pid)-shaped process reference.
func ProcessRef(line string) (string, uint32, bool) {
	m := procRefRe.FindStringSubmatch(line)
	if m == nil {
		return "", 0, false
	}
	pid, err := strconv.ParseUint(m[2], 10, 32)
	if err != nil {
		return "", 0, false
	}
	return m[1], uint32(pid), true
}

func firstToken(line string) string {
	start := 0
	for start < len(line) && (line[start] == ' ' || line[start] == '\t') {
		start++
	}
	end := start
	for end < len(line) {
		c := line[end]
		if c == ' ' || c == '\t' || c == ',' || c == '/' {
			break
		}
		end++
	}
	return line[start:end]
}

func isNumeric(token string) bool {
	if token == "" {
		return false
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return false
		}
	}
	return true
}

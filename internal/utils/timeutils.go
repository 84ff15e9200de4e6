package utils

import (
	"fmt"
	"time"
)

// MicrosToDuration converts capture-relative microseconds to a Duration.
func MicrosToDuration(micros uint64) time.Duration {
	return time.Duration(micros) * time.Microsecond
}

// FormatMicros renders capture-relative microseconds as a short human
// string, e.g. "1.200s" or "—" for an unknown value.
func FormatMicros(micros uint64, known bool) string {
	if !known {
		return "—"
	}
	return fmt.Sprintf("%.3fs", float64(micros)/1e6)
}

// GapMillis returns the millisecond gap between two microsecond
// timestamps, zero when they are out of order.
func GapMillis(fromMicros, toMicros uint64) uint64 {
	if toMicros < fromMicros {
		return 0
	}
	return (toMicros - fromMicros) / 1000
}

package utils

import (
	"testing"
	"time"
)

func TestLatencyTrackerEmpty(t *testing.T) {
	lt := NewLatencyTracker(8)
	if lt.Count() != 0 {
		t.Fatalf("count = %d", lt.Count())
	}
	if got := lt.Percentile(95); got != 0 {
		t.Fatalf("p95 of empty tracker = %v", got)
	}
}

func TestLatencyTrackerPercentile(t *testing.T) {
	lt := NewLatencyTracker(16)
	for i := 1; i <= 10; i++ {
		lt.Observe(time.Duration(i) * time.Millisecond)
	}
	if lt.Count() != 10 {
		t.Fatalf("count = %d, want 10", lt.Count())
	}
	if got := lt.Percentile(0); got != 1*time.Millisecond {
		t.Fatalf("p0 = %v", got)
	}
	if got := lt.Percentile(100); got != 10*time.Millisecond {
		t.Fatalf("p100 = %v", got)
	}
	if got := lt.Percentile(50); got != 5*time.Millisecond {
		t.Fatalf("p50 = %v", got)
	}
}

func TestLatencyTrackerEvictsOldest(t *testing.T) {
	lt := NewLatencyTracker(4)
	for i := 1; i <= 6; i++ {
		lt.Observe(time.Duration(i) * time.Second)
	}
	if lt.Count() != 4 {
		t.Fatalf("count = %d, want ring size", lt.Count())
	}
	// Samples 1s and 2s have been evicted.
	if got := lt.Percentile(0); got != 3*time.Second {
		t.Fatalf("oldest surviving sample = %v, want 3s", got)
	}
}

package utils

import (
	"testing"
	"time"
)

func TestMicrosToDuration(t *testing.T) {
	if got := MicrosToDuration(1_500_000); got != 1500*time.Millisecond {
		t.Fatalf("got %v", got)
	}
}

func TestFormatMicros(t *testing.T) {
	if got := FormatMicros(1_200_000, true); got != "1.200s" {
		t.Fatalf("got %q", got)
	}
	if got := FormatMicros(0, false); got != "—" {
		t.Fatalf("unknown value = %q", got)
	}
}

func TestGapMillis(t *testing.T) {
	if got := GapMillis(1_000_000, 2_500_000); got != 1500 {
		t.Fatalf("got %d", got)
	}
	// Out-of-order timestamps clamp to zero.
	if got := GapMillis(2_000_000, 1_000_000); got != 0 {
		t.Fatalf("got %d", got)
	}
}

package cache

import (
	"testing"
	"time"

	"github.com/embedstack/wvtriage/internal/models"
)

func TestReportCacheRoundTrip(t *testing.T) {
	c := NewReportCache(time.Minute)
	c.Put(models.TriageReport{ReportID: "report-1", HostApp: "contoso"})

	got, ok := c.Get("report-1")
	if !ok || got.HostApp != "contoso" {
		t.Fatalf("got %+v/%v", got, ok)
	}
	if _, ok := c.Get("report-2"); ok {
		t.Fatalf("unexpected hit for unknown id")
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d", c.Len())
	}
}

func TestReportCacheExpiry(t *testing.T) {
	c := NewReportCache(time.Nanosecond)
	c.Put(models.TriageReport{ReportID: "report-1"})
	time.Sleep(2 * time.Millisecond)

	if _, ok := c.Get("report-1"); ok {
		t.Fatalf("expired entry must miss")
	}
}

func TestReportCacheNoTTL(t *testing.T) {
	c := NewReportCache(0)
	c.Put(models.TriageReport{ReportID: "report-1"})
	if _, ok := c.Get("report-1"); !ok {
		t.Fatalf("zero TTL disables expiry")
	}
}

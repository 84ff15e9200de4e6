package cache

import (
	"sync"
	"time"

	"github.com/embedstack/wvtriage/internal/models"
)

type entry struct {
	report    models.TriageReport
	expiresAt time.Time
}

// ReportCache is an in-memory TTL cache for report lookups, saving a
// history-store round trip on repeated GetReport calls in serve mode.
type ReportCache struct {
	mu   sync.RWMutex
	data map[string]entry
	ttl  time.Duration
}

// NewReportCache creates a cache with the given TTL; a non-positive TTL
// disables expiry.
func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{data: make(map[string]entry), ttl: ttl}
}

// Get retrieves a cached report if present and not expired.
func (c *ReportCache) Get(reportID string) (models.TriageReport, bool) {
	c.mu.RLock()
	it, ok := c.data[reportID]
	c.mu.RUnlock()
	if !ok {
		return models.TriageReport{}, false
	}
	if !it.expiresAt.IsZero() && time.Now().After(it.expiresAt) {
		c.mu.Lock()
		delete(c.data, reportID)
		c.mu.Unlock()
		return models.TriageReport{}, false
	}
	return it.report, true
}

// Put stores a report under its ID.
func (c *ReportCache) Put(report models.TriageReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = time.Now().Add(c.ttl)
	}
	c.data[report.ReportID] = entry{report: report, expiresAt: expires}
}

// Len returns the number of cached entries, expired or not.
func (c *ReportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

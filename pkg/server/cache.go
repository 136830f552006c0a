package server

import (
	"sync"
	"time"

	"clinic-kpi-report/pkg/report"
)

// Cache holds the report the API serves. It replaces the ambient
// framework-level query caches of the old dashboard with one explicit object:
// callers set a freshly built report, and invalidation is an explicit call,
// not a side effect.
type Cache struct {
	mu        sync.RWMutex
	current   *report.Report
	updatedAt time.Time
}

func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached report and when it was set. ok is false when the
// cache is empty or invalidated.
func (c *Cache) Get() (report.Report, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return report.Report{}, time.Time{}, false
	}
	return *c.current, c.updatedAt, true
}

// Set replaces the cached report.
func (c *Cache) Set(r report.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = &r
	c.updatedAt = time.Now()
}

// Invalidate empties the cache; the API reports not-ready until the next Set.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	c.updatedAt = time.Time{}
}

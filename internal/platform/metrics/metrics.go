package metrics

import (
	"sync/atomic"
	"time"
)

// Collector holds process-local request counters, exposed on the admin
// metrics endpoint. Counters only grow; restarts reset them.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	conflictHits    uint64
	rateLimited     uint64
	totalDurationMs uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	switch {
	case status >= 500:
		atomic.AddUint64(&c.errorRequests, 1)
	case status == 429:
		atomic.AddUint64(&c.rateLimited, 1)
	case status == 409:
		// Version conflicts are tracked separately; a spike usually means two
		// approvers are racing on the same documents.
		atomic.AddUint64(&c.conflictHits, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      atomic.LoadUint64(&c.errorRequests),
		"conflictsTotal":   atomic.LoadUint64(&c.conflictHits),
		"rateLimitedTotal": atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
	}
}

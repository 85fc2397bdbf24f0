package status

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// failureTTL is how long a cycle failure stays visible at /health.
const failureTTL = 1 * time.Hour

// CycleFailure is one failed poll cycle, kept for the health endpoint.
type CycleFailure struct {
	CycleID string    `json:"cycle_id"`
	Kind    string    `json:"kind"`
	Error   string    `json:"error"`
	At      time.Time `json:"at"`
}

// Recorder tracks recent cycle outcomes for the status server. Failures
// expire after an hour so /health reflects current behavior, not history.
type Recorder struct {
	failures *cache.Cache

	mu          sync.RWMutex
	started     time.Time
	lastSuccess time.Time
}

// NewRecorder creates a recorder. started is stamped at creation.
func NewRecorder() *Recorder {
	return &Recorder{
		failures: cache.New(failureTTL, 10*time.Minute),
		started:  time.Now(),
	}
}

// RecordSuccess stamps the last successful cycle time.
func (r *Recorder) RecordSuccess() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSuccess = time.Now()
}

// RecordFailure remembers a failed cycle for the health endpoint.
func (r *Recorder) RecordFailure(cycleID, kind string, err error) {
	r.failures.Set(cycleID, CycleFailure{
		CycleID: cycleID,
		Kind:    kind,
		Error:   err.Error(),
		At:      time.Now(),
	}, cache.DefaultExpiration)
}

// RecentFailures returns the unexpired cycle failures.
func (r *Recorder) RecentFailures() []CycleFailure {
	items := r.failures.Items()
	failures := make([]CycleFailure, 0, len(items))
	for _, item := range items {
		if f, ok := item.Object.(CycleFailure); ok {
			failures = append(failures, f)
		}
	}
	return failures
}

// Uptime returns how long the poller has been running.
func (r *Recorder) Uptime() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return time.Since(r.started)
}

// LastSuccess returns the time of the last clean cycle, zero if none yet.
func (r *Recorder) LastSuccess() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastSuccess
}

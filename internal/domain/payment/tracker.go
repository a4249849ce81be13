package payment

import (
	"sync"
	"time"
)

// RunTracker remembers, per user, the last day the reconciliation
// sweep ran, so repeated invocations within the same day are cheap.
// It is injected into the sweep rather than held as a process-wide
// singleton, which keeps it testable and scoped to one sweep service.
type RunTracker struct {
	mu      sync.Mutex
	lastRun map[int64]string
}

// NewRunTracker creates an empty run tracker
func NewRunTracker() *RunTracker {
	return &RunTracker{lastRun: make(map[int64]string)}
}

// MarkRan records a run for the user on the given day. It returns true
// when this is the first run of that day, false when the sweep already
// ran and should be skipped.
func (t *RunTracker) MarkRan(userID int64, day time.Time) bool {
	key := day.Format("2006-01-02")

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lastRun[userID] == key {
		return false
	}
	t.lastRun[userID] = key
	return true
}

// Reset forgets the recorded run for a user, forcing the next sweep to
// execute regardless of day.
func (t *RunTracker) Reset(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.lastRun, userID)
}

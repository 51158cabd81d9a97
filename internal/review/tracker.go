package review

import (
	"sync"

	"github.com/example/wordbot/pkg/models"
)

// Tracker keeps the progress counters of a session.
//
// The total is a watermark taken from the first non-empty queue, not a bound
// on completed: forgotten items come back without raising the total, so the
// completed/total ratio is only an estimate for display.
type Tracker struct {
	mu        sync.Mutex
	total     int
	completed int
	frozen    bool
}

// OnSessionStart records the session size once. Later calls are ignored
// until Reset, and an empty queue does not freeze the total.
func (t *Tracker) OnSessionStart(initialSize int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen || initialSize <= 0 {
		return
	}
	t.total = initialSize
	t.frozen = true
}

// OnOutcome counts a finished item unless it was forgotten.
func (t *Tracker) OnOutcome(rating models.Rating) {
	if rating == models.RatingForgot {
		return
	}
	t.mu.Lock()
	t.completed++
	t.mu.Unlock()
}

// Progress returns the completed count and the session total.
func (t *Tracker) Progress() (completed, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed, t.total
}

// Reset clears the counters for a new session.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = 0
	t.completed = 0
	t.frozen = false
}

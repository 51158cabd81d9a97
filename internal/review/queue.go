package review

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/wordbot/pkg/models"
)

// Rater applies a rating to a learning item in storage.
type Rater interface {
	ComputeNextSchedule(ctx context.Context, itemID int64, rating models.Rating) (models.ScheduleResult, error)
}

// Queue is the ordered working set of a review session. Items are unique by
// ID and reviewed front to back.
type Queue struct {
	rater Rater

	// applyMu serializes ApplyRating; mu guards items and observers.
	applyMu sync.Mutex
	mu      sync.Mutex
	items   []models.ReviewItem

	observers  map[int]func([]models.ReviewItem)
	observerID int
}

// NewQueue returns an empty queue that applies ratings through rater.
func NewQueue(rater Rater) *Queue {
	return &Queue{
		rater:     rater,
		observers: make(map[int]func([]models.ReviewItem)),
	}
}

// Load replaces the queue contents. Order is kept; a repeated ID keeps only
// its first occurrence.
func (q *Queue) Load(items []models.ReviewItem) {
	seen := make(map[int64]struct{}, len(items))
	next := make([]models.ReviewItem, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		next = append(next, item)
	}

	q.mu.Lock()
	q.items = next
	q.mu.Unlock()
	q.notify()
}

// PeekHead returns the front item, if any.
func (q *Queue) PeekHead() (models.ReviewItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return models.ReviewItem{}, false
	}
	return q.items[0], true
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Items returns a copy of the queue in review order.
func (q *Queue) Items() []models.ReviewItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]models.ReviewItem(nil), q.items...)
}

// IndexOf returns the position of itemID, or -1.
func (q *Queue) IndexOf(itemID int64) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.indexLocked(itemID)
}

// ApplyRating sends the rating for itemID to the rater and, once it has been
// accepted, removes the item or moves it to the tail. Other items keep their
// relative order.
//
// Errors: ErrInvalidRating and ErrStaleSubmission leave the queue as it was
// and never reach the rater; ErrScheduleUnavailable leaves the item in place.
func (q *Queue) ApplyRating(ctx context.Context, itemID int64, rating models.Rating) (Outcome, error) {
	if !rating.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}

	q.applyMu.Lock()
	defer q.applyMu.Unlock()

	if q.IndexOf(itemID) < 0 {
		return OutcomeStale, fmt.Errorf("item %d: %w", itemID, ErrStaleSubmission)
	}

	if _, err := q.rater.ComputeNextSchedule(ctx, itemID, rating); err != nil {
		return 0, fmt.Errorf("rate item %d: %w: %w", itemID, ErrScheduleUnavailable, err)
	}

	outcome := Classify(rating)

	q.mu.Lock()
	// Load may have replaced the queue while the rater was running.
	idx := q.indexLocked(itemID)
	if idx < 0 {
		q.mu.Unlock()
		return OutcomeStale, fmt.Errorf("item %d: %w", itemID, ErrStaleSubmission)
	}
	item := q.items[idx]
	next := make([]models.ReviewItem, 0, len(q.items))
	next = append(next, q.items[:idx]...)
	next = append(next, q.items[idx+1:]...)
	if outcome == OutcomeRequeueTail {
		next = append(next, item)
	}
	q.items = next
	q.mu.Unlock()

	q.notify()
	return outcome, nil
}

// Subscribe registers fn to receive a copy of the queue after every change.
// The returned function removes the subscription.
func (q *Queue) Subscribe(fn func([]models.ReviewItem)) func() {
	q.mu.Lock()
	id := q.observerID
	q.observerID++
	q.observers[id] = fn
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.observers, id)
		q.mu.Unlock()
	}
}

func (q *Queue) indexLocked(itemID int64) int {
	for i := range q.items {
		if q.items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func (q *Queue) notify() {
	q.mu.Lock()
	if len(q.observers) == 0 {
		q.mu.Unlock()
		return
	}
	snapshot := append([]models.ReviewItem(nil), q.items...)
	observers := make([]func([]models.ReviewItem), 0, len(q.observers))
	for _, fn := range q.observers {
		observers = append(observers, fn)
	}
	q.mu.Unlock()

	for _, fn := range observers {
		fn(append([]models.ReviewItem(nil), snapshot...))
	}
}

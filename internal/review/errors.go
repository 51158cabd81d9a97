package review

import (
	"errors"
	"fmt"
)

var (
	// ErrScheduleUnavailable means the collaborator could not apply a rating.
	// The item stays where it was so the rating can be retried.
	ErrScheduleUnavailable = errors.New("schedule unavailable")

	// ErrStaleSubmission means the rated item is no longer in the queue.
	ErrStaleSubmission = errors.New("stale submission")

	// ErrInvalidRating means the rating is outside 1..4.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrSuperseded means a newer StartSession replaced this one before it finished.
	ErrSuperseded = errors.New("superseded by a newer session start")
)

// LoadError reports a session that could not be started. The previous queue
// is left untouched and StartSession can be retried.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load session: %s: %v", e.Op, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

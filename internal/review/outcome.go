package review

import "github.com/example/wordbot/pkg/models"

// Outcome is what a rating does to the queue.
type Outcome int

const (
	// OutcomeRemove drops the item from the queue.
	OutcomeRemove Outcome = iota + 1
	// OutcomeRequeueTail moves the item to the end of the queue.
	OutcomeRequeueTail
	// OutcomeStale means the item had already left the queue; nothing changed.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRemove:
		return "remove"
	case OutcomeRequeueTail:
		return "requeue"
	case OutcomeStale:
		return "stale"
	}
	return "unknown"
}

// Classify decides the queue outcome of a rating.
func Classify(rating models.Rating) Outcome {
	if rating == models.RatingForgot {
		return OutcomeRequeueTail
	}
	return OutcomeRemove
}

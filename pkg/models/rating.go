package models

import "fmt"

// Rating is the self-reported recall grade for a review
type Rating int

const (
	// RatingForgot means the word was not recalled at all
	RatingForgot Rating = 1
	// RatingHard means recalled with significant effort
	RatingHard Rating = 2
	// RatingGood means recalled after a short hesitation
	RatingGood Rating = 3
	// RatingEasy means recalled immediately
	RatingEasy Rating = 4
)

// Valid reports whether r is one of the four grades
func (r Rating) Valid() bool {
	return r >= RatingForgot && r <= RatingEasy
}

func (r Rating) String() string {
	switch r {
	case RatingForgot:
		return "forgot"
	case RatingHard:
		return "hard"
	case RatingGood:
		return "good"
	case RatingEasy:
		return "easy"
	}
	return fmt.Sprintf("rating(%d)", int(r))
}

// ParseRating converts an integer grade into a Rating
func ParseRating(v int) (Rating, error) {
	r := Rating(v)
	if !r.Valid() {
		return 0, fmt.Errorf("rating must be between 1 and 4, got %d", v)
	}
	return r, nil
}

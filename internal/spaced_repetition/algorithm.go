package spaced_repetition

import (
	"math"
	"time"

	"github.com/example/wordbot/pkg/models"
)

// MasteredStability is the stability, in days, at which a word counts as mastered
const MasteredStability = 30.0

// Algorithm implements a stability/difficulty spaced repetition model
type Algorithm struct {
	// Difficulty is clamped to this range after every review
	MinDifficulty float64
	MaxDifficulty float64
	// Stability assigned on the first review of a fresh item
	InitialStability map[models.Rating]float64
	// Stability after forgetting an item that was already reviewed
	LapseStability float64
	// Delay before a forgotten item is due again
	ForgotDelay time.Duration
	// MaxStability caps the interval in days
	MaxStability float64

	now func() time.Time
}

// New creates an Algorithm with the default parameters
func New() *Algorithm {
	return &Algorithm{
		MinDifficulty: 1.0,
		MaxDifficulty: 10.0,
		InitialStability: map[models.Rating]float64{
			models.RatingForgot: 0.1,
			models.RatingHard:   1.0,
			models.RatingGood:   3.0,
			models.RatingEasy:   7.0,
		},
		LapseStability: 0.5,
		ForgotDelay:    3 * time.Second,
		MaxStability:   365,
		now:            time.Now,
	}
}

// WithClock returns a copy of the algorithm that reads time from now
func (a *Algorithm) WithClock(now func() time.Time) *Algorithm {
	c := *a
	c.now = now
	return &c
}

var difficultyDelta = map[models.Rating]float64{
	models.RatingForgot: 0.4,
	models.RatingHard:   0.2,
	models.RatingGood:   -0.1,
	models.RatingEasy:   -0.3,
}

// Next computes the scheduling state that follows rating an item.
// Unknown ratings are treated as good.
func (a *Algorithm) Next(stability, difficulty float64, rating models.Rating) models.ScheduleResult {
	if !rating.Valid() {
		rating = models.RatingGood
	}
	now := a.now()

	d := clamp(difficulty+difficultyDelta[rating], a.MinDifficulty, a.MaxDifficulty)

	s := stability
	if s == 0 {
		s = a.InitialStability[rating]
	} else {
		switch rating {
		case models.RatingForgot:
			s = a.LapseStability
		case models.RatingHard:
			s = s * 1.2
		case models.RatingGood:
			// grows faster for easier words
			s = s * (1 + (11-d)/5)
		case models.RatingEasy:
			s = s * (1 + (11-d)/3)
		}
	}
	if a.MaxStability > 0 && s > a.MaxStability {
		s = a.MaxStability
	}

	var due time.Time
	if rating == models.RatingForgot {
		due = now.Add(a.ForgotDelay)
	} else {
		due = now.Add(time.Duration(math.Round(s*24*60)) * time.Minute)
	}

	return models.ScheduleResult{
		Due:        due,
		Stability:  s,
		Difficulty: d,
		LastReview: now,
	}
}

// IsMastered determines if a learning item is considered mastered
func (a *Algorithm) IsMastered(item *models.LearningItem) bool {
	return item.Status == models.StatusReviewed && item.Stability >= MasteredStability
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

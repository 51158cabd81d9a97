package models

import "time"

// Learning item statuses
const (
	StatusNew      = 0
	StatusReviewed = 1
)

// LearningItem is the user's learning record for one master word
type LearningItem struct {
	ID         int64      `json:"id" db:"id"`
	MasterID   int64      `json:"master_id" db:"master_word_id"`
	Stability  float64    `json:"stability" db:"stability"`   // Memory stability in days, 0 for a fresh item
	Difficulty float64    `json:"difficulty" db:"difficulty"` // 1-10 once reviewed, 0 for a fresh item
	Due        time.Time  `json:"due" db:"due"`
	LastReview *time.Time `json:"last_review" db:"last_review"`
	Status     int        `json:"status" db:"status"`
	AddedAt    time.Time  `json:"added_at" db:"added_at"`
}

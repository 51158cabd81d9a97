package models

import "time"

// ReviewItem is a due learning record joined with its master word content
type ReviewItem struct {
	ID         int64     `json:"id" db:"id"`
	MasterID   int64     `json:"master_id" db:"master_word_id"`
	Due        time.Time `json:"due" db:"due"`
	Stability  float64   `json:"stability" db:"stability"`
	Difficulty float64   `json:"difficulty" db:"difficulty"`

	Text          string `json:"text" db:"text"`
	Definition    string `json:"definition" db:"definition"`
	Pronunciation string `json:"pronunciation" db:"pronunciation"`
}

// ScheduleResult is the scheduling state written back after a rating
type ScheduleResult struct {
	Due        time.Time `json:"due"`
	Stability  float64   `json:"stability"`
	Difficulty float64   `json:"difficulty"`
	LastReview time.Time `json:"last_review"`
}

package models

import "time"

// MasterWord is an immutable vocabulary entry from the master list
type MasterWord struct {
	ID            int64     `json:"id" db:"id"`
	Text          string    `json:"text" db:"text"`
	Definition    string    `json:"definition" db:"definition"`
	Source        string    `json:"source" db:"source"`               // Where the entry was seeded from
	Pronunciation string    `json:"pronunciation" db:"pronunciation"` // Optional phonetic spelling
	AudioURL      string    `json:"audio_url" db:"audio_url"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

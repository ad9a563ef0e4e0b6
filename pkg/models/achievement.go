package models

import "time"

// Achievement is an unlocked badge. Achievements are append-only.
type Achievement struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"-" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Icon        string    `json:"icon" db:"icon"`
	UnlockedAt  time.Time `json:"unlockedAt" db:"unlocked_at"`
}

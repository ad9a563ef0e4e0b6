package models

import "time"

// Conversation is one user message and the coach's reply to it
type Conversation struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"-" db:"user_id"`
	UserMessage string    `json:"message" db:"user_message"`
	Response    string    `json:"response" db:"response"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

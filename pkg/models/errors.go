package models

import "errors"

var (
	// ErrProfileNotFound means the acting user has no backing profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrQuestNotFound means the quest does not exist or belongs to another user.
	ErrQuestNotFound = errors.New("quest not found")
	// ErrGoalNotFound means the goal does not exist or belongs to another user.
	ErrGoalNotFound = errors.New("goal not found")
)

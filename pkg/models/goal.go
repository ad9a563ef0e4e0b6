package models

import "time"

// GoalCategory is the area of life a goal belongs to
type GoalCategory string

const (
	CategoryFitness GoalCategory = "fitness"
	CategoryCareer  GoalCategory = "career"
	CategorySkills  GoalCategory = "skills"
	CategoryMental  GoalCategory = "mental"
	CategorySocial  GoalCategory = "social"
	CategoryOther   GoalCategory = "other"
)

// IsValid reports whether c is one of the known categories
func (c GoalCategory) IsValid() bool {
	switch c {
	case CategoryFitness, CategoryCareer, CategorySkills, CategoryMental, CategorySocial, CategoryOther:
		return true
	default:
		return false
	}
}

// GoalStatus is the lifecycle state of a goal
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
)

// Goal is a long-running objective owned by a user
type Goal struct {
	ID          string       `json:"id" db:"id"`
	UserID      string       `json:"-" db:"user_id"`
	Title       string       `json:"title" db:"title"`
	Description string       `json:"description" db:"description"`
	Category    GoalCategory `json:"category" db:"category"`
	Progress    int          `json:"progress" db:"progress"` // 0-100
	Status      GoalStatus   `json:"status" db:"status"`
	TargetDate  *time.Time   `json:"targetDate,omitempty" db:"target_date"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
}

// GoalDraft is the data needed to create a goal
type GoalDraft struct {
	Title       string
	Description string
	Category    GoalCategory
	TargetDate  *time.Time
}

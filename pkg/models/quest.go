package models

import "time"

// QuestDifficulty is the advertised effort of a daily quest
type QuestDifficulty string

const (
	DifficultyEasy   QuestDifficulty = "easy"
	DifficultyMedium QuestDifficulty = "medium"
	DifficultyHard   QuestDifficulty = "hard"
)

// DailyQuest is a repeatable habit that awards XP when completed
type DailyQuest struct {
	ID               string          `json:"id" db:"id"`
	UserID           string          `json:"-" db:"user_id"`
	Title            string          `json:"title" db:"title"`
	Description      string          `json:"description" db:"description"`
	Category         string          `json:"category" db:"category"`
	Difficulty       QuestDifficulty `json:"difficulty" db:"difficulty"`
	ExperienceReward int             `json:"experienceReward" db:"experience_reward"`
	Completed        bool            `json:"completed" db:"completed"`
	Streak           int             `json:"streak" db:"streak"`
	LastCompleted    *time.Time      `json:"lastCompleted,omitempty" db:"last_completed"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
}

// QuestDraft is the data needed to create a daily quest
type QuestDraft struct {
	Title            string
	Description      string
	Category         string
	Difficulty       QuestDifficulty
	ExperienceReward int
}

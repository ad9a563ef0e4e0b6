package leveling

import (
	"fmt"
	"time"

	"github.com/example/monarchbot/pkg/models"
)

const (
	// XPPerLevel is the flat amount of experience each level spans.
	XPPerLevel = 100

	// Rewards applied by the response ledger and profile setup.
	GoalCreatedXP    = 15
	EngagementXP     = 5
	SetupCompletedXP = 25

	// Defaults for quests suggested in chat.
	SuggestedQuestXP         = 20
	SuggestedQuestCategory   = "general"
	SuggestedQuestDifficulty = models.DifficultyMedium
)

// State is the experience/level pair of a profile.
type State struct {
	Experience int
	Level      int
}

// LevelFor returns the level for a total experience value. Level 1 starts at 0 XP.
func LevelFor(experience int) int {
	if experience <= 0 {
		return 1
	}
	return experience/XPPerLevel + 1
}

// ToNextLevel returns the experience still needed to reach the next level.
func ToNextLevel(experience int) int {
	if experience < 0 {
		experience = 0
	}
	return XPPerLevel - experience%XPPerLevel
}

// Normalize re-derives Level from Experience.
func (s State) Normalize() State {
	if s.Experience < 0 {
		s.Experience = 0
	}
	s.Level = LevelFor(s.Experience)
	return s
}

// Apply adds a positive amount of experience and recomputes the level.
func Apply(s State, amount int) (State, error) {
	if amount <= 0 {
		return s, fmt.Errorf("experience amount must be positive, got %d", amount)
	}
	next := State{Experience: s.Experience + amount}
	return next.Normalize(), nil
}

// LeveledUp reports whether moving from before to after crossed a level boundary.
func LeveledUp(before, after State) bool {
	return after.Level > before.Level
}

// CompleteQuest marks q completed at now and returns the XP it awards.
// An already completed quest is returned unchanged with a zero reward and alreadyCompleted set.
func CompleteQuest(q models.DailyQuest, now time.Time) (updated models.DailyQuest, reward int, alreadyCompleted bool) {
	if q.Completed {
		return q, 0, true
	}
	q.Completed = true
	q.Streak++
	completedAt := now
	q.LastCompleted = &completedAt
	return q, q.ExperienceReward, false
}

package leveling

import (
	"time"

	"github.com/example/monarchbot/pkg/models"
)

// Summary is the condensed view of a profile used for prompts and status messages
type Summary struct {
	Level            int
	Experience       int
	ExperienceToNext int
	ActiveGoals      int
	CompletedGoals   int
	TotalQuests      int
	CompletedToday   int
	Achievements     int
	DaysSinceStart   int
}

// Summarize computes the summary of p as of now
func Summarize(p *models.UserProfile, now time.Time) Summary {
	s := Summary{
		Level:            p.Level,
		Experience:       p.Experience,
		ExperienceToNext: ToNextLevel(p.Experience),
		TotalQuests:      len(p.DailyQuests),
		Achievements:     len(p.Achievements),
	}
	for _, g := range p.Goals {
		switch g.Status {
		case models.GoalActive:
			s.ActiveGoals++
		case models.GoalCompleted:
			s.CompletedGoals++
		}
	}
	for _, q := range p.DailyQuests {
		if q.LastCompleted != nil && SameDay(*q.LastCompleted, now) {
			s.CompletedToday++
		}
	}
	if !p.CreatedAt.IsZero() && now.After(p.CreatedAt) {
		s.DaysSinceStart = int(now.Sub(p.CreatedAt).Hours() / 24)
	}
	return s
}

// SameDay reports whether a and b fall on the same calendar day in now's location.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

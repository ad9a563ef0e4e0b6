package leveling

import (
	"time"

	"github.com/example/monarchbot/pkg/models"
)

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ResetForNewDay reopens a quest completed before today and breaks its streak
// when the last completion is older than yesterday. It reports whether q changed.
func ResetForNewDay(q models.DailyQuest, now time.Time) (models.DailyQuest, bool) {
	changed := false
	if q.LastCompleted == nil {
		if q.Completed {
			q.Completed = false
			changed = true
		}
		if q.Streak != 0 {
			q.Streak = 0
			changed = true
		}
		return q, changed
	}

	today := StartOfDay(now)
	last := q.LastCompleted.In(now.Location())
	if q.Completed && last.Before(today) {
		q.Completed = false
		changed = true
	}
	if q.Streak > 0 && last.Before(today.AddDate(0, 0, -1)) {
		q.Streak = 0
		changed = true
	}
	return q, changed
}

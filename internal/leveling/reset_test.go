package leveling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/monarchbot/pkg/models"
)

func TestResetForNewDay(t *testing.T) {
	now := time.Date(2026, 10, 14, 0, 5, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	tests := []struct {
		name        string
		quest       models.DailyQuest
		want        models.DailyQuest
		wantChanged bool
	}{
		{
			name:        "completed today stays",
			quest:       models.DailyQuest{Completed: true, Streak: 3, LastCompleted: at(-time.Minute * 2)},
			want:        models.DailyQuest{Completed: true, Streak: 3, LastCompleted: at(-time.Minute * 2)},
			wantChanged: false,
		},
		{
			name:        "completed yesterday reopens and keeps streak",
			quest:       models.DailyQuest{Completed: true, Streak: 3, LastCompleted: at(-time.Hour)},
			want:        models.DailyQuest{Completed: false, Streak: 3, LastCompleted: at(-time.Hour)},
			wantChanged: true,
		},
		{
			name:        "missed a day breaks streak",
			quest:       models.DailyQuest{Completed: false, Streak: 4, LastCompleted: at(-30 * time.Hour)},
			want:        models.DailyQuest{Completed: false, Streak: 0, LastCompleted: at(-30 * time.Hour)},
			wantChanged: true,
		},
		{
			name:        "completed long ago",
			quest:       models.DailyQuest{Completed: true, Streak: 1, LastCompleted: at(-72 * time.Hour)},
			want:        models.DailyQuest{Completed: false, Streak: 0, LastCompleted: at(-72 * time.Hour)},
			wantChanged: true,
		},
		{
			name:        "never completed",
			quest:       models.DailyQuest{},
			want:        models.DailyQuest{},
			wantChanged: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := ResetForNewDay(tt.quest, now)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.want.Completed, got.Completed)
			assert.Equal(t, tt.want.Streak, got.Streak)
		})
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	got := StartOfDay(time.Date(2026, 10, 14, 23, 59, 0, 0, loc))
	assert.True(t, got.Equal(time.Date(2026, 10, 14, 0, 0, 0, 0, loc)))
}

package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/monarchbot/internal/ledger"
	"github.com/example/monarchbot/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func newTestProfile(t *testing.T, s *Store) *models.UserProfile {
	t.Helper()
	p, created, err := s.Resolve(context.Background(), "tg:42", "Jin")
	require.NoError(t, err)
	require.True(t, created)
	return p
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	first := time.Date(2026, 10, 13, 8, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return first })

	p := newTestProfile(t, s)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 0, p.Experience)
	assert.Equal(t, models.DefaultStats(), p.Stats)

	s.SetClock(func() time.Time { return first.Add(26 * time.Hour) })
	again, created, err := s.Resolve(ctx, "tg:42", "ignored")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, "Jin", again.Name)
	assert.True(t, again.LastLogin.Equal(first), "previous login is reported")

	u, err := s.Users.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, u.LastLogin.Equal(first.Add(26*time.Hour)))
}

func TestGetProfileNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetProfile(context.Background(), "missing")
	assert.True(t, ledger.IsProfileNotFound(err))
}

func TestAddExperienceDerivesLevel(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := newTestProfile(t, s)

	state, err := s.AddExperience(ctx, p.ID, 95)
	require.NoError(t, err)
	assert.Equal(t, 95, state.Experience)
	assert.Equal(t, 1, state.Level)

	state, err = s.AddExperience(ctx, p.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 115, state.Experience)
	assert.Equal(t, 2, state.Level)

	_, err = s.AddExperience(ctx, p.ID, 0)
	assert.Error(t, err)

	_, err = s.AddExperience(ctx, "missing", 5)
	assert.ErrorIs(t, err, models.ErrProfileNotFound)
}

func TestGoalsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := newTestProfile(t, s)

	g, err := s.CreateGoal(ctx, p.ID, models.GoalDraft{Title: "Run a marathon", Category: "nonsense"})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryOther, g.Category)
	assert.Equal(t, models.GoalActive, g.Status)

	updated, err := s.UpdateGoalProgress(ctx, p.ID, g.ID, 140)
	require.NoError(t, err)
	assert.Equal(t, 100, updated.Progress)
	assert.Equal(t, models.GoalCompleted, updated.Status)

	updated, err = s.UpdateGoalProgress(ctx, p.ID, g.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, models.GoalActive, updated.Status)

	_, err = s.UpdateGoalProgress(ctx, "someone-else", g.ID, 10)
	assert.ErrorIs(t, err, models.ErrGoalNotFound)

	paused, err := s.SetGoalStatus(ctx, p.ID, g.ID, models.GoalPaused)
	require.NoError(t, err)
	assert.Equal(t, models.GoalPaused, paused.Status)
	assert.Equal(t, 60, paused.Progress)

	done, err := s.SetGoalStatus(ctx, p.ID, g.ID, models.GoalCompleted)
	require.NoError(t, err)
	assert.Equal(t, 100, done.Progress)

	_, err = s.UpdateGoalProgress(ctx, p.ID, g.ID, 60)
	require.NoError(t, err)

	profile, err := s.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, profile.Goals, 1)
	assert.Equal(t, "Run a marathon", profile.Goals[0].Title)
	assert.Equal(t, 60, profile.Goals[0].Progress)
}

func TestCompleteQuestOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := newTestProfile(t, s)
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	q, err := s.CreateQuest(ctx, p.ID, models.QuestDraft{Title: "Meditate", ExperienceReward: 20})
	require.NoError(t, err)
	assert.Equal(t, models.DifficultyMedium, q.Difficulty)

	res, err := s.CompleteQuest(ctx, p.ID, q.ID, now)
	require.NoError(t, err)
	assert.False(t, res.AlreadyCompleted)
	assert.Equal(t, 20, res.Reward)
	assert.Equal(t, 20, res.After.Experience)
	assert.Equal(t, 1, res.Quest.Streak)

	res, err = s.CompleteQuest(ctx, p.ID, q.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, res.AlreadyCompleted)
	assert.Zero(t, res.Reward)

	profile, err := s.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, profile.Experience)
	require.Len(t, profile.DailyQuests, 1)
	assert.True(t, profile.DailyQuests[0].Completed)
	require.NotNil(t, profile.DailyQuests[0].LastCompleted)
	assert.True(t, profile.DailyQuests[0].LastCompleted.Equal(now))

	_, err = s.CompleteQuest(ctx, p.ID, "missing", now)
	assert.ErrorIs(t, err, models.ErrQuestNotFound)
}

func TestCreateQuestRejectsZeroReward(t *testing.T) {
	s := newTestStore(t)
	p := newTestProfile(t, s)
	_, err := s.CreateQuest(context.Background(), p.ID, models.QuestDraft{Title: "Nothing"})
	assert.Error(t, err)
}

func TestResetDailyQuests(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := newTestProfile(t, s)
	day := time.Date(2026, 10, 13, 20, 0, 0, 0, time.UTC)

	done, err := s.CreateQuest(ctx, p.ID, models.QuestDraft{Title: "Stretch", ExperienceReward: 20})
	require.NoError(t, err)
	_, err = s.CreateQuest(ctx, p.ID, models.QuestDraft{Title: "Read", ExperienceReward: 20})
	require.NoError(t, err)
	_, err = s.CompleteQuest(ctx, p.ID, done.ID, day)
	require.NoError(t, err)

	n, err := s.ResetDailyQuests(ctx, day.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	q, err := s.Quests.Get(ctx, p.ID, done.ID)
	require.NoError(t, err)
	assert.False(t, q.Completed)
	assert.Equal(t, 1, q.Streak)

	// A second day without completion breaks the streak.
	n, err = s.ResetDailyQuests(ctx, day.Add(53*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	q, err = s.Quests.Get(ctx, p.ID, done.ID)
	require.NoError(t, err)
	assert.Zero(t, q.Streak)
}

func TestConversationsAndAchievements(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := newTestProfile(t, s)
	base := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	for i, msg := range []string{"one", "two", "three"} {
		at := base.Add(time.Duration(i) * time.Minute)
		s.SetClock(func() time.Time { return at })
		require.NoError(t, s.SaveConversation(ctx, p.ID, msg, "reply "+msg))
	}

	recent, err := s.RecentConversations(ctx, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].UserMessage)
	assert.Equal(t, "three", recent[1].UserMessage)

	a, err := s.AddAchievement(ctx, p.ID, "Level 2 Reached", "Reached level 2", "⚔️")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)

	profiles, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	require.Len(t, profiles[0].Achievements, 1)
	assert.Equal(t, "Level 2 Reached", profiles[0].Achievements[0].Title)
}

func TestSaveSetup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := newTestProfile(t, s)

	require.NoError(t, s.SaveSetup(ctx, p.ID, "Sung Jin-Woo"))
	got, err := s.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.SetupCompleted)
	assert.Equal(t, "Sung Jin-Woo", got.Name)

	assert.ErrorIs(t, s.SaveSetup(ctx, "missing", "x"), models.ErrProfileNotFound)
}

package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/monarchbot/internal/logger"
	"github.com/example/monarchbot/internal/scanner"
	"github.com/example/monarchbot/pkg/models"
)

const userID = "tg:42"

func setup(t *testing.T, p *models.UserProfile) (*Ledger, *memStore) {
	t.Helper()
	store := newMemStore()
	if p != nil {
		store.add(p)
	}
	return New(store, scanner.Default(), logger.Nop()), store
}

func newProfile(exp int) *models.UserProfile {
	return &models.UserProfile{ID: userID, Experience: exp, Level: exp/100 + 1}
}

func TestProcessReplyAwardsGoalAndEngagement(t *testing.T) {
	l, store := setup(t, newProfile(95))

	o, err := l.ProcessReply(context.Background(), userID, "I suggest you work on exercise habits.")
	require.NoError(t, err)

	require.Len(t, o.CreatedGoals, 1)
	g := o.CreatedGoals[0]
	assert.Equal(t, "You work on exercise habits", g.Title)
	assert.Equal(t, models.CategoryFitness, g.Category)
	assert.Equal(t, models.GoalActive, g.Status)
	assert.Zero(t, g.Progress)
	assert.Equal(t, SuggestedGoalDescription, g.Description)

	assert.Equal(t, []int{15, 5}, store.awards)
	assert.Equal(t, 20, o.XPAwarded)
	assert.Equal(t, 115, o.Profile.Experience)
	assert.Equal(t, 2, o.Profile.Level)
	assert.True(t, o.LeveledUp())
	assert.Empty(t, o.Failures)
}

func TestProcessReplyEmptyTextStillAwardsEngagement(t *testing.T) {
	for _, text := range []string{"", "Rest well, hunter."} {
		l, store := setup(t, newProfile(0))

		o, err := l.ProcessReply(context.Background(), userID, text)
		require.NoError(t, err)

		assert.True(t, o.Scan.Empty())
		assert.Empty(t, o.CreatedGoals)
		assert.Empty(t, o.CreatedQuests)
		assert.Equal(t, []int{5}, store.awards)
		assert.Equal(t, 5, o.Profile.Experience)
		assert.Equal(t, 1, o.Profile.Level)
	}
}

func TestProcessReplyOrder(t *testing.T) {
	l, store := setup(t, newProfile(0))
	reply := "Great work today! +30 XP. You should focus on reading one book per month. Daily habit: drink two liters of water."

	o, err := l.ProcessReply(context.Background(), userID, reply)
	require.NoError(t, err)

	// marker, goal creation, engagement; quests carry no creation reward
	assert.Equal(t, []int{30, 15, 5}, store.awards)
	assert.Len(t, o.CreatedGoals, 1)
	require.Len(t, o.CreatedQuests, 1)

	q := o.CreatedQuests[0]
	assert.Equal(t, "Habit: drink two liters of water", q.Title)
	assert.Equal(t, "general", q.Category)
	assert.Equal(t, models.DifficultyMedium, q.Difficulty)
	assert.Equal(t, 20, q.ExperienceReward)
	assert.False(t, q.Completed)
	assert.Zero(t, q.Streak)
	assert.Equal(t, 50, o.Profile.Experience)
}

func TestProcessReplyTwiceCreatesNothingNew(t *testing.T) {
	l, store := setup(t, newProfile(0))
	reply := "You should focus on reading one book per month. Make it a habit: meditate for 10 minutes before bed."

	first, err := l.ProcessReply(context.Background(), userID, reply)
	require.NoError(t, err)
	require.Len(t, first.CreatedGoals, 1)
	require.Len(t, first.CreatedQuests, 1)
	assert.Len(t, first.DuplicateQuests, 1)

	second, err := l.ProcessReply(context.Background(), userID, reply)
	require.NoError(t, err)

	assert.Equal(t, first.Scan, second.Scan)
	assert.Empty(t, second.CreatedGoals)
	assert.Empty(t, second.CreatedQuests)
	assert.Len(t, second.DuplicateGoals, 1)
	// both the "habit" and "routine" phrasings of the quest are now duplicates
	assert.Len(t, second.DuplicateQuests, 2)
	assert.Len(t, store.profiles[userID].Goals, 1)
	assert.Len(t, store.profiles[userID].DailyQuests, 1)
	assert.Equal(t, []int{15, 5, 5}, store.awards)
}

func TestProcessReplyDedupsWithinReply(t *testing.T) {
	l, store := setup(t, newProfile(0))

	o, err := l.ProcessReply(context.Background(), userID, "You should read one book per month. I recommend you read one book per month!")
	require.NoError(t, err)

	assert.Len(t, o.Scan.Goals, 2)
	require.Len(t, o.CreatedGoals, 1)
	assert.Equal(t, "Read one book per month", o.CreatedGoals[0].Title)
	assert.Equal(t, []string{"You read one book per month"}, o.DuplicateGoals)
	assert.Equal(t, []int{15, 5}, store.awards)
}

func TestProcessReplyAgainstExistingGoals(t *testing.T) {
	p := newProfile(0)
	p.Goals = []models.Goal{{ID: "g1", Title: "Exercise for 30 minutes a day and track progress", Status: models.GoalActive}}
	l, _ := setup(t, p)

	o, err := l.ProcessReply(context.Background(), userID, "Focus on exercise for 30 minutes a day but add stretching first.")
	require.NoError(t, err)

	assert.Empty(t, o.CreatedGoals)
	assert.Equal(t, []string{"Exercise for 30 minutes a day but add stretching first"}, o.DuplicateGoals)
}

func TestProcessReplyPartialFailure(t *testing.T) {
	l, store := setup(t, newProfile(0))
	store.failGoal = func(title string) error {
		if title == "Focus on reading one book per month" {
			return errors.New("disk full")
		}
		return nil
	}

	o, err := l.ProcessReply(context.Background(), userID, "You should focus on reading one book per month. I recommend journaling every night before sleep!")
	require.NoError(t, err)

	require.Len(t, o.Failures, 1)
	assert.ErrorContains(t, o.Failures[0], "disk full")
	require.Len(t, o.CreatedGoals, 1)
	assert.Equal(t, "Journaling every night before sleep", o.CreatedGoals[0].Title)
	assert.Equal(t, []int{15, 5}, store.awards)
}

func TestProcessReplyXPFailureDoesNotAbort(t *testing.T) {
	l, store := setup(t, newProfile(0))
	store.failXP = func(amount int) error {
		if amount == 15 {
			return errors.New("timeout")
		}
		return nil
	}

	o, err := l.ProcessReply(context.Background(), userID, "I suggest you work on exercise habits.")
	require.NoError(t, err)

	assert.Len(t, o.CreatedGoals, 1)
	assert.Len(t, o.Failures, 1)
	assert.Equal(t, []int{5}, store.awards)
	assert.Equal(t, 5, o.XPAwarded)
}

func TestProcessReplyReloadFailureKeepsStaleProfile(t *testing.T) {
	l, store := setup(t, newProfile(10))
	store.failReload = true

	o, err := l.ProcessReply(context.Background(), userID, "")
	require.NoError(t, err)

	require.Len(t, o.Failures, 1)
	assert.ErrorContains(t, o.Failures[0], "reload profile")
	assert.Equal(t, 10, o.Profile.Experience)
	assert.Equal(t, 15, o.After.Experience)
}

func TestProcessReplyProfileNotFound(t *testing.T) {
	l, store := setup(t, nil)

	o, err := l.ProcessReply(context.Background(), userID, "I suggest you work on exercise habits.")
	assert.Nil(t, o)
	assert.ErrorIs(t, err, models.ErrProfileNotFound)
	assert.True(t, IsProfileNotFound(err))
	assert.Empty(t, store.awards)
}

func TestCompleteQuestNoDoubleReward(t *testing.T) {
	p := newProfile(90)
	p.DailyQuests = []models.DailyQuest{{ID: "q1", Title: "Walk 10k steps", ExperienceReward: 20}}
	l, store := setup(t, p)
	ctx := context.Background()

	first, err := l.CompleteQuest(ctx, userID, "q1")
	require.NoError(t, err)
	assert.False(t, first.AlreadyCompleted)
	assert.Equal(t, 20, first.Reward)
	assert.Equal(t, 1, first.Quest.Streak)
	assert.True(t, first.LeveledUp())
	assert.Equal(t, 110, store.profiles[userID].Experience)

	second, err := l.CompleteQuest(ctx, userID, "q1")
	require.NoError(t, err)
	assert.True(t, second.AlreadyCompleted)
	assert.Zero(t, second.Reward)
	assert.Equal(t, 110, store.profiles[userID].Experience)
	assert.Equal(t, []int{20}, store.awards)

	_, err = l.CompleteQuest(ctx, userID, "missing")
	assert.ErrorIs(t, err, models.ErrQuestNotFound)
}

func TestCompleteSetup(t *testing.T) {
	l, store := setup(t, newProfile(0))
	ctx := context.Background()
	fitness, _ := LookupSetupArea("fitness")
	habits, _ := LookupSetupArea("habits")

	o, err := l.CompleteSetup(ctx, userID, "Jinwoo", []SetupArea{fitness, habits})
	require.NoError(t, err)

	require.Len(t, o.CreatedGoals, 2)
	assert.Equal(t, "Get Physically Stronger", o.CreatedGoals[0].Title)
	assert.Equal(t, models.CategoryOther, o.CreatedGoals[1].Category)
	assert.Equal(t, "Working on habits improvement", o.CreatedGoals[1].Description)
	assert.Equal(t, "Jinwoo", o.Profile.Name)
	assert.True(t, o.Profile.SetupCompleted)
	assert.Equal(t, 25, o.Profile.Experience)

	again, err := l.CompleteSetup(ctx, userID, "Jinwoo", []SetupArea{fitness})
	require.NoError(t, err)
	assert.Empty(t, again.CreatedGoals)
	assert.Equal(t, []string{"Get Physically Stronger"}, again.DuplicateGoals)
	assert.Equal(t, []int{25}, store.awards)
}

func TestLookupSetupAreaUnknown(t *testing.T) {
	_, ok := LookupSetupArea("wealth")
	assert.False(t, ok)
}

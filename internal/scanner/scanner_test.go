package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/monarchbot/pkg/models"
)

func TestScanGoalCategory(t *testing.T) {
	res := Default().Scan("I suggest you work on exercise habits.")

	require.Len(t, res.Goals, 1)
	assert.Equal(t, Candidate{Rule: "advisory", Text: "You work on exercise habits", Category: models.CategoryFitness}, res.Goals[0])
	assert.Empty(t, res.Quests)
	assert.Zero(t, res.XPReward)
}

func TestScanClassifiesBySubstringNotStem(t *testing.T) {
	// "exercising" does not contain "exercise"; "work" is the first keyword hit.
	res := Default().Scan("I suggest you work on exercising for 30 minutes daily.")

	require.Len(t, res.Goals, 1)
	assert.Equal(t, "You work on exercising for 30 minutes daily", res.Goals[0].Text)
	assert.Equal(t, models.CategoryCareer, res.Goals[0].Category)
	assert.Empty(t, res.Quests, "a trigger directly followed by a terminator captures nothing")
}

func TestScanCollectsAllGoalRules(t *testing.T) {
	res := Default().Scan("You should focus on reading one book per month. I recommend journaling every night before sleep!")

	assert.Equal(t, []Candidate{
		{Rule: "advisory", Text: "Focus on reading one book per month", Category: models.CategoryMental},
		{Rule: "recommendation", Text: "Journaling every night before sleep", Category: models.CategoryOther},
	}, res.Goals)
}

func TestScanQuests(t *testing.T) {
	res := Default().Scan("Daily habit: Do 20 push-ups every morning. Make it a habit: meditate for 10 minutes before bed.")

	var texts []string
	for _, q := range res.Quests {
		texts = append(texts, q.Text)
		assert.Equal(t, "general", q.Category)
		assert.Equal(t, models.DifficultyMedium, q.Difficulty)
		assert.Equal(t, 20, q.ExperienceReward)
	}
	assert.Equal(t, []string{
		"Habit: Do 20 push-ups every morning",
		"Meditate for 10 minutes before bed",
		"Habit: meditate for 10 minutes before bed",
	}, texts)
	assert.Empty(t, res.Goals)
}

func TestScanKeepsOverlapsAcrossKinds(t *testing.T) {
	res := Default().Scan("Try to do 15 minutes of stretching before work.")

	require.Len(t, res.Goals, 1)
	assert.Equal(t, "Do 15 minutes of stretching before work", res.Goals[0].Text)
	require.Len(t, res.Quests, 1)
	assert.Equal(t, "15 minutes of stretching before work", res.Quests[0].Text)
	assert.Equal(t, "routine", res.Quests[0].Rule)
}

func TestScanLengthBounds(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		goals  int
		quests int
	}{
		{name: "capture too short", text: "Try to run.", goals: 0},
		{name: "too short after trim", text: "Goal:   run       .", goals: 0},
		{name: "trimmed inside bounds", text: "Goal: walk  more   .", goals: 1},
		{name: "goal at 99 runes", text: "Goal: " + strings.Repeat("a", 99) + ".", goals: 1},
		{name: "goal at 100 runes", text: "Goal: " + strings.Repeat("a", 100) + ".", goals: 0},
		{name: "goal over capture ceiling", text: "Goal: " + strings.Repeat("a", 101) + ".", goals: 0},
		{name: "quest at 79 runes", text: "Each day: " + strings.Repeat("b", 79) + "!", quests: 1},
		{name: "quest at 80 runes", text: "Each day: " + strings.Repeat("b", 80) + "!", quests: 0},
		{name: "no terminator", text: "You should drink more water", goals: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Default().Scan(tt.text)
			assert.Len(t, res.Goals, tt.goals)
			assert.Len(t, res.Quests, tt.quests)
		})
	}
}

func TestScanTrimsCandidate(t *testing.T) {
	res := Default().Scan("Goal: walk  more   .")
	require.Len(t, res.Goals, 1)
	assert.Equal(t, "Walk  more", res.Goals[0].Text)
	assert.Equal(t, models.CategoryFitness, res.Goals[0].Category)
}

func TestScanEmptyAndUnmatched(t *testing.T) {
	for _, text := range []string{"", "   \n", "Hello there, hunter."} {
		res := Default().Scan(text)
		assert.True(t, res.Empty(), "text %q", text)
		assert.Nil(t, res.Goals)
		assert.Nil(t, res.Quests)
	}
}

func TestScanIsPure(t *testing.T) {
	s := Default()
	text := "You should focus on reading one book per month. Daily: drink two liters of water. +10 XP"
	assert.Equal(t, s.Scan(text), s.Scan(text))
}

func TestExtractXP(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Well done! +50 XP for your effort.", 50},
		{"take +10xp", 10},
		{"+5 XP then +10 XP", 5},
		{"50 XP without a plus", 0},
		{"+999999999999999999999 XP", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractXP(tt.text), tt.text)
	}
}

func TestClassifyOrder(t *testing.T) {
	tests := []struct {
		text string
		want models.GoalCategory
	}{
		{"Go to the GYM three times a week", models.CategoryFitness},
		{"Ask for a promotion", models.CategoryCareer},
		{"Finish an online course", models.CategorySkills},
		{"Practice meditation", models.CategorySkills}, // skills is checked before mental
		{"Lower your stress", models.CategoryMental},
		{"Call your family", models.CategorySocial},
		{"Clean the garage", models.CategoryOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.text, DefaultCategories), tt.text)
	}
}

func TestNewRejectsBadRules(t *testing.T) {
	_, err := New([]Rule{{ID: "a", Triggers: []string{"x"}, MinCapture: 1, MaxCapture: 2}, {ID: "a", Triggers: []string{"y"}, MinCapture: 1, MaxCapture: 2}}, nil)
	assert.ErrorContains(t, err, "duplicate")

	_, err = New([]Rule{{ID: "empty", MinCapture: 1, MaxCapture: 2}}, nil)
	assert.ErrorContains(t, err, "no triggers")

	_, err = New([]Rule{{ID: "bounds", Triggers: []string{"x"}, MinCapture: 5, MaxCapture: 2}}, nil)
	assert.ErrorContains(t, err, "capture bounds")
}

func TestCustomRule(t *testing.T) {
	s, err := New([]Rule{{
		ID: "mission", Kind: KindQuest, Triggers: []string{"mission"},
		MinCapture: 3, MaxCapture: 40, MinKeep: 2, MaxKeep: 40, Terminators: ";",
	}}, nil)
	require.NoError(t, err)

	r, ok := s.Rule("mission")
	require.True(t, ok)
	assert.Equal(t, KindQuest, r.Kind)
	_, ok = s.Rule("advisory")
	assert.False(t, ok)

	res := s.Scan("Mission: clear the dungeon. then rest;")
	require.Len(t, res.Quests, 1)
	assert.Equal(t, "Clear the dungeon. then rest", res.Quests[0].Text)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Éviter", capitalize("éviter"))
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "20 push-ups", capitalize("20 push-ups"))
}

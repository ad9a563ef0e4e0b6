// Package ledger turns scanned coach replies into persisted goals, quests and XP.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/monarchbot/internal/leveling"
	"github.com/example/monarchbot/internal/logger"
	"github.com/example/monarchbot/internal/scanner"
	"github.com/example/monarchbot/pkg/models"
)

const (
	SuggestedGoalDescription  = "Goal suggested by the Shadow Monarch during our conversation"
	SuggestedQuestDescription = "Daily quest suggested by the Shadow Monarch"
)

// Store is the persistence the ledger needs. Implementations return
// models.ErrProfileNotFound when userID has no profile.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	CreateGoal(ctx context.Context, userID string, draft models.GoalDraft) (*models.Goal, error)
	CreateQuest(ctx context.Context, userID string, draft models.QuestDraft) (*models.DailyQuest, error)
	AddExperience(ctx context.Context, userID string, amount int) (leveling.State, error)
	CompleteQuest(ctx context.Context, userID, questID string, now time.Time) (*QuestCompletion, error)
	SaveSetup(ctx context.Context, userID, name string) error
}

// QuestCompletion is the result of completing a quest.
type QuestCompletion struct {
	Quest            models.DailyQuest
	Reward           int
	AlreadyCompleted bool
	Before           leveling.State
	After            leveling.State
}

// LeveledUp reports whether the completion crossed a level boundary.
func (c *QuestCompletion) LeveledUp() bool {
	return leveling.LeveledUp(c.Before, c.After)
}

// Outcome describes what processing one reply changed.
type Outcome struct {
	Scan            scanner.Result
	CreatedGoals    []models.Goal
	CreatedQuests   []models.DailyQuest
	DuplicateGoals  []string
	DuplicateQuests []string
	XPAwarded       int
	Before          leveling.State
	After           leveling.State
	Failures        []error
	Profile         *models.UserProfile
}

// LeveledUp reports whether the reply crossed a level boundary.
func (o *Outcome) LeveledUp() bool {
	return leveling.LeveledUp(o.Before, o.After)
}

// Ledger applies scanner output to a user's profile.
type Ledger struct {
	store   Store
	scanner *scanner.Scanner
	log     *logger.Logger
	now     func() time.Time
}

// New creates a ledger. A nil scanner uses scanner.Default().
func New(store Store, sc *scanner.Scanner, log *logger.Logger) *Ledger {
	if sc == nil {
		sc = scanner.Default()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{store: store, scanner: sc, log: log, now: time.Now}
}

// ProcessReply scans reply and applies every accepted suggestion to userID's profile.
//
// Calls reach the store in a fixed order: XP marker, goals (each followed by
// its creation reward), quests, engagement reward, profile reload. Failures of
// individual calls are logged and collected in Outcome.Failures; only a missing
// or unreadable profile aborts the whole operation.
func (l *Ledger) ProcessReply(ctx context.Context, userID, reply string) (*Outcome, error) {
	profile, err := l.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}

	log := l.log.With("user_id", userID)
	state := leveling.State{Experience: profile.Experience, Level: profile.Level}.Normalize()
	o := &Outcome{
		Scan:    l.scanner.Scan(reply),
		Before:  state,
		After:   state,
		Profile: profile,
	}

	if o.Scan.XPReward > 0 {
		l.award(ctx, log, userID, o, o.Scan.XPReward, "marker")
	}

	goalTitles := make([]string, 0, len(profile.Goals))
	for _, g := range profile.Goals {
		goalTitles = append(goalTitles, g.Title)
	}
	for _, c := range o.Scan.Goals {
		if match, dup := FindDuplicate(c.Text, goalTitles, GoalPrefixLen); dup {
			log.Debug("duplicate goal skipped", "candidate", c.Text, "existing", match)
			o.DuplicateGoals = append(o.DuplicateGoals, c.Text)
			continue
		}
		goal, err := l.store.CreateGoal(ctx, userID, models.GoalDraft{
			Title:       c.Text,
			Description: SuggestedGoalDescription,
			Category:    c.Category,
		})
		if err != nil {
			log.Error("create goal failed", "candidate", c.Text, "error", err)
			o.Failures = append(o.Failures, fmt.Errorf("create goal %q: %w", c.Text, err))
			continue
		}
		log.Info("goal created", "goal_id", goal.ID, "title", goal.Title, "category", goal.Category, "rule", c.Rule)
		o.CreatedGoals = append(o.CreatedGoals, *goal)
		goalTitles = append(goalTitles, goal.Title)
		l.award(ctx, log, userID, o, leveling.GoalCreatedXP, "goal")
	}

	questTitles := make([]string, 0, len(profile.DailyQuests))
	for _, q := range profile.DailyQuests {
		questTitles = append(questTitles, q.Title)
	}
	for _, c := range o.Scan.Quests {
		if match, dup := FindDuplicate(c.Text, questTitles, QuestPrefixLen); dup {
			log.Debug("duplicate quest skipped", "candidate", c.Text, "existing", match)
			o.DuplicateQuests = append(o.DuplicateQuests, c.Text)
			continue
		}
		quest, err := l.store.CreateQuest(ctx, userID, models.QuestDraft{
			Title:            c.Text,
			Description:      SuggestedQuestDescription,
			Category:         c.Category,
			Difficulty:       c.Difficulty,
			ExperienceReward: c.ExperienceReward,
		})
		if err != nil {
			log.Error("create quest failed", "candidate", c.Text, "error", err)
			o.Failures = append(o.Failures, fmt.Errorf("create quest %q: %w", c.Text, err))
			continue
		}
		log.Info("quest created", "quest_id", quest.ID, "title", quest.Title, "rule", c.Rule)
		o.CreatedQuests = append(o.CreatedQuests, *quest)
		questTitles = append(questTitles, quest.Title)
	}

	l.award(ctx, log, userID, o, leveling.EngagementXP, "engagement")

	l.reload(ctx, log, userID, o)
	return o, nil
}

// CompleteQuest completes questID for userID. Completing an already completed
// quest is not an error; the result has AlreadyCompleted set and no reward.
func (l *Ledger) CompleteQuest(ctx context.Context, userID, questID string) (*QuestCompletion, error) {
	res, err := l.store.CompleteQuest(ctx, userID, questID, l.now())
	if err != nil {
		return nil, err
	}
	if res.AlreadyCompleted {
		l.log.Info("quest already completed", "user_id", userID, "quest_id", questID)
	} else {
		l.log.Info("quest completed", "user_id", userID, "quest_id", questID, "reward", res.Reward, "streak", res.Quest.Streak)
	}
	return res, nil
}

// SetupArea is a primary focus a user can pick during profile setup.
type SetupArea struct {
	Key      string
	Title    string
	Category models.GoalCategory
}

// SetupAreas are offered in this order.
var SetupAreas = []SetupArea{
	{Key: "fitness", Title: "Get Physically Stronger", Category: models.CategoryFitness},
	{Key: "career", Title: "Advance My Career", Category: models.CategoryCareer},
	{Key: "skills", Title: "Learn New Skills", Category: models.CategorySkills},
	{Key: "mental", Title: "Build Mental Strength", Category: models.CategoryMental},
	{Key: "habits", Title: "Develop Better Habits", Category: models.CategoryOther},
	{Key: "social", Title: "Improve Social Skills", Category: models.CategorySocial},
}

// LookupSetupArea finds a setup area by key.
func LookupSetupArea(key string) (SetupArea, bool) {
	for _, a := range SetupAreas {
		if a.Key == key {
			return a, true
		}
	}
	return SetupArea{}, false
}

// CompleteSetup stores the display name, seeds one goal per chosen area and
// awards the setup reward the first time setup is completed.
func (l *Ledger) CompleteSetup(ctx context.Context, userID, name string, areas []SetupArea) (*Outcome, error) {
	profile, err := l.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}

	log := l.log.With("user_id", userID)
	state := leveling.State{Experience: profile.Experience, Level: profile.Level}.Normalize()
	o := &Outcome{Before: state, After: state, Profile: profile}
	firstTime := !profile.SetupCompleted

	if err := l.store.SaveSetup(ctx, userID, name); err != nil {
		return nil, fmt.Errorf("save setup: %w", err)
	}

	titles := make([]string, 0, len(profile.Goals))
	for _, g := range profile.Goals {
		titles = append(titles, g.Title)
	}
	for _, a := range areas {
		if _, dup := FindDuplicate(a.Title, titles, GoalPrefixLen); dup {
			o.DuplicateGoals = append(o.DuplicateGoals, a.Title)
			continue
		}
		goal, err := l.store.CreateGoal(ctx, userID, models.GoalDraft{
			Title:       a.Title,
			Description: fmt.Sprintf("Working on %s improvement", a.Key),
			Category:    a.Category,
		})
		if err != nil {
			log.Error("create setup goal failed", "area", a.Key, "error", err)
			o.Failures = append(o.Failures, fmt.Errorf("create goal %q: %w", a.Title, err))
			continue
		}
		o.CreatedGoals = append(o.CreatedGoals, *goal)
		titles = append(titles, goal.Title)
	}

	if firstTime {
		l.award(ctx, log, userID, o, leveling.SetupCompletedXP, "setup")
	}

	l.reload(ctx, log, userID, o)
	return o, nil
}

func (l *Ledger) award(ctx context.Context, log *logger.Logger, userID string, o *Outcome, amount int, reason string) {
	state, err := l.store.AddExperience(ctx, userID, amount)
	if err != nil {
		log.Error("add experience failed", "amount", amount, "reason", reason, "error", err)
		o.Failures = append(o.Failures, fmt.Errorf("add %d xp (%s): %w", amount, reason, err))
		return
	}
	o.XPAwarded += amount
	o.After = state
	log.Debug("experience added", "amount", amount, "reason", reason, "experience", state.Experience, "level", state.Level)
}

func (l *Ledger) reload(ctx context.Context, log *logger.Logger, userID string, o *Outcome) {
	profile, err := l.store.GetProfile(ctx, userID)
	if err != nil {
		log.Error("reload profile failed", "error", err)
		o.Failures = append(o.Failures, fmt.Errorf("reload profile: %w", err))
		return
	}
	o.Profile = profile
}

// IsProfileNotFound reports whether err means the user has no profile.
func IsProfileNotFound(err error) bool {
	return errors.Is(err, models.ErrProfileNotFound)
}

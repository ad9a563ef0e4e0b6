package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/monarchbot/internal/ledger"
	"github.com/example/monarchbot/internal/leveling"
	"github.com/example/monarchbot/pkg/models"
)

// Store groups the repositories behind the operations the ledger and bot use.
type Store struct {
	db            *sqlx.DB
	Users         *UserRepository
	Goals         *GoalRepository
	Quests        *QuestRepository
	Achievements  *AchievementRepository
	Conversations *ConversationRepository
	now           func() time.Time
}

var _ ledger.Store = (*Store)(nil)

// NewStore wraps db. Timestamps are written in UTC.
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Goals:         NewGoalRepository(db),
		Quests:        NewQuestRepository(db),
		Achievements:  NewAchievementRepository(db),
		Conversations: NewConversationRepository(db),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// DB returns the underlying handle.
func (s *Store) DB() *sqlx.DB { return s.db }

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Resolve returns the profile for an identity key, creating a level 1 profile on first contact.
// It records the login either way.
func (s *Store) Resolve(ctx context.Context, externalID, name string) (*models.UserProfile, bool, error) {
	now := s.now()
	u, err := s.Users.GetByExternalID(ctx, externalID)
	switch {
	case err == nil:
		if err := s.Users.TouchLogin(ctx, u.ID, now); err != nil {
			return nil, false, err
		}
		p, err := s.GetProfile(ctx, u.ID)
		if err != nil {
			return nil, false, err
		}
		// Callers want the previous login for "welcome back" messages.
		p.LastLogin = u.LastLogin
		return p, false, nil
	case ledger.IsProfileNotFound(err):
		u, err = s.Users.Create(ctx, externalID, name, now)
		if err != nil {
			return nil, false, err
		}
		return u, true, nil
	default:
		return nil, false, err
	}
}

// GetProfile loads a profile with its goals, quests and achievements
func (s *Store) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	p, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Goals, err = s.Goals.ListByUser(ctx, userID); err != nil {
		return nil, err
	}
	if p.DailyQuests, err = s.Quests.ListByUser(ctx, userID); err != nil {
		return nil, err
	}
	if p.Achievements, err = s.Achievements.ListByUser(ctx, userID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) CreateGoal(ctx context.Context, userID string, d models.GoalDraft) (*models.Goal, error) {
	return s.Goals.Create(ctx, userID, d, s.now())
}

func (s *Store) CreateQuest(ctx context.Context, userID string, d models.QuestDraft) (*models.DailyQuest, error) {
	return s.Quests.Create(ctx, userID, d, s.now())
}

func (s *Store) AddExperience(ctx context.Context, userID string, amount int) (leveling.State, error) {
	return s.Users.AddExperience(ctx, userID, amount)
}

func (s *Store) SaveSetup(ctx context.Context, userID, name string) error {
	return s.Users.SaveSetup(ctx, userID, name)
}

// CompleteQuest completes a quest and credits its reward in one transaction.
// The completed flag is re-checked by the UPDATE itself, so a quest is never rewarded twice.
func (s *Store) CompleteQuest(ctx context.Context, userID, questID string, now time.Time) (*ledger.QuestCompletion, error) {
	var res *ledger.QuestCompletion
	err := WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q, err := getQuest(ctx, tx, userID, questID)
		if err != nil {
			return err
		}
		u, err := getUser(ctx, tx, "id", userID)
		if err != nil {
			return err
		}
		before := leveling.State{Experience: u.Experience, Level: u.Level}
		res = &ledger.QuestCompletion{Quest: *q, Before: before, After: before}

		updated, reward, already := leveling.CompleteQuest(*q, now.UTC())
		if already {
			res.AlreadyCompleted = true
			return nil
		}
		changed, err := markCompleted(ctx, tx, updated)
		if err != nil {
			return err
		}
		if !changed {
			res.AlreadyCompleted = true
			return nil
		}
		after, err := addExperience(ctx, tx, userID, reward)
		if err != nil {
			return err
		}
		res.Quest, res.Reward, res.After = updated, reward, after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateGoalProgress sets a goal's progress, completing it at 100
func (s *Store) UpdateGoalProgress(ctx context.Context, userID, goalID string, progress int) (*models.Goal, error) {
	return s.Goals.UpdateProgress(ctx, userID, goalID, progress)
}

// SetGoalStatus pauses, resumes or completes a goal
func (s *Store) SetGoalStatus(ctx context.Context, userID, goalID string, status models.GoalStatus) (*models.Goal, error) {
	return s.Goals.SetStatus(ctx, userID, goalID, status)
}

// AddAchievement appends an achievement to the profile
func (s *Store) AddAchievement(ctx context.Context, userID, title, description, icon string) (*models.Achievement, error) {
	return s.Achievements.Create(ctx, userID, title, description, icon, s.now())
}

// SaveConversation stores one exchange
func (s *Store) SaveConversation(ctx context.Context, userID, message, response string) error {
	_, err := s.Conversations.Create(ctx, userID, message, response, s.now())
	return err
}

// RecentConversations returns the latest exchanges, oldest first
func (s *Store) RecentConversations(ctx context.Context, userID string, limit int) ([]models.Conversation, error) {
	return s.Conversations.Recent(ctx, userID, limit)
}

// ListProfiles returns every profile with its children loaded
func (s *Store) ListProfiles(ctx context.Context) ([]*models.UserProfile, error) {
	users, err := s.Users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.UserProfile, 0, len(users))
	for _, u := range users {
		p, err := s.GetProfile(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ResetDailyQuests reopens quests for the day containing now and breaks lapsed streaks.
// It returns the number of quests changed.
func (s *Store) ResetDailyQuests(ctx context.Context, now time.Time) (int, error) {
	quests, err := s.Quests.ListTouched(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, q := range quests {
		next, ok := leveling.ResetForNewDay(q, now)
		if !ok {
			continue
		}
		if err := s.Quests.SaveReset(ctx, next); err != nil {
			return changed, fmt.Errorf("quest %s: %w", q.ID, err)
		}
		changed++
	}
	return changed, nil
}

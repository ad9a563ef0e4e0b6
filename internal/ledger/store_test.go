package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/monarchbot/internal/leveling"
	"github.com/example/monarchbot/pkg/models"
)

// memStore is an in-memory Store that records XP awards and can inject failures.
type memStore struct {
	profiles map[string]*models.UserProfile
	awards   []int
	nextID   int

	failGoal    func(title string) error
	failQuest   func(title string) error
	failXP      func(amount int) error
	failReload  bool
	profileGets int
}

func newMemStore() *memStore {
	return &memStore{profiles: make(map[string]*models.UserProfile)}
}

func (s *memStore) add(p *models.UserProfile) {
	s.profiles[p.ID] = p
}

func (s *memStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *memStore) copyProfile(p *models.UserProfile) *models.UserProfile {
	cp := *p
	cp.Goals = append([]models.Goal(nil), p.Goals...)
	cp.DailyQuests = append([]models.DailyQuest(nil), p.DailyQuests...)
	cp.Achievements = append([]models.Achievement(nil), p.Achievements...)
	return &cp
}

func (s *memStore) GetProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	s.profileGets++
	if s.failReload && s.profileGets > 1 {
		return nil, errors.New("connection reset")
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	return s.copyProfile(p), nil
}

func (s *memStore) CreateGoal(_ context.Context, userID string, d models.GoalDraft) (*models.Goal, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	if s.failGoal != nil {
		if err := s.failGoal(d.Title); err != nil {
			return nil, err
		}
	}
	g := models.Goal{
		ID:          s.id("goal"),
		UserID:      userID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Status:      models.GoalActive,
		CreatedAt:   time.Now(),
	}
	p.Goals = append(p.Goals, g)
	return &g, nil
}

func (s *memStore) CreateQuest(_ context.Context, userID string, d models.QuestDraft) (*models.DailyQuest, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	if s.failQuest != nil {
		if err := s.failQuest(d.Title); err != nil {
			return nil, err
		}
	}
	q := models.DailyQuest{
		ID:               s.id("quest"),
		UserID:           userID,
		Title:            d.Title,
		Description:      d.Description,
		Category:         d.Category,
		Difficulty:       d.Difficulty,
		ExperienceReward: d.ExperienceReward,
		CreatedAt:        time.Now(),
	}
	p.DailyQuests = append(p.DailyQuests, q)
	return &q, nil
}

func (s *memStore) AddExperience(_ context.Context, userID string, amount int) (leveling.State, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return leveling.State{}, models.ErrProfileNotFound
	}
	if s.failXP != nil {
		if err := s.failXP(amount); err != nil {
			return leveling.State{}, err
		}
	}
	next, err := leveling.Apply(leveling.State{Experience: p.Experience, Level: p.Level}, amount)
	if err != nil {
		return leveling.State{}, err
	}
	p.Experience, p.Level = next.Experience, next.Level
	s.awards = append(s.awards, amount)
	return next, nil
}

func (s *memStore) CompleteQuest(_ context.Context, userID, questID string, now time.Time) (*QuestCompletion, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	for i := range p.DailyQuests {
		if p.DailyQuests[i].ID != questID {
			continue
		}
		before := leveling.State{Experience: p.Experience, Level: p.Level}
		updated, reward, already := leveling.CompleteQuest(p.DailyQuests[i], now)
		res := &QuestCompletion{Quest: updated, AlreadyCompleted: already, Before: before, After: before}
		if already {
			return res, nil
		}
		p.DailyQuests[i] = updated
		after, err := leveling.Apply(before, reward)
		if err != nil {
			return nil, err
		}
		p.Experience, p.Level = after.Experience, after.Level
		s.awards = append(s.awards, reward)
		res.Reward, res.After = reward, after
		return res, nil
	}
	return nil, models.ErrQuestNotFound
}

func (s *memStore) SaveSetup(_ context.Context, userID, name string) error {
	p, ok := s.profiles[userID]
	if !ok {
		return models.ErrProfileNotFound
	}
	p.Name = name
	p.SetupCompleted = true
	return nil
}

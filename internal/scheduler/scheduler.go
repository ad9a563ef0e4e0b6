package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/monarchbot/internal/config"
	"github.com/example/monarchbot/internal/logger"
	"github.com/example/monarchbot/pkg/models"
)

// Store is what the scheduled jobs read and write
type Store interface {
	ResetDailyQuests(ctx context.Context, now time.Time) (int, error)
	ListProfiles(ctx context.Context) ([]*models.UserProfile, error)
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(ctx context.Context, p *models.UserProfile, openQuests int) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	cfg       config.SchedulerConfig
	loc       *time.Location
	store     Store
	notifier  Notifier
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new scheduler instance
func New(cfg config.SchedulerConfig, store Store, notifier Notifier, log *logger.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		cfg:       cfg,
		loc:       loc,
		store:     store,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
	}, nil
}

// Start registers the daily jobs and starts them in the background
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(clock(s.cfg.QuestResetHour)).Do(s.runReset); err != nil {
		return fmt.Errorf("schedule quest reset: %w", err)
	}
	if s.notifier != nil {
		if _, err := s.scheduler.Every(1).Day().At(clock(s.cfg.ReminderHour)).Do(s.runReminders); err != nil {
			return fmt.Errorf("schedule reminders: %w", err)
		}
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.log.Info("scheduler started", "quest_reset_hour", s.cfg.QuestResetHour, "reminder_hour", s.cfg.ReminderHour, "tz", s.loc.String())
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runReset() {
	if _, err := s.ResetQuests(context.Background()); err != nil {
		s.log.Error("quest reset failed", "error", err)
	}
}

func (s *Scheduler) runReminders() {
	if _, err := s.SendReminders(context.Background()); err != nil {
		s.log.Error("reminders failed", "error", err)
	}
}

// ResetQuests reopens yesterday's quests now. It returns how many quests changed.
func (s *Scheduler) ResetQuests(ctx context.Context) (int, error) {
	n, err := s.store.ResetDailyQuests(ctx, s.now().In(s.loc))
	if err != nil {
		return n, err
	}
	s.log.Info("daily quests reset", "changed", n)
	return n, nil
}

// SendReminders notifies every hunter that still has open quests today.
// A failed notification is logged and does not stop the others.
func (s *Scheduler) SendReminders(ctx context.Context) (int, error) {
	if s.notifier == nil {
		return 0, nil
	}
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("list profiles: %w", err)
	}

	sent := 0
	for _, p := range profiles {
		open := OpenQuests(p)
		if open == 0 {
			continue
		}
		if err := s.notifier.SendReminder(ctx, p, open); err != nil {
			s.log.Warn("send reminder failed", "user_id", p.ID, "error", err)
			continue
		}
		sent++
	}
	s.log.Info("reminders sent", "count", sent)
	return sent, nil
}

// OpenQuests counts the quests of p not completed yet
func OpenQuests(p *models.UserProfile) int {
	n := 0
	for _, q := range p.DailyQuests {
		if !q.Completed {
			n++
		}
	}
	return n
}

func clock(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

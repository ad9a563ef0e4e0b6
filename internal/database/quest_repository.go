package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/monarchbot/pkg/models"
)

const questColumns = `id, user_id, title, description, category, difficulty, experience_reward,
	completed, streak, last_completed, created_at`

// QuestRepository handles database operations for daily quests
type QuestRepository struct {
	db *sqlx.DB
}

// NewQuestRepository creates a new repository instance
func NewQuestRepository(db *sqlx.DB) *QuestRepository {
	return &QuestRepository{db: db}
}

// Create inserts an open quest with no streak
func (r *QuestRepository) Create(ctx context.Context, userID string, d models.QuestDraft, now time.Time) (*models.DailyQuest, error) {
	if d.ExperienceReward <= 0 {
		return nil, fmt.Errorf("quest reward must be positive, got %d", d.ExperienceReward)
	}
	difficulty := d.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}
	q := &models.DailyQuest{
		ID:               uuid.NewString(),
		UserID:           userID,
		Title:            d.Title,
		Description:      d.Description,
		Category:         d.Category,
		Difficulty:       difficulty,
		ExperienceReward: d.ExperienceReward,
		CreatedAt:        now,
	}
	query := r.db.Rebind(`INSERT INTO daily_quests (` + questColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query,
		q.ID, q.UserID, q.Title, q.Description, q.Category, q.Difficulty, q.ExperienceReward,
		q.Completed, q.Streak, q.LastCompleted, q.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create quest: %w", err)
	}
	return q, nil
}

// ListByUser returns the user's quests, oldest first
func (r *QuestRepository) ListByUser(ctx context.Context, userID string) ([]models.DailyQuest, error) {
	var quests []models.DailyQuest
	query := r.db.Rebind(`SELECT ` + questColumns + ` FROM daily_quests WHERE user_id = ? ORDER BY created_at, id`)
	if err := r.db.SelectContext(ctx, &quests, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	return quests, nil
}

// ListTouched returns quests that are completed or carry a streak, across all users
func (r *QuestRepository) ListTouched(ctx context.Context) ([]models.DailyQuest, error) {
	var quests []models.DailyQuest
	query := r.db.Rebind(`SELECT ` + questColumns + ` FROM daily_quests WHERE completed = ? OR streak > 0`)
	if err := r.db.SelectContext(ctx, &quests, query, true); err != nil {
		return nil, fmt.Errorf("failed to list touched quests: %w", err)
	}
	return quests, nil
}

func getQuest(ctx context.Context, q sqlx.ExtContext, userID, questID string) (*models.DailyQuest, error) {
	var quest models.DailyQuest
	query := q.Rebind(`SELECT ` + questColumns + ` FROM daily_quests WHERE id = ? AND user_id = ?`)
	if err := sqlx.GetContext(ctx, q, &quest, query, questID, userID); err != nil {
		return nil, notFoundOr(err, models.ErrQuestNotFound, "failed to get quest")
	}
	return &quest, nil
}

// Get returns one of the user's quests
func (r *QuestRepository) Get(ctx context.Context, userID, questID string) (*models.DailyQuest, error) {
	return getQuest(ctx, r.db, userID, questID)
}

// markCompleted flips completed only if it is still false. It reports whether the row changed.
func markCompleted(ctx context.Context, tx *sqlx.Tx, q models.DailyQuest) (bool, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE daily_quests SET completed = ?, streak = ?, last_completed = ?
		WHERE id = ? AND user_id = ? AND completed = ?`),
		true, q.Streak, q.LastCompleted, q.ID, q.UserID, false)
	if err != nil {
		return false, fmt.Errorf("failed to complete quest: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// SaveReset writes the completion flag and streak of q
func (r *QuestRepository) SaveReset(ctx context.Context, q models.DailyQuest) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE daily_quests SET completed = ?, streak = ? WHERE id = ?`),
		q.Completed, q.Streak, q.ID)
	if err != nil {
		return fmt.Errorf("failed to reset quest: %w", err)
	}
	return nil
}

func notFoundOr(err, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

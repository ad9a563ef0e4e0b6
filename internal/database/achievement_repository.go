package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/monarchbot/pkg/models"
)

// AchievementRepository handles database operations for achievements
type AchievementRepository struct {
	db *sqlx.DB
}

// NewAchievementRepository creates a new repository instance
func NewAchievementRepository(db *sqlx.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// Create appends an achievement unlocked at now
func (r *AchievementRepository) Create(ctx context.Context, userID, title, description, icon string, now time.Time) (*models.Achievement, error) {
	a := &models.Achievement{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Icon:        icon,
		UnlockedAt:  now,
	}
	query := r.db.Rebind(`INSERT INTO achievements (id, user_id, title, description, icon, unlocked_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, a.ID, a.UserID, a.Title, a.Description, a.Icon, a.UnlockedAt); err != nil {
		return nil, fmt.Errorf("failed to create achievement: %w", err)
	}
	return a, nil
}

// ListByUser returns the user's achievements in unlock order
func (r *AchievementRepository) ListByUser(ctx context.Context, userID string) ([]models.Achievement, error) {
	var list []models.Achievement
	query := r.db.Rebind(`SELECT id, user_id, title, description, icon, unlocked_at FROM achievements WHERE user_id = ? ORDER BY unlocked_at, id`)
	if err := r.db.SelectContext(ctx, &list, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return list, nil
}

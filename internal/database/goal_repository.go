package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/monarchbot/pkg/models"
)

const goalColumns = `id, user_id, title, description, category, progress, status, target_date, created_at`

// GoalRepository handles database operations for goals
type GoalRepository struct {
	db *sqlx.DB
}

// NewGoalRepository creates a new repository instance
func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create inserts an active goal with zero progress
func (r *GoalRepository) Create(ctx context.Context, userID string, d models.GoalDraft, now time.Time) (*models.Goal, error) {
	category := d.Category
	if !category.IsValid() {
		category = models.CategoryOther
	}
	g := &models.Goal{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       d.Title,
		Description: d.Description,
		Category:    category,
		Status:      models.GoalActive,
		TargetDate:  d.TargetDate,
		CreatedAt:   now,
	}
	query := r.db.Rebind(`INSERT INTO goals (` + goalColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query,
		g.ID, g.UserID, g.Title, g.Description, g.Category, g.Progress, g.Status, g.TargetDate, g.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}
	return g, nil
}

// ListByUser returns the user's goals, oldest first
func (r *GoalRepository) ListByUser(ctx context.Context, userID string) ([]models.Goal, error) {
	var goals []models.Goal
	query := r.db.Rebind(`SELECT ` + goalColumns + ` FROM goals WHERE user_id = ? ORDER BY created_at, id`)
	if err := r.db.SelectContext(ctx, &goals, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

// Get returns one of the user's goals
func (r *GoalRepository) Get(ctx context.Context, userID, goalID string) (*models.Goal, error) {
	var g models.Goal
	query := r.db.Rebind(`SELECT ` + goalColumns + ` FROM goals WHERE id = ? AND user_id = ?`)
	if err := r.db.GetContext(ctx, &g, query, goalID, userID); err != nil {
		return nil, notFoundOr(err, models.ErrGoalNotFound, "failed to get goal")
	}
	return &g, nil
}

// UpdateProgress sets progress (clamped to 0-100). Reaching 100 completes the goal
// and dropping below 100 reactivates a completed one.
func (r *GoalRepository) UpdateProgress(ctx context.Context, userID, goalID string, progress int) (*models.Goal, error) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	g, err := r.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	g.Progress = progress
	switch {
	case progress == 100:
		g.Status = models.GoalCompleted
	case g.Status == models.GoalCompleted:
		g.Status = models.GoalActive
	}
	return g, r.save(ctx, g)
}

// SetStatus changes the status of a goal
func (r *GoalRepository) SetStatus(ctx context.Context, userID, goalID string, status models.GoalStatus) (*models.Goal, error) {
	g, err := r.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	g.Status = status
	if status == models.GoalCompleted {
		g.Progress = 100
	}
	return g, r.save(ctx, g)
}

func (r *GoalRepository) save(ctx context.Context, g *models.Goal) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE goals SET progress = ?, status = ? WHERE id = ? AND user_id = ?`),
		g.Progress, g.Status, g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return expectOne(res, models.ErrGoalNotFound)
}

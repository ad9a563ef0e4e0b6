package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/monarchbot/internal/leveling"
	"github.com/example/monarchbot/pkg/models"
)

const userColumns = `id, external_id, name, level, experience, strength, endurance, agility,
	intelligence, willpower, setup_completed, last_login, created_at`

// UserRepository handles database operations for user profiles
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns the profile row (without children) for id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	return getUser(ctx, r.db, "id", id)
}

// GetByExternalID returns the profile row for an identity key
func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*models.UserProfile, error) {
	return getUser(ctx, r.db, "external_id", externalID)
}

func getUser(ctx context.Context, q sqlx.ExtContext, column, value string) (*models.UserProfile, error) {
	var u models.UserProfile
	query := q.Rebind(fmt.Sprintf("SELECT %s FROM users WHERE %s = ?", userColumns, column))
	if err := sqlx.GetContext(ctx, q, &u, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return &u, nil
}

// Create inserts a fresh level 1 profile for externalID
func (r *UserRepository) Create(ctx context.Context, externalID, name string, now time.Time) (*models.UserProfile, error) {
	u := &models.UserProfile{
		ID:         uuid.NewString(),
		ExternalID: externalID,
		Name:       name,
		Level:      1,
		Stats:      models.DefaultStats(),
		LastLogin:  now,
		CreatedAt:  now,
	}
	query := r.db.Rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.ExternalID, u.Name, u.Level, u.Experience,
		u.Strength, u.Endurance, u.Agility, u.Intelligence, u.Willpower,
		u.SetupCompleted, u.LastLogin, u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// TouchLogin records a login at now
func (r *UserRepository) TouchLogin(ctx context.Context, id string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE users SET last_login = ? WHERE id = ?"), now, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return expectOne(res, models.ErrProfileNotFound)
}

// SaveSetup stores the display name and marks setup as done
func (r *UserRepository) SaveSetup(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind("UPDATE users SET name = ?, setup_completed = ? WHERE id = ?"), name, true, id)
	if err != nil {
		return fmt.Errorf("failed to save setup: %w", err)
	}
	return expectOne(res, models.ErrProfileNotFound)
}

// AddExperience atomically adds amount and re-derives the level in the same statement
func (r *UserRepository) AddExperience(ctx context.Context, id string, amount int) (leveling.State, error) {
	var state leveling.State
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		state, err = addExperience(ctx, tx, id, amount)
		return err
	})
	return state, err
}

func addExperience(ctx context.Context, tx *sqlx.Tx, id string, amount int) (leveling.State, error) {
	if amount <= 0 {
		return leveling.State{}, fmt.Errorf("experience amount must be positive, got %d", amount)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE users
		SET experience = experience + ?, level = ((experience + ?) / ?) + 1
		WHERE id = ?`),
		amount, amount, leveling.XPPerLevel, id)
	if err != nil {
		return leveling.State{}, fmt.Errorf("failed to add experience: %w", err)
	}
	if err := expectOne(res, models.ErrProfileNotFound); err != nil {
		return leveling.State{}, err
	}

	var state leveling.State
	if err := tx.QueryRowxContext(ctx, tx.Rebind("SELECT experience, level FROM users WHERE id = ?"), id).
		Scan(&state.Experience, &state.Level); err != nil {
		return leveling.State{}, fmt.Errorf("failed to read experience: %w", err)
	}
	return state, nil
}

// ListAll returns all profiles ordered by creation
func (r *UserRepository) ListAll(ctx context.Context) ([]models.UserProfile, error) {
	var users []models.UserProfile
	if err := r.db.SelectContext(ctx, &users, "SELECT "+userColumns+" FROM users ORDER BY created_at"); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

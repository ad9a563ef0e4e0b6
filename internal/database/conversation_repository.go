package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/monarchbot/pkg/models"
)

// ConversationRepository stores chat history
type ConversationRepository struct {
	db *sqlx.DB
}

// NewConversationRepository creates a new repository instance
func NewConversationRepository(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create stores one exchange
func (r *ConversationRepository) Create(ctx context.Context, userID, message, response string, now time.Time) (*models.Conversation, error) {
	c := &models.Conversation{
		ID:          uuid.NewString(),
		UserID:      userID,
		UserMessage: message,
		Response:    response,
		CreatedAt:   now,
	}
	query := r.db.Rebind(`INSERT INTO conversation_history (id, user_id, user_message, response, created_at) VALUES (?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.UserID, c.UserMessage, c.Response, c.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}
	return c, nil
}

// Recent returns up to limit of the user's latest exchanges, oldest first
func (r *ConversationRepository) Recent(ctx context.Context, userID string, limit int) ([]models.Conversation, error) {
	var list []models.Conversation
	query := r.db.Rebind(`
		SELECT id, user_id, user_message, response, created_at FROM conversation_history
		WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &list, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

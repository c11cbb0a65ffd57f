package repository

import (
	"context"
	"database/sql"

	"seeksy/internal/agent/model"
	"seeksy/pkg/logger"
)

type MessageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) Save(ctx context.Context, m *model.Message) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO agent_messages (conversation_id, user_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`,
		m.ConversationID, m.UserID, m.Role, m.Content,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to save agent message: %v", err)
	}
	return err
}

// Recent returns up to limit of the newest messages in the conversation,
// oldest first.
func (r *MessageRepository) Recent(ctx context.Context, conversationID, userID string, limit int) ([]model.Message, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, conversation_id, user_id, role, content, created_at FROM (
			SELECT id, conversation_id, user_id, role, content, created_at
			FROM agent_messages
			WHERE conversation_id = $1 AND user_id = $2
			ORDER BY created_at DESC
			LIMIT $3
		) recent ORDER BY created_at ASC`, conversationID, userID, limit)
	if err != nil {
		logger.Sugar.Errorf("Failed to load conversation %s: %v", conversationID, err)
		return nil, err
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			logger.Sugar.Errorf("Failed to scan agent message: %v", err)
			continue
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

package pgrepo

import (
	"context"
	stdsql "database/sql"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/models"
)

type MessageRepository struct {
	db *stdsql.DB
}

func NewMessageRepository(db *stdsql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Insert(ctx context.Context, m *models.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, session_id, role, author, iteration, content, model_used, reviewer_display_name, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.SessionID, m.Role, m.Author, m.Iteration, m.Content, m.ModelUsed, m.ReviewerDisplayName, m.CreatedAt)
	return err
}

func (r *MessageRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, role, author, iteration, content, model_used, reviewer_display_name, created_at
		FROM messages WHERE session_id = $1 ORDER BY iteration ASC, created_at ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Author, &m.Iteration, &m.Content, &m.ModelUsed, &m.ReviewerDisplayName, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MessageRepository) DeleteByAuthor(ctx context.Context, sessionID uuid.UUID, author string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id=$1 AND author=$2`, sessionID, author)
	return err
}

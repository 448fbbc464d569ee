package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/models"
)

// MessageRepository is the persistence boundary for append-only
// Message rows.
type MessageRepository interface {
	Insert(ctx context.Context, m *models.Message) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error)
	DeleteByAuthor(ctx context.Context, sessionID uuid.UUID, author string) error
}

type MessageService struct {
	repo MessageRepository
}

func NewMessageService(repo MessageRepository) *MessageService {
	return &MessageService{repo: repo}
}

func (s *MessageService) Append(ctx context.Context, sessionID uuid.UUID, role models.MessageRole, author string, iteration int, content, modelUsed, reviewerDisplayName string) (*models.Message, error) {
	m := &models.Message{
		ID:                  uuid.New(),
		SessionID:           sessionID,
		Role:                role,
		Author:              author,
		Iteration:           iteration,
		Content:             content,
		ModelUsed:           modelUsed,
		ReviewerDisplayName: reviewerDisplayName,
		CreatedAt:           time.Now(),
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MessageService) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	return s.repo.ListBySession(ctx, sessionID)
}

// ResetMemory implements spec ยง4.7: drop every message authored by a
// given persona in a session without touching status/iteration state.
func (s *MessageService) ResetMemory(ctx context.Context, sessionID uuid.UUID, author string) error {
	return s.repo.DeleteByAuthor(ctx, sessionID, author)
}

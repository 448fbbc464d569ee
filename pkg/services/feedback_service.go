package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/models"
)

// FeedbackRepository is the persistence boundary for FeedbackRound
// rows. Insert must fail (a unique-constraint violation wrapped as
// ErrAlreadyExists) if called twice for the same (sessionID, iteration).
type FeedbackRepository interface {
	Insert(ctx context.Context, f *models.FeedbackRound) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.FeedbackRound, error)
	AttachUserFeedback(ctx context.Context, sessionID uuid.UUID, iteration int, feedback string) error
}

type FeedbackService struct {
	repo FeedbackRepository
}

func NewFeedbackService(repo FeedbackRepository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

func (s *FeedbackService) RecordRound(ctx context.Context, sessionID uuid.UUID, iteration int, draft string, summaries []models.ReviewerSummary) (*models.FeedbackRound, error) {
	allApproved := len(summaries) > 0
	for _, sum := range summaries {
		if !sum.Approved {
			allApproved = false
			break
		}
	}
	round := &models.FeedbackRound{
		ID:                   uuid.New(),
		SessionID:            sessionID,
		Iteration:            iteration,
		DraftContent:         draft,
		AllReviewersApproved: allApproved,
		ReviewerSummaries:    summaries,
		CreatedAt:            time.Now(),
	}
	if err := s.repo.Insert(ctx, round); err != nil {
		return nil, err
	}
	return round, nil
}

func (s *FeedbackService) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.FeedbackRound, error) {
	return s.repo.ListBySession(ctx, sessionID)
}

func (s *FeedbackService) AttachUserFeedback(ctx context.Context, sessionID uuid.UUID, iteration int, feedback string) error {
	if feedback == "" {
		return NewValidationError("feedback", "must not be empty")
	}
	return s.repo.AttachUserFeedback(ctx, sessionID, iteration, feedback)
}

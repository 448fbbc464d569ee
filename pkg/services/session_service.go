package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/models"
)

// SessionRepository is the persistence boundary for Session rows.
type SessionRepository interface {
	Insert(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	List(ctx context.Context) ([]models.Session, error)
	Update(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateSessionRequest is the validated input to CreateSession.
type CreateSessionRequest struct {
	DisplayName            string
	Topic                  string
	MaxIterations          int
	StopMarker             string
	StopOnReviewerApproved bool
	RunMode                models.RunMode
	Creator                models.PersonaConfig
	Reviewers              []models.ReviewerConfig
}

// SessionService validates and persists Session state. It never talks
// to a provider or the event hub directly; those live in orchestrator.
type SessionService struct {
	repo SessionRepository
	log  *slog.Logger
}

func NewSessionService(repo SessionRepository, log *slog.Logger) *SessionService {
	if log == nil {
		log = slog.Default()
	}
	return &SessionService{repo: repo, log: log}
}

func (s *SessionService) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.Session, error) {
	if req.DisplayName == "" {
		return nil, NewValidationError("displayName", "is required")
	}
	if req.MaxIterations <= 0 {
		return nil, NewValidationError("maxIterations", "must be positive")
	}
	if req.Creator.ModelName == "" {
		return nil, NewValidationError("creator.modelName", "is required")
	}
	if len(req.Reviewers) == 0 {
		return nil, NewValidationError("reviewers", "at least one reviewer is required")
	}
	seen := map[string]bool{}
	for i, r := range req.Reviewers {
		if r.ID == "" {
			return nil, NewValidationError(fmt.Sprintf("reviewers[%d].id", i), "is required")
		}
		if seen[r.ID] {
			return nil, NewValidationError(fmt.Sprintf("reviewers[%d].id", i), "must be unique within the session")
		}
		seen[r.ID] = true
		if r.ModelName == "" {
			return nil, NewValidationError(fmt.Sprintf("reviewers[%d].modelName", i), "is required")
		}
	}

	stopMarker := req.StopMarker
	if stopMarker == "" {
		stopMarker = models.DefaultStopMarker
	}
	runMode := req.RunMode
	if runMode == "" {
		runMode = models.RunModeAuto
	}

	now := time.Now()
	session := &models.Session{
		ID:                     uuid.New(),
		DisplayName:            req.DisplayName,
		Status:                 models.SessionStatusCreated,
		MaxIterations:          req.MaxIterations,
		FeedbackVersion:        1,
		StopMarker:             stopMarker,
		StopOnReviewerApproved: req.StopOnReviewerApproved,
		RunMode:                runMode,
		Topic:                  req.Topic,
		CreatorConfig:          req.Creator,
		ReviewersConfig:        req.Reviewers,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := s.repo.Insert(ctx, session); err != nil {
		return nil, err
	}
	s.log.Info("session created", "session_id", session.ID, "reviewers", len(session.ReviewersConfig))
	return session, nil
}

func (s *SessionService) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}
	return session, nil
}

func (s *SessionService) ListSessions(ctx context.Context) ([]models.Session, error) {
	return s.repo.List(ctx)
}

func (s *SessionService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// UpdateSession stamps UpdatedAt with the current time and persists
// the mutated session state.
func (s *SessionService) UpdateSession(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now()
	return s.repo.Update(ctx, session)
}

// ModelNamesFor returns the model name of every persona in a session,
// Creator first, then reviewers in config order; a name shared by
// several personas appears once per persona. Used by the request
// surface's start-time key check, which skips repeats itself.
func ModelNamesFor(session *models.Session) []string {
	names := []string{session.CreatorConfig.ModelName}
	for _, r := range session.ReviewersConfig {
		names = append(names, r.ModelName)
	}
	return names
}

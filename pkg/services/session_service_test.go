package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/deliberate/pkg/models"
)

type fakeSessionRepo struct {
	rows map[uuid.UUID]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{rows: map[uuid.UUID]*models.Session{}}
}

func (r *fakeSessionRepo) Insert(ctx context.Context, s *models.Session) error {
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	if s, ok := r.rows[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeSessionRepo) List(ctx context.Context) ([]models.Session, error) {
	var out []models.Session
	for _, s := range r.rows {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, s *models.Session) error {
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

func validCreateRequest() CreateSessionRequest {
	return CreateSessionRequest{
		DisplayName:   "Q3 press release",
		MaxIterations: 5,
		Creator:       models.PersonaConfig{ModelName: "gpt-4"},
		Reviewers: []models.ReviewerConfig{
			{ID: "editor", PersonaConfig: models.PersonaConfig{ModelName: "gpt-4"}},
		},
	}
}

func TestCreateSession_Defaults(t *testing.T) {
	svc := NewSessionService(newFakeSessionRepo(), nil)
	session, err := svc.CreateSession(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCreated, session.Status)
	assert.Equal(t, models.DefaultStopMarker, session.StopMarker)
	assert.Equal(t, models.RunModeAuto, session.RunMode)
	assert.Equal(t, 1, session.FeedbackVersion)
}

func TestCreateSession_Validation(t *testing.T) {
	svc := NewSessionService(newFakeSessionRepo(), nil)

	t.Run("missing display name", func(t *testing.T) {
		req := validCreateRequest()
		req.DisplayName = ""
		_, err := svc.CreateSession(context.Background(), req)
		assert.True(t, IsValidationError(err))
	})

	t.Run("zero max iterations", func(t *testing.T) {
		req := validCreateRequest()
		req.MaxIterations = 0
		_, err := svc.CreateSession(context.Background(), req)
		assert.True(t, IsValidationError(err))
	})

	t.Run("no reviewers", func(t *testing.T) {
		req := validCreateRequest()
		req.Reviewers = nil
		_, err := svc.CreateSession(context.Background(), req)
		assert.True(t, IsValidationError(err))
	})

	t.Run("duplicate reviewer ids", func(t *testing.T) {
		req := validCreateRequest()
		req.Reviewers = append(req.Reviewers, models.ReviewerConfig{ID: "editor", PersonaConfig: models.PersonaConfig{ModelName: "gpt-4"}})
		_, err := svc.CreateSession(context.Background(), req)
		assert.True(t, IsValidationError(err))
	})

	t.Run("reviewer missing model name", func(t *testing.T) {
		req := validCreateRequest()
		req.Reviewers = []models.ReviewerConfig{{ID: "editor"}}
		_, err := svc.CreateSession(context.Background(), req)
		assert.True(t, IsValidationError(err))
	})
}

func TestGetSession_NotFound(t *testing.T) {
	svc := NewSessionService(newFakeSessionRepo(), nil)
	_, err := svc.GetSession(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModelNamesFor(t *testing.T) {
	session := &models.Session{
		CreatorConfig: models.PersonaConfig{ModelName: "gpt-4"},
		ReviewersConfig: []models.ReviewerConfig{
			{ID: "a", PersonaConfig: models.PersonaConfig{ModelName: "claude-3"}},
			{ID: "b", PersonaConfig: models.PersonaConfig{ModelName: "gpt-4"}},
		},
	}
	assert.Equal(t, []string{"gpt-4", "claude-3", "gpt-4"}, ModelNamesFor(session))
}

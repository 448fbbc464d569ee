package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/deliberate/pkg/events"
	"github.com/codeready-toolchain/deliberate/pkg/models"
	"github.com/codeready-toolchain/deliberate/pkg/provider"
	"github.com/codeready-toolchain/deliberate/pkg/services"
)

// cannedServer replies with the next string in replies on each
// request, as a one-shot OpenAI-compatible SSE stream.
func cannedServer(t *testing.T, replies []string) *httptest.Server {
	t.Helper()
	var idx int64
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := atomic.AddInt64(&idx, 1) - 1
		reply := replies[i]
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n", reply)
		fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"stop\"}]}\n")
		fmt.Fprintf(w, "data: [DONE]\n")
	}))
}

type fakeResolver struct {
	endpoints map[string]string
}

func (f *fakeResolver) Resolve(ctx context.Context, userEmail, modelName string) (string, models.Provider, string, error) {
	ep, ok := f.endpoints[modelName]
	if !ok {
		return "", "", "", provider.ErrNotConfigured
	}
	return ep, models.ProviderOpenAI, "test-key", nil
}

// --- in-memory repos satisfying the services package's repository interfaces ---

type memSessionRepo struct{ rows map[uuid.UUID]*models.Session }

func (r *memSessionRepo) Insert(ctx context.Context, s *models.Session) error {
	r.rows[s.ID] = s
	return nil
}
func (r *memSessionRepo) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return r.rows[id], nil
}
func (r *memSessionRepo) List(ctx context.Context) ([]models.Session, error) { return nil, nil }
func (r *memSessionRepo) Update(ctx context.Context, s *models.Session) error {
	r.rows[s.ID] = s
	return nil
}
func (r *memSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

type memMessageRepo struct{ rows []models.Message }

func (r *memMessageRepo) Insert(ctx context.Context, m *models.Message) error {
	r.rows = append(r.rows, *m)
	return nil
}
func (r *memMessageRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	var out []models.Message
	for _, m := range r.rows {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}
func (r *memMessageRepo) DeleteByAuthor(ctx context.Context, sessionID uuid.UUID, author string) error {
	var kept []models.Message
	for _, m := range r.rows {
		if m.SessionID == sessionID && m.Author == author {
			continue
		}
		kept = append(kept, m)
	}
	r.rows = kept
	return nil
}

type memFeedbackRepo struct{ rows []models.FeedbackRound }

func (r *memFeedbackRepo) Insert(ctx context.Context, f *models.FeedbackRound) error {
	r.rows = append(r.rows, *f)
	return nil
}
func (r *memFeedbackRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.FeedbackRound, error) {
	var out []models.FeedbackRound
	for _, f := range r.rows {
		if f.SessionID == sessionID {
			out = append(out, f)
		}
	}
	return out, nil
}
func (r *memFeedbackRepo) AttachUserFeedback(ctx context.Context, sessionID uuid.UUID, iteration int, feedback string) error {
	return nil
}

func newTestOrchestrator(t *testing.T, creatorURL, reviewerURL string) (*Orchestrator, *memSessionRepo) {
	t.Helper()
	sessRepo := &memSessionRepo{rows: map[uuid.UUID]*models.Session{}}
	sessions := services.NewSessionService(sessRepo, nil)
	messages := services.NewMessageService(&memMessageRepo{})
	feedback := services.NewFeedbackService(&memFeedbackRepo{})

	resolver := &fakeResolver{endpoints: map[string]string{
		"creator-model":  creatorURL,
		"reviewer-model": reviewerURL,
	}}
	router := provider.NewRouter(resolver, 0, nil)
	hub := events.NewHub(nil, nil)

	return New(sessions, messages, feedback, router, hub, DefaultConfig(), nil), sessRepo
}

func TestRunLoop_ReviewerApprovedGrantsExactlyOneMoreIteration(t *testing.T) {
	creator := cannedServer(t, []string{"draft v1", "draft v2", "draft v3"})
	defer creator.Close()
	reviewer := cannedServer(t, []string{"Needs work.", "Great! @@SIGNED OFF@@", "Actually, reconsider this."})
	defer reviewer.Close()

	orch, sessRepo := newTestOrchestrator(t, creator.URL, reviewer.URL)

	session := &models.Session{
		ID:                     uuid.New(),
		Status:                 models.SessionStatusCreated,
		MaxIterations:          5,
		StopMarker:             models.DefaultStopMarker,
		StopOnReviewerApproved: true,
		RunMode:                models.RunModeAuto,
		CreatorConfig:          models.PersonaConfig{ModelName: "creator-model"},
		ReviewersConfig: []models.ReviewerConfig{
			{ID: "editor", DisplayName: "Editor", PersonaConfig: models.PersonaConfig{ModelName: "reviewer-model"}},
		},
	}
	require.NoError(t, sessRepo.Insert(context.Background(), session))

	require.NoError(t, orch.Start(context.Background(), session.ID, "alice@example.com"))

	var final *models.Session
	for i := 0; i < 100; i++ {
		time.Sleep(20 * time.Millisecond)
		s, err := sessRepo.Get(context.Background(), session.ID)
		require.NoError(t, err)
		if s.IsTerminal() {
			final = s
			break
		}
	}

	require.NotNil(t, final, "session never reached a terminal state")
	assert.Equal(t, models.SessionStatusCompleted, final.Status)
	assert.Equal(t, models.StopReasonReviewerApproved, final.StopReason)
	assert.Equal(t, 3, final.CurrentIteration)
	assert.Equal(t, "draft v3", final.FinalContent)
}

func TestRunLoop_FinalMarkerStopsImmediately(t *testing.T) {
	creator := cannedServer(t, []string{"FINAL: the finished piece"})
	defer creator.Close()
	reviewer := cannedServer(t, []string{"unused"})
	defer reviewer.Close()

	orch, sessRepo := newTestOrchestrator(t, creator.URL, reviewer.URL)

	session := &models.Session{
		ID:            uuid.New(),
		Status:        models.SessionStatusCreated,
		MaxIterations: 5,
		StopMarker:    "FINAL:",
		RunMode:       models.RunModeAuto,
		CreatorConfig: models.PersonaConfig{ModelName: "creator-model"},
		ReviewersConfig: []models.ReviewerConfig{
			{ID: "editor", PersonaConfig: models.PersonaConfig{ModelName: "reviewer-model"}},
		},
	}
	require.NoError(t, sessRepo.Insert(context.Background(), session))
	require.NoError(t, orch.Start(context.Background(), session.ID, "alice@example.com"))

	var final *models.Session
	for i := 0; i < 100; i++ {
		time.Sleep(20 * time.Millisecond)
		s, err := sessRepo.Get(context.Background(), session.ID)
		require.NoError(t, err)
		if s.IsTerminal() {
			final = s
			break
		}
	}

	require.NotNil(t, final)
	assert.Equal(t, models.StopReasonFinalMarker, final.StopReason)
	assert.Equal(t, "the finished piece", final.FinalContent)
	assert.Equal(t, 1, final.CurrentIteration)
}

func TestStart_RejectsAlreadyRunningSession(t *testing.T) {
	creator := cannedServer(t, []string{"draft", "draft", "draft", "draft", "draft"})
	defer creator.Close()
	reviewer := cannedServer(t, []string{"no", "no", "no", "no", "no"})
	defer reviewer.Close()

	orch, sessRepo := newTestOrchestrator(t, creator.URL, reviewer.URL)
	session := &models.Session{
		ID:            uuid.New(),
		Status:        models.SessionStatusCreated,
		MaxIterations: 5,
		StopMarker:    models.DefaultStopMarker,
		RunMode:       models.RunModeAuto,
		CreatorConfig: models.PersonaConfig{ModelName: "creator-model"},
		ReviewersConfig: []models.ReviewerConfig{
			{ID: "editor", PersonaConfig: models.PersonaConfig{ModelName: "reviewer-model"}},
		},
	}
	require.NoError(t, sessRepo.Insert(context.Background(), session))
	require.NoError(t, orch.Start(context.Background(), session.ID, "alice@example.com"))

	err := orch.Start(context.Background(), session.ID, "alice@example.com")
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, orch.Stop(context.Background(), session.ID))
}

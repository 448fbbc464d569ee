// Package orchestrator implements the per-session iteration state
// machine described in spec ยง4.3: it drives Creator -> Reviewers ->
// Creator cycles, evaluates stop conditions, persists every artifact
// exactly once, and publishes events as it goes.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/events"
	"github.com/codeready-toolchain/deliberate/pkg/models"
	"github.com/codeready-toolchain/deliberate/pkg/provider"
	"github.com/codeready-toolchain/deliberate/pkg/services"
)

// Config holds the orchestration-wide defaults read from
// deliberate.yaml's orchestration.* section (spec ยง6).
type Config struct {
	ContextTurnsToSend int
	RequestTimeout     time.Duration
}

func DefaultConfig() Config {
	return Config{ContextTurnsToSend: defaultContextTurns, RequestTimeout: 5 * time.Minute}
}

// Orchestrator is the top-level coordinator: one instance per process,
// shared across all sessions, with per-session state living only in
// the database and in this orchestrator's cancelRegistry (spec ยง5).
type Orchestrator struct {
	sessions *services.SessionService
	messages *services.MessageService
	feedback *services.FeedbackService
	router   *provider.Router
	hub      *events.Hub
	cancels  *cancelRegistry
	cfg      Config
	log      *slog.Logger
}

func New(sessions *services.SessionService, messages *services.MessageService, feedback *services.FeedbackService, router *provider.Router, hub *events.Hub, cfg Config, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		sessions: sessions,
		messages: messages,
		feedback: feedback,
		router:   router,
		hub:      hub,
		cancels:  newCancelRegistry(),
		cfg:      cfg,
		log:      log,
	}
}

// ActiveSessionCount backs the /health endpoint's active-session gauge.
func (o *Orchestrator) ActiveSessionCount() int { return o.cancels.count() }

// Start begins (or resumes) a session's deliberation loop in a new
// goroutine and returns immediately. It is the only place a goroutine
// is spawned per session: there is no shared worker pool, since
// multi-node scaling is out of scope (spec ยง5).
func (o *Orchestrator) Start(ctx context.Context, sessionID uuid.UUID, userEmail string) error {
	return o.begin(ctx, sessionID, userEmail, false)
}

// Step behaves like Start but runs exactly one iteration and then
// pauses, regardless of the session's configured RunMode.
func (o *Orchestrator) Step(ctx context.Context, sessionID uuid.UUID, userEmail string) error {
	return o.begin(ctx, sessionID, userEmail, true)
}

func (o *Orchestrator) begin(ctx context.Context, sessionID uuid.UUID, userEmail string, singleStep bool) error {
	session, err := o.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if o.cancels.isActive(sessionID) {
		return ErrAlreadyRunning
	}
	if session.Status != models.SessionStatusCreated && session.Status != models.SessionStatusPaused {
		return ErrNotRunnable
	}

	session.Status = models.SessionStatusRunning
	if err := o.sessions.UpdateSession(ctx, session); err != nil {
		return err
	}
	o.hub.Publish(ctx, sessionID, models.EventSessionStarted, events.SessionLifecyclePayload{SessionID: sessionID})

	runCtx, cancel := context.WithCancel(context.Background())
	o.cancels.register(sessionID, cancel)

	go func() {
		defer cancel()
		defer o.cancels.unregister(sessionID)
		o.runLoop(runCtx, sessionID, userEmail, singleStep)
	}()
	return nil
}

// Stop requests a user-initiated stop (spec ยง4.3 stop condition 1).
// Idempotent: stopping a session with no active goroutine is a no-op.
func (o *Orchestrator) Stop(ctx context.Context, sessionID uuid.UUID) error {
	o.cancels.cancel(sessionID)
	return nil
}

// ResetMemory implements spec ยง4.7.
func (o *Orchestrator) ResetMemory(ctx context.Context, sessionID uuid.UUID, personaID string) error {
	if err := o.messages.ResetMemory(ctx, sessionID, personaID); err != nil {
		return err
	}
	o.hub.Publish(ctx, sessionID, models.EventPersonaReset, events.PersonaMemoryResetPayload{SessionID: sessionID, PersonaID: personaID})
	return nil
}

// IterateWithFeedbackInput is the validated payload for spec ยง4.4.
type IterateWithFeedbackInput struct {
	Comments                string
	Tone                    string
	Length                  string
	Audience                string
	MaxAdditionalIterations int
}

// IterateWithFeedback reopens a completed session for additional
// iterations, per spec ยง4.4.
func (o *Orchestrator) IterateWithFeedback(ctx context.Context, sessionID uuid.UUID, userEmail string, in IterateWithFeedbackInput) error {
	if in.Comments == "" {
		return ErrEmptyComments
	}
	if in.MaxAdditionalIterations < 1 || in.MaxAdditionalIterations > 3 {
		return services.NewValidationError("maxAdditionalIterations", "must be between 1 and 3")
	}

	session, err := o.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.SessionStatusCompleted {
		return services.ErrNotReiterable
	}

	instruction := formatReiterationInstruction(in)
	if _, err := o.messages.Append(ctx, sessionID, models.MessageRoleUser, models.CreatorAuthor, session.CurrentIteration, instruction, "", ""); err != nil {
		return err
	}

	session.MaxIterations += in.MaxAdditionalIterations
	session.FeedbackVersion++
	session.Status = models.SessionStatusCreated
	session.StopReason = models.StopReasonNone
	if err := o.sessions.UpdateSession(ctx, session); err != nil {
		return err
	}
	return o.Start(ctx, sessionID, userEmail)
}

func formatReiterationInstruction(in IterateWithFeedbackInput) string {
	msg := fmt.Sprintf("The user has reviewed the completed draft and requests further revision.\n\nComments:\n%s", in.Comments)
	if in.Tone != "" {
		msg += fmt.Sprintf("\n\nDesired tone: %s", in.Tone)
	}
	if in.Length != "" {
		msg += fmt.Sprintf("\nDesired length: %s", in.Length)
	}
	if in.Audience != "" {
		msg += fmt.Sprintf("\nTarget audience: %s", in.Audience)
	}
	return msg
}

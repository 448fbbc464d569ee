package orchestrator

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/events"
	"github.com/codeready-toolchain/deliberate/pkg/models"
	"github.com/codeready-toolchain/deliberate/pkg/provider"
)

// runLoop is the goroutine body spawned by begin. It owns the
// session's row for as long as it runs: every iteration increments
// CurrentIteration, writes messages and a FeedbackRound, and persists
// the session before returning control to the caller (or the next
// iteration).
func (o *Orchestrator) runLoop(ctx context.Context, sessionID uuid.UUID, userEmail string, singleStep bool) {
	for {
		session, err := o.sessions.GetSession(ctx, sessionID)
		if err != nil {
			o.log.Error("orchestrator: failed to load session", "session_id", sessionID, "error", err)
			return
		}

		outcome := o.runIteration(ctx, session, userEmail)
		switch outcome.kind {
		case outcomeUserStopped:
			o.finish(context.WithoutCancel(ctx), session, models.SessionStatusStopped, models.StopReasonUserStopped, outcome.finalContent)
			return
		case outcomeError:
			o.finish(ctx, session, models.SessionStatusError, models.StopReasonError, outcome.finalContent)
			o.hub.Publish(ctx, sessionID, models.EventSessionError, events.SessionErrorPayload{SessionID: sessionID, Error: outcome.err.Error()})
			return
		case outcomeCompleted:
			o.finish(ctx, session, models.SessionStatusCompleted, outcome.stopReason, outcome.finalContent)
			return
		case outcomePaused:
			session.Status = models.SessionStatusPaused
			if err := o.sessions.UpdateSession(ctx, session); err != nil {
				o.log.Error("orchestrator: failed to persist paused session", "session_id", sessionID, "error", err)
			}
			o.hub.Publish(ctx, sessionID, models.EventSessionPaused, events.SessionLifecyclePayload{SessionID: sessionID})
			return
		case outcomeContinue:
			if singleStep {
				session.Status = models.SessionStatusPaused
				if err := o.sessions.UpdateSession(ctx, session); err != nil {
					o.log.Error("orchestrator: failed to persist paused session", "session_id", sessionID, "error", err)
				}
				o.hub.Publish(ctx, sessionID, models.EventSessionPaused, events.SessionLifecyclePayload{SessionID: sessionID})
				return
			}
			// loop again
		}
	}
}

func (o *Orchestrator) finish(ctx context.Context, session *models.Session, status models.SessionStatus, reason models.StopReason, finalContent string) {
	session.Status = status
	session.StopReason = reason
	session.FinalContent = finalContent
	if err := o.sessions.UpdateSession(ctx, session); err != nil {
		o.log.Error("orchestrator: failed to persist terminal session state", "session_id", session.ID, "error", err)
		return
	}
	switch status {
	case models.SessionStatusStopped:
		o.hub.Publish(ctx, session.ID, models.EventSessionStopped, events.SessionStoppedPayload{SessionID: session.ID, Reason: reason})
	case models.SessionStatusCompleted:
		o.hub.Publish(ctx, session.ID, models.EventSessionCompleted, events.SessionCompletedPayload{SessionID: session.ID, FinalContent: finalContent, StopReason: reason})
	}
}

type outcomeKind int

const (
	outcomeContinue outcomeKind = iota
	outcomePaused
	outcomeCompleted
	outcomeUserStopped
	outcomeError
)

type iterationOutcome struct {
	kind         outcomeKind
	stopReason   models.StopReason
	finalContent string
	err          error
}

// runIteration executes one full Creator+Reviewers cycle and decides
// what the loop should do next, per spec ยง4.3's stop-condition
// priority order.
func (o *Orchestrator) runIteration(ctx context.Context, session *models.Session, userEmail string) iterationOutcome {
	wasFinalIteration := session.NeedsFinalIteration
	session.CurrentIteration++
	if err := o.sessions.UpdateSession(ctx, session); err != nil {
		return iterationOutcome{kind: outcomeError, err: err}
	}
	o.hub.Publish(ctx, session.ID, models.EventIterationStarted, events.IterationPayload{SessionID: session.ID, Iteration: session.CurrentIteration})

	history, err := o.messages.ListBySession(ctx, session.ID)
	if err != nil {
		return iterationOutcome{kind: outcomeError, err: err}
	}

	creatorReq := provider.CompletionRequest{
		Model:            session.CreatorConfig.ModelName,
		Messages:         BuildCreatorMessages(session, history, o.cfg.ContextTurnsToSend),
		Temperature:      session.CreatorConfig.Temperature,
		MaxTokens:        session.CreatorConfig.MaxOutputTokens,
		TopP:             session.CreatorConfig.TopP,
		PresencePenalty:  session.CreatorConfig.PresencePenalty,
		FrequencyPenalty: session.CreatorConfig.FrequencyPenalty,
	}
	draft, err := streamPersonaTurn(ctx, o.hub, o.router, userEmail, session.ID, models.CreatorAuthor, session.CurrentIteration, creatorReq)
	if errors.Is(ctx.Err(), context.Canceled) {
		if draft != "" {
			if _, aerr := o.messages.Append(context.WithoutCancel(ctx), session.ID, models.MessageRoleAssistant, models.CreatorAuthor, session.CurrentIteration, draft, session.CreatorConfig.ModelName, ""); aerr != nil {
				o.log.Error("orchestrator: failed to persist partial creator turn", "session_id", session.ID, "error", aerr)
			}
			return iterationOutcome{kind: outcomeUserStopped, finalContent: draft}
		}
		return iterationOutcome{kind: outcomeUserStopped, finalContent: lastCreatorContent(history, draft)}
	}
	if err != nil {
		return iterationOutcome{kind: outcomeError, err: err}
	}
	if _, err := o.messages.Append(ctx, session.ID, models.MessageRoleAssistant, models.CreatorAuthor, session.CurrentIteration, draft, session.CreatorConfig.ModelName, ""); err != nil {
		return iterationOutcome{kind: outcomeError, err: err}
	}

	// Stop condition 2: final marker.
	if idx := strings.Index(draft, session.StopMarker); idx >= 0 {
		final := strings.TrimSpace(draft[idx+len(session.StopMarker):])
		return iterationOutcome{kind: outcomeCompleted, stopReason: models.StopReasonFinalMarker, finalContent: final}
	}

	summaries := make([]models.ReviewerSummary, 0, len(session.ReviewersConfig))
	for _, reviewer := range session.ReviewersConfig {
		reviewReq := provider.CompletionRequest{
			Model:            reviewer.ModelName,
			Messages:         BuildReviewerMessages(session, reviewer, history, draft, o.cfg.ContextTurnsToSend),
			Temperature:      reviewer.Temperature,
			MaxTokens:        reviewer.MaxOutputTokens,
			TopP:             reviewer.TopP,
			PresencePenalty:  reviewer.PresencePenalty,
			FrequencyPenalty: reviewer.FrequencyPenalty,
		}
		feedback, err := streamPersonaTurn(ctx, o.hub, o.router, userEmail, session.ID, reviewer.ID, session.CurrentIteration, reviewReq)
		if errors.Is(ctx.Err(), context.Canceled) {
			if feedback != "" {
				if _, aerr := o.messages.Append(context.WithoutCancel(ctx), session.ID, models.MessageRoleAssistant, reviewer.ID, session.CurrentIteration, feedback, reviewer.ModelName, reviewer.DisplayName); aerr != nil {
					o.log.Error("orchestrator: failed to persist partial reviewer turn", "session_id", session.ID, "error", aerr)
				}
			}
			return iterationOutcome{kind: outcomeUserStopped, finalContent: draft}
		}
		if err != nil {
			return iterationOutcome{kind: outcomeError, err: err}
		}
		if _, err := o.messages.Append(ctx, session.ID, models.MessageRoleAssistant, reviewer.ID, session.CurrentIteration, feedback, reviewer.ModelName, reviewer.DisplayName); err != nil {
			return iterationOutcome{kind: outcomeError, err: err}
		}
		summaries = append(summaries, models.ReviewerSummary{
			ReviewerID:   reviewer.ID,
			ReviewerName: reviewer.DisplayName,
			Feedback:     feedback,
			Approved:     IsApproved(feedback),
		})
	}

	if _, err := o.feedback.RecordRound(ctx, session.ID, session.CurrentIteration, draft, summaries); err != nil {
		return iterationOutcome{kind: outcomeError, err: err}
	}

	allApproved := len(summaries) > 0
	for _, sum := range summaries {
		if !sum.Approved {
			allApproved = false
			break
		}
	}

	// Stop condition 3: reviewer consensus with the one-more-iteration
	// rule. If this iteration was itself the extra "let the Creator
	// incorporate final feedback" pass, it always completes now,
	// regardless of whether the reviewers approved again.
	if wasFinalIteration {
		session.NeedsFinalIteration = false
		o.hub.Publish(ctx, session.ID, models.EventIterationDone, events.IterationPayload{SessionID: session.ID, Iteration: session.CurrentIteration})
		return iterationOutcome{kind: outcomeCompleted, stopReason: models.StopReasonReviewerApproved, finalContent: draft}
	}
	if session.StopOnReviewerApproved && allApproved {
		session.NeedsFinalIteration = true
		if err := o.sessions.UpdateSession(ctx, session); err != nil {
			return iterationOutcome{kind: outcomeError, err: err}
		}
	}

	o.hub.Publish(ctx, session.ID, models.EventIterationDone, events.IterationPayload{SessionID: session.ID, Iteration: session.CurrentIteration})

	// Stop condition 4: max iterations, unless an approval-triggered
	// final iteration is still owed.
	if session.CurrentIteration >= session.MaxIterations && !session.NeedsFinalIteration {
		return iterationOutcome{kind: outcomeCompleted, stopReason: models.StopReasonMaxIterations, finalContent: draft}
	}

	if session.RunMode == models.RunModeStep {
		return iterationOutcome{kind: outcomePaused}
	}
	return iterationOutcome{kind: outcomeContinue}
}

func lastCreatorContent(history []models.Message, fallback string) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Author == models.CreatorAuthor && history[i].Role == models.MessageRoleAssistant {
			return history[i].Content
		}
	}
	return fallback
}

// Package models holds the persistent domain types shared by the
// orchestrator, services, and API layers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a deliberation session.
type SessionStatus string

const (
	SessionStatusCreated   SessionStatus = "created"
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusPaused    SessionStatus = "paused"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusStopped   SessionStatus = "stopped"
	SessionStatusError     SessionStatus = "error"
)

// StopReason records why a session left the Running state.
type StopReason string

const (
	StopReasonNone                StopReason = ""
	StopReasonFinalMarker         StopReason = "final_marker_detected"
	StopReasonUserStopped         StopReason = "user_stopped"
	StopReasonMaxIterations       StopReason = "max_iterations_reached"
	StopReasonReviewerApproved    StopReason = "reviewer_approved"
	StopReasonError               StopReason = "error"
)

// RunMode controls whether the orchestrator drives the loop to
// completion unattended or pauses after every iteration.
type RunMode string

const (
	RunModeAuto RunMode = "auto"
	RunModeStep RunMode = "step"
)

// PersonaConfig is the sampling and prompt configuration for a single
// LLM-backed participant. It is snapshotted into a Session at creation
// time and never mutated afterward.
type PersonaConfig struct {
	RootPrompt        string  `json:"rootPrompt"`
	ModelName         string  `json:"modelName"`
	Temperature       float64 `json:"temperature"`
	MaxOutputTokens   int     `json:"maxOutputTokens"`
	TopP              float64 `json:"topP"`
	PresencePenalty   float64 `json:"presencePenalty"`
	FrequencyPenalty  float64 `json:"frequencyPenalty"`
}

// ReviewerConfig extends PersonaConfig with the identity fields needed
// to address a specific reviewer across iterations.
type ReviewerConfig struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	PersonaConfig
}

// Session is a persisted deliberation run: a topic, a Creator, an
// ordered roster of Reviewers, and the iteration state machine's
// current position.
type Session struct {
	ID                     uuid.UUID        `json:"id"`
	DisplayName            string           `json:"displayName"`
	Status                 SessionStatus    `json:"status"`
	StopReason             StopReason       `json:"stopReason"`
	MaxIterations          int              `json:"maxIterations"`
	CurrentIteration       int              `json:"currentIteration"`
	FeedbackVersion        int              `json:"feedbackVersion"`
	StopMarker             string           `json:"stopMarker"`
	StopOnReviewerApproved bool             `json:"stopOnReviewerApproved"`
	NeedsFinalIteration    bool             `json:"needsFinalIteration"`
	RunMode                RunMode          `json:"runMode"`
	Topic                  string           `json:"topic"`
	FinalContent           string           `json:"finalContent"`
	CreatorConfig          PersonaConfig    `json:"creatorConfig"`
	ReviewersConfig        []ReviewerConfig `json:"reviewersConfig"`
	CreatedAt              time.Time        `json:"createdAt"`
	UpdatedAt              time.Time        `json:"updatedAt"`
}

// IsTerminal reports whether the session has left the running loop
// for a state that requires an explicit re-iteration to leave.
func (s *Session) IsTerminal() bool {
	switch s.Status {
	case SessionStatusCompleted, SessionStatusStopped, SessionStatusError:
		return true
	default:
		return false
	}
}

// DefaultStopMarker is used when a CreateSessionRequest omits one.
const DefaultStopMarker = "FINAL:"

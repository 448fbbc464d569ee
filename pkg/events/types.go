// Package events implements the Event Hub (spec ยง4.6): an in-process
// publish/subscribe registry keyed by session id, fronted by a
// WebSocket connection manager.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/models"
)

// Event is one item published to a session's subscribers, in the
// order the orchestrator produced it.
type Event struct {
	SessionID uuid.UUID       `json:"sessionId"`
	Kind      models.EventKind `json:"kind"`
	CreatedAt time.Time       `json:"createdAt"`
	Payload   any             `json:"payload"`
}

// MarshalPayload serializes the Payload field alone, used when
// persisting to the deliberation_events catch-up log.
func (e Event) MarshalPayload() ([]byte, error) {
	return json.Marshal(e.Payload)
}

// Payload shapes for each EventKind; these are JSON-tagged so clients
// get a stable wire contract regardless of Go field names.

type SessionLifecyclePayload struct {
	SessionID uuid.UUID `json:"sessionId"`
}

type SessionStoppedPayload struct {
	SessionID uuid.UUID        `json:"sessionId"`
	Reason    models.StopReason `json:"reason"`
}

type SessionCompletedPayload struct {
	SessionID    uuid.UUID        `json:"sessionId"`
	FinalContent string           `json:"finalContent"`
	StopReason   models.StopReason `json:"stopReason"`
}

type SessionErrorPayload struct {
	SessionID uuid.UUID `json:"sessionId"`
	Error     string    `json:"error"`
}

type IterationPayload struct {
	SessionID uuid.UUID `json:"sessionId"`
	Iteration int       `json:"iteration"`
}

type MessageStartedPayload struct {
	SessionID uuid.UUID `json:"sessionId"`
	MessageID uuid.UUID `json:"messageId"`
	PersonaID string    `json:"personaId"`
	Iteration int       `json:"iteration"`
}

type MessageChunkPayload struct {
	SessionID uuid.UUID `json:"sessionId"`
	MessageID uuid.UUID `json:"messageId"`
	Delta     string    `json:"delta"`
}

type MessageCompletedPayload struct {
	SessionID uuid.UUID `json:"sessionId"`
	MessageID uuid.UUID `json:"messageId"`
	Content   string    `json:"content"`
}

type PersonaMemoryResetPayload struct {
	SessionID uuid.UUID `json:"sessionId"`
	PersonaID string    `json:"personaId"`
}

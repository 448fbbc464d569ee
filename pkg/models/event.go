package models

import (
	"time"

	"github.com/google/uuid"
)

// EventKind enumerates the Event Hub's wire vocabulary (spec ยง4.6).
type EventKind string

const (
	EventSessionStarted   EventKind = "session.started"
	EventSessionPaused    EventKind = "session.paused"
	EventSessionStopped   EventKind = "session.stopped"
	EventSessionCompleted EventKind = "session.completed"
	EventSessionError     EventKind = "session.error"
	EventIterationStarted EventKind = "iteration.started"
	EventIterationDone    EventKind = "iteration.completed"
	EventMessageStarted   EventKind = "message.started"
	EventMessageChunk     EventKind = "message.chunk"
	EventMessageCompleted EventKind = "message.completed"
	EventPersonaReset     EventKind = "persona.memory_reset"
)

// DeliberationEvent is the durable, ordered record backing the
// since-sequence catch-up query. It is an ambient addition: the hub
// itself is fire-and-forget in-process pub/sub, this table exists only
// to answer "what did I miss since sequence N".
type DeliberationEvent struct {
	SessionID      uuid.UUID `json:"sessionId"`
	SequenceNumber int64     `json:"sequenceNumber"`
	Kind           EventKind `json:"kind"`
	Payload        []byte    `json:"payload"`
	CreatedAt      time.Time `json:"createdAt"`
}

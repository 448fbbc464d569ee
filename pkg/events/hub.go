package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/models"
)

// EventLog persists the ambient catch-up record backing
// GET /api/v1/sessions/:id/events?since=N. The Hub calls it synchronously
// before fan-out so the log and the live broadcast never disagree on
// ordering.
type EventLog interface {
	Append(ctx context.Context, sessionID uuid.UUID, sequenceNumber int64, kind string, payload []byte) error
}

// subscriber is one live listener on a session's event stream. Sends
// are buffered; a subscriber that can't keep up is dropped rather than
// allowed to block the publisher, matching the teacher's
// snapshot-then-send-outside-the-lock broadcast discipline.
type subscriber struct {
	id uuid.UUID
	ch chan Event
}

// Hub is the process-wide in-process pub/sub registry. Unlike the
// teacher's ConnectionManager, it has no Postgres LISTEN/NOTIFY layer
// and no cross-node fan-out: multi-node scaling is explicitly out of
// scope, so one process's in-memory map is the entire bus.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[uuid.UUID]*subscriber // sessionID -> subscriberID -> subscriber
	sequences   map[uuid.UUID]*int64
	log         EventLog
	bufferSize  int
	logger      *slog.Logger
}

func NewHub(log EventLog, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscribers: make(map[uuid.UUID]map[uuid.UUID]*subscriber),
		sequences:   make(map[uuid.UUID]*int64),
		log:         log,
		bufferSize:  64,
		logger:      logger,
	}
}

// Subscribe registers a new listener for a session and returns a
// receive channel plus an unsubscribe func. The channel is closed on
// Unsubscribe; it is never closed by a slow-consumer drop (the
// subscriber is removed from the map instead, so a closed-channel send
// panic can't occur elsewhere).
func (h *Hub) Subscribe(sessionID uuid.UUID) (<-chan Event, func()) {
	sub := &subscriber{id: uuid.New(), ch: make(chan Event, h.bufferSize)}

	h.mu.Lock()
	if h.subscribers[sessionID] == nil {
		h.subscribers[sessionID] = make(map[uuid.UUID]*subscriber)
	}
	h.subscribers[sessionID][sub.id] = sub
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if subs, ok := h.subscribers[sessionID]; ok {
			if _, ok := subs[sub.id]; ok {
				delete(subs, sub.id)
				close(sub.ch)
			}
			if len(subs) == 0 {
				delete(h.subscribers, sessionID)
			}
		}
		h.mu.Unlock()
	}
	return sub.ch, unsubscribe
}

// Publish delivers an event to every current subscriber of a session,
// after appending it to the durable catch-up log under a monotonic
// per-session sequence number. Snapshot subscriber pointers under the
// lock, then send outside it, so a slow subscriber's channel send
// can't hold the registry lock and stall every other session.
func (h *Hub) Publish(ctx context.Context, sessionID uuid.UUID, kind models.EventKind, payload any) {
	seq := h.nextSequence(sessionID)
	ev := Event{SessionID: sessionID, Kind: kind, Payload: payload}

	if h.log != nil {
		if raw, err := ev.MarshalPayload(); err == nil {
			if err := h.log.Append(ctx, sessionID, seq, string(ev.Kind), raw); err != nil {
				h.logger.Warn("failed to append catch-up event", "session_id", sessionID, "error", err)
			}
		}
	}

	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subscribers[sessionID]))
	for _, s := range h.subscribers[sessionID] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		select {
		case s.ch <- ev:
		default:
			h.logger.Warn("subscriber backlog full, dropping", "session_id", sessionID, "subscriber_id", s.id)
			h.mu.Lock()
			if subs, ok := h.subscribers[sessionID]; ok {
				delete(subs, s.id)
				if len(subs) == 0 {
					delete(h.subscribers, sessionID)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) nextSequence(sessionID uuid.UUID) int64 {
	h.mu.Lock()
	counter, ok := h.sequences[sessionID]
	if !ok {
		var zero int64
		counter = &zero
		h.sequences[sessionID] = counter
	}
	h.mu.Unlock()
	return atomic.AddInt64(counter, 1)
}

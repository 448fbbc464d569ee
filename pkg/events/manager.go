package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
)

// ClientMessage is the control-plane frame a client sends to join or
// leave a session's event group.
type ClientMessage struct {
	Action    string `json:"action"` // "subscribe" | "unsubscribe" | "ping"
	SessionID string `json:"sessionId"`
}

// ConnectionManager upgrades HTTP connections to WebSocket and relays
// Hub events to whichever sessions each connection has joined.
// Grounded on the teacher's pkg/events.ConnectionManager, with the
// Postgres LISTEN/NOTIFY and catch-up replay machinery removed: this
// is a single-node in-process bus, and missed events are not
// automatically replayed (spec ยง6 design note).
type ConnectionManager struct {
	hub          *Hub
	writeTimeout time.Duration
	logger       *slog.Logger
}

func NewConnectionManager(hub *Hub, writeTimeout time.Duration, logger *slog.Logger) *ConnectionManager {
	if logger == nil {
		logger = slog.Default()
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &ConnectionManager{hub: hub, writeTimeout: writeTimeout, logger: logger}
}

// HandleConnection drives one client's WebSocket lifetime: a read
// loop dispatching subscribe/unsubscribe control messages, and one
// forwarding goroutine per joined session relaying Hub events onto the
// socket.
func (m *ConnectionManager) HandleConnection(parentCtx context.Context, conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()
	defer conn.Close(websocket.StatusNormalClosure, "connection closed")

	var mu sync.Mutex
	joined := map[uuid.UUID]func(){}
	defer func() {
		mu.Lock()
		for _, unsub := range joined {
			unsub()
		}
		mu.Unlock()
	}()

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}

		switch msg.Action {
		case "subscribe":
			sessionID, err := uuid.Parse(msg.SessionID)
			if err != nil {
				continue
			}
			mu.Lock()
			if _, already := joined[sessionID]; !already {
				events, unsubscribe := m.hub.Subscribe(sessionID)
				joined[sessionID] = unsubscribe
				go m.forward(ctx, conn, events)
			}
			mu.Unlock()
		case "unsubscribe":
			sessionID, err := uuid.Parse(msg.SessionID)
			if err != nil {
				continue
			}
			mu.Lock()
			if unsubscribe, ok := joined[sessionID]; ok {
				unsubscribe()
				delete(joined, sessionID)
			}
			mu.Unlock()
		case "ping":
			// no-op keepalive
		}
	}
}

func (m *ConnectionManager) forward(ctx context.Context, conn *websocket.Conn, events <-chan Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, m.writeTimeout)
			err := wsjson.Write(writeCtx, conn, ev)
			cancel()
			if err != nil {
				m.logger.Warn("dropping slow websocket subscriber", "session_id", ev.SessionID, "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

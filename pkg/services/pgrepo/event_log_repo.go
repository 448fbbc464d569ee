package pgrepo

import (
	"context"
	stdsql "database/sql"

	"github.com/google/uuid"
)

// EventLogRepository implements events.EventLog, persisting the
// ambient catch-up record for GET /api/v1/sessions/:id/events?since=N.
type EventLogRepository struct {
	db *stdsql.DB
}

func NewEventLogRepository(db *stdsql.DB) *EventLogRepository {
	return &EventLogRepository{db: db}
}

func (r *EventLogRepository) Append(ctx context.Context, sessionID uuid.UUID, sequenceNumber int64, kind string, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO deliberation_events (session_id, sequence_number, kind, payload)
		VALUES ($1,$2,$3,$4)`, sessionID, sequenceNumber, kind, payload)
	return err
}

type StoredEvent struct {
	SequenceNumber int64
	Kind           string
	Payload        []byte
}

// ListSince backs the catch-up query: every event for a session with
// sequence_number > since, in order.
func (r *EventLogRepository) ListSince(ctx context.Context, sessionID uuid.UUID, since int64) ([]StoredEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sequence_number, kind, payload FROM deliberation_events
		WHERE session_id = $1 AND sequence_number > $2 ORDER BY sequence_number ASC`, sessionID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var e StoredEvent
		if err := rows.Scan(&e.SequenceNumber, &e.Kind, &e.Payload); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

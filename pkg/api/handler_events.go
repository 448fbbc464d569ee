package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type catchUpEvent struct {
	SequenceNumber int64           `json:"sequenceNumber"`
	Kind           string          `json:"kind"`
	Payload        json.RawMessage `json:"payload"`
}

// eventsSinceHandler backs GET /api/v1/sessions/:id/events?since=N, the
// ambient catch-up query that lets a client that missed live
// WebSocket traffic (a reconnect, a late subscribe) fetch everything
// it missed from the durable deliberation_events log (spec ยง4.6).
func (s *Server) eventsSinceHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	since := int64(0)
	if raw := c.Query("since"); raw != "" {
		since, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "since must be an integer"})
			return
		}
	}

	rows, err := s.eventLog.ListSince(c.Request.Context(), id, since)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	out := make([]catchUpEvent, len(rows))
	for i, r := range rows {
		out[i] = catchUpEvent{SequenceNumber: r.SequenceNumber, Kind: r.Kind, Payload: r.Payload}
	}
	c.JSON(http.StatusOK, out)
}

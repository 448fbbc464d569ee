package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/credstore"
	"github.com/codeready-toolchain/deliberate/pkg/models"
	"github.com/codeready-toolchain/deliberate/pkg/services"
)

func (s *Server) createSessionHandler(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	reviewers := make([]models.ReviewerConfig, len(req.Reviewers))
	for i, r := range req.Reviewers {
		reviewers[i] = r.toModel()
	}

	session, err := s.sessions.CreateSession(c.Request.Context(), services.CreateSessionRequest{
		DisplayName:            req.DisplayName,
		Topic:                  req.Topic,
		MaxIterations:          req.MaxIterations,
		StopMarker:             req.StopMarker,
		StopOnReviewerApproved: req.StopOnReviewerApproved,
		RunMode:                models.RunMode(req.RunMode),
		Creator:                req.Creator.toModel(),
		Reviewers:              reviewers,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (s *Server) getSessionHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	session, err := s.sessions.GetSession(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) listSessionsHandler(c *gin.Context) {
	sessions, err := s.sessions.ListSessions(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// deleteSessionHandler cancels the session's orchestrator goroutine, if
// one is running, before cascade-deleting its rows, per spec ยง6:
// "cancel if running, then cascade-delete".
func (s *Server) deleteSessionHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	if err := s.orchestrator.Stop(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	if err := s.sessions.DeleteSession(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listMessagesHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	msgs, err := s.messages.ListBySession(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (s *Server) listFeedbackRoundsHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	rounds, err := s.feedback.ListBySession(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rounds)
}

func (s *Server) submitFeedbackHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.feedback.AttachUserFeedback(c.Request.Context(), id, req.Iteration, req.Feedback); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// startSessionHandler checks that every persona referenced by the
// session has a resolvable API key before handing off to the
// orchestrator, so a missing key surfaces as an immediate 400 instead
// of an asynchronous session.error event.
func (s *Server) startSessionHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	session, err := s.sessions.GetSession(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	email := userEmail(c)
	if err := credstore.MissingKeysFor(c.Request.Context(), s.credentials, email, services.ModelNamesFor(session)); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.orchestrator.Start(c.Request.Context(), id, email); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (s *Server) stepSessionHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	if err := s.orchestrator.Step(c.Request.Context(), id, userEmail(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (s *Server) stopSessionHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	if err := s.orchestrator.Stop(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (s *Server) resetPersonaMemoryHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	personaID := c.Param("personaId")
	if err := s.orchestrator.ResetMemory(c.Request.Context(), id, personaID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) iterateWithFeedbackHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return
	}
	var req iterateWithFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.MaxAdditionalIterations == 0 {
		req.MaxAdditionalIterations = 1
	}
	email := userEmail(c)
	if err := s.orchestrator.IterateWithFeedback(c.Request.Context(), id, email, orchestratorIterateInput(req)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

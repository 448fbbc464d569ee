package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codeready-toolchain/deliberate/pkg/credstore"
	"github.com/codeready-toolchain/deliberate/pkg/models"
)

func (s *Server) listModelsHandler(c *gin.Context) {
	rows, err := s.credentials.List(c.Request.Context(), userEmail(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) createModelHandler(c *gin.Context) {
	var req createModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	row, err := s.credentials.Add(c.Request.Context(), credstore.AddInput{
		UserEmail:   userEmail(c),
		ModelName:   req.ModelName,
		DisplayName: req.DisplayName,
		Endpoint:    req.Endpoint,
		Provider:    models.Provider(req.Provider),
		APIKey:      req.APIKey,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (s *Server) updateModelHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid model id"})
		return
	}
	var req updateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	row, err := s.credentials.Update(c.Request.Context(), credstore.UpdateInput{
		ID:          id,
		UserEmail:   userEmail(c),
		ModelName:   req.ModelName,
		DisplayName: req.DisplayName,
		Endpoint:    req.Endpoint,
		Provider:    models.Provider(req.Provider),
		APIKeyPtr:   req.APIKey,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (s *Server) deleteModelHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid model id"})
		return
	}
	if err := s.credentials.Delete(c.Request.Context(), userEmail(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

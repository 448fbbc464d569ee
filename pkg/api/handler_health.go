package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/deliberate/pkg/database"
)

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbHealth, err := database.Health(ctx, s.db.DB())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Database: dbHealth})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:         "healthy",
		Database:       dbHealth,
		ActiveSessions: s.orchestrator.ActiveSessionCount(),
	})
}

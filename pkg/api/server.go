// Package api provides the HTTP request surface for the deliberation
// service (spec ยง6), built on gin the way the rest of this module's
// go.mod commits to rather than the teacher's in-flight echo
// migration.
package api

import (
	"context"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/deliberate/pkg/credstore"
	"github.com/codeready-toolchain/deliberate/pkg/database"
	"github.com/codeready-toolchain/deliberate/pkg/events"
	"github.com/codeready-toolchain/deliberate/pkg/orchestrator"
	"github.com/codeready-toolchain/deliberate/pkg/services"
	"github.com/codeready-toolchain/deliberate/pkg/services/pgrepo"
)

// Server is the HTTP API server.
type Server struct {
	engine       *gin.Engine
	httpServer   *http.Server
	db           *database.Client
	sessions     *services.SessionService
	messages     *services.MessageService
	feedback     *services.FeedbackService
	credentials  *credstore.Store
	orchestrator *orchestrator.Orchestrator
	connManager  *events.ConnectionManager
	eventLog     *pgrepo.EventLogRepository
}

func NewServer(
	db *database.Client,
	sessions *services.SessionService,
	messages *services.MessageService,
	feedback *services.FeedbackService,
	credentials *credstore.Store,
	orch *orchestrator.Orchestrator,
	connManager *events.ConnectionManager,
	eventLog *pgrepo.EventLogRepository,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.MaxMultipartMemory = 2 << 20

	s := &Server{
		engine:       engine,
		db:           db,
		sessions:     sessions,
		messages:     messages,
		feedback:     feedback,
		credentials:  credentials,
		orchestrator: orch,
		connManager:  connManager,
		eventLog:     eventLog,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.healthHandler)

	v1 := s.engine.Group("/api/v1")
	v1.Use(requireUserEmail())

	v1.POST("/sessions", s.createSessionHandler)
	v1.GET("/sessions", s.listSessionsHandler)
	v1.GET("/sessions/:id", s.getSessionHandler)
	v1.DELETE("/sessions/:id", s.deleteSessionHandler)
	v1.GET("/sessions/:id/messages", s.listMessagesHandler)
	v1.GET("/sessions/:id/feedback-rounds", s.listFeedbackRoundsHandler)
	v1.POST("/sessions/:id/feedback", s.submitFeedbackHandler)
	v1.POST("/sessions/:id/start", s.startSessionHandler)
	v1.POST("/sessions/:id/step", s.stepSessionHandler)
	v1.POST("/sessions/:id/stop", s.stopSessionHandler)
	v1.POST("/sessions/:id/reset-memory/:personaId", s.resetPersonaMemoryHandler)
	v1.POST("/sessions/:id/iterate-with-feedback", s.iterateWithFeedbackHandler)
	v1.GET("/sessions/:id/events", s.eventsSinceHandler)

	v1.GET("/models", s.listModelsHandler)
	v1.POST("/models", s.createModelHandler)
	v1.PUT("/models/:id", s.updateModelHandler)
	v1.DELETE("/models/:id", s.deleteModelHandler)

	v1.GET("/ws", s.wsHandler)
}

// Start starts the HTTP server on addr (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.engine}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts on a pre-created listener, used by tests
// that bind a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.engine}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

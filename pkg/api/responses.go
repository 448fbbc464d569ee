package api

import "github.com/codeready-toolchain/deliberate/pkg/database"

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status         string                `json:"status"`
	Database       *database.HealthStatus `json:"database,omitempty"`
	ActiveSessions int                   `json:"activeSessions"`
}

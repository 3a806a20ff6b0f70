package services

import (
	"context"
	"time"
)

// Version is the application version, overridable at build time.
var Version = "dev"

// HealthService reports process liveness information.
type HealthService struct {
	startTime time.Time
}

// NewHealthService creates a new health service
func NewHealthService() *HealthService {
	return &HealthService{startTime: time.Now()}
}

// HealthCheck returns the liveness payload for GET /api/health
func (s *HealthService) HealthCheck(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"status":    "healthy",
		"version":   Version,
		"uptime":    time.Since(s.startTime).String(),
		"timestamp": time.Now().Format(time.RFC3339),
	}
}

package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/signalworks/flux-matrix/internal/service"
	"go.uber.org/zap"
)

// Checker serves liveness and readiness endpoints with engine stats.
type Checker struct {
	nodeID  string
	matrix  *service.MatrixService
	logger  *zap.Logger
	started time.Time
}

// NewChecker creates a health checker.
func NewChecker(nodeID string, matrixSvc *service.MatrixService, logger *zap.Logger) *Checker {
	return &Checker{
		nodeID:  nodeID,
		matrix:  matrixSvc,
		logger:  logger,
		started: time.Now(),
	}
}

// LivenessHandler handles GET /health.
func (c *Checker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"node_id": c.nodeID,
		"uptime":  time.Since(c.started).String(),
	})
}

// ReadinessHandler handles GET /ready. The engine has no startup
// dependencies, so readiness reports engine stats alongside status.
func (c *Checker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	stats := c.matrix.Stats()
	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ready",
		"node_id":         c.nodeID,
		"total_nodes":     stats.TotalNodes,
		"current_version": stats.CurrentVersion,
		"snapshot_count":  stats.SnapshotCount,
	})
}

func (c *Checker) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

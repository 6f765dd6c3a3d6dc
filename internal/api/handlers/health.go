package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hosteldesk/backend/internal/health"
	"github.com/sirupsen/logrus"
)

type HealthHandler struct {
	checker HealthService
	ttl     time.Duration
	logger  *logrus.Logger
}

// NewHealthHandler serves cached snapshots; a miss triggers a live check
// cached for ttl.
func NewHealthHandler(checker HealthService, ttl time.Duration, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{checker: checker, ttl: ttl, logger: logger}
}

func (h *HealthHandler) Health(c *gin.Context) {
	overall, err := h.checker.CheckCached(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Debug("Health cache miss, probing services")
		live := h.checker.Snapshot(c.Request.Context(), h.ttl)
		overall = &live
	}

	code := http.StatusOK
	if overall.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, overall)
}

// Live reports process liveness without touching dependencies.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hosteldesk/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

type DashboardHandler struct {
	dashboard DashboardService
	logger    *logrus.Logger
}

func NewDashboardHandler(dashboard DashboardService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboard.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", stats)
}

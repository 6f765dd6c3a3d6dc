package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hosteldesk/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

const maxDailyDays = 366

type AnalyticsHandler struct {
	analytics AnalyticsService
	logger    *logrus.Logger
}

func NewAnalyticsHandler(analytics AnalyticsService, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// History returns the newest questions asked by :userId.
func (h *AnalyticsHandler) History(c *gin.Context) {
	userID, ok := h.scopedUser(c)
	if !ok {
		return
	}

	history, err := h.analytics.History(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", history)
}

func (h *AnalyticsHandler) Global(c *gin.Context) {
	analytics, err := h.analytics.GlobalAnalytics(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", analytics)
}

func (h *AnalyticsHandler) User(c *gin.Context) {
	userID, ok := h.scopedUser(c)
	if !ok {
		return
	}

	analytics, err := h.analytics.UserAnalytics(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", analytics)
}

func (h *AnalyticsHandler) GlobalDaily(c *gin.Context) {
	days, ok := parseDays(c)
	if !ok {
		return
	}
	h.daily(c, nil, days)
}

func (h *AnalyticsHandler) UserDaily(c *gin.Context) {
	userID, ok := h.scopedUser(c)
	if !ok {
		return
	}
	days, ok := parseDays(c)
	if !ok {
		return
	}
	h.daily(c, &userID, days)
}

func (h *AnalyticsHandler) daily(c *gin.Context, userID *uint, days int) {
	counts, err := h.analytics.DailyCounts(userID, days)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", counts)
}

func (h *AnalyticsHandler) scopedUser(c *gin.Context) (uint, bool) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return 0, false
	}
	userID, ok := parseUintParam(c, "userId")
	if !ok {
		return 0, false
	}
	return userID, ownerOrAdmin(c, caller, userID)
}

// parseDays reads ?days=; absent or non-positive values fall back to the
// service default.
func parseDays(c *gin.Context) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return 0, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days > maxDailyDays {
		utils.ErrorResponse(c, http.StatusBadRequest, "days must be an integer up to 366", nil)
		return 0, false
	}
	return days, true
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hosteldesk/backend/internal/middleware"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/hosteldesk/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

type AIHandler struct {
	ai     AIComplaintService
	logger *logrus.Logger
}

func NewAIHandler(ai AIComplaintService, logger *logrus.Logger) *AIHandler {
	return &AIHandler{ai: ai, logger: logger}
}

// GenerateComplaint files a complaint for the caller from free text.
func (h *AIHandler) GenerateComplaint(c *gin.Context) {
	if _, ok := callerOrAbort(c); !ok {
		return
	}

	var req models.AIComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Description is required", nil)
		return
	}

	resp, err := h.ai.GenerateComplaint(c.Request.Context(), req.Description, c.GetString(middleware.UsernameKey))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, resp.Message, resp)
}

// GenerateScoredComplaint is the integer priority variant.
func (h *AIHandler) GenerateScoredComplaint(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	var req models.AIComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Description is required", nil)
		return
	}

	resp, err := h.ai.GenerateScoredComplaint(c.Request.Context(), req.Description, caller.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, resp.Message, resp)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/hosteldesk/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

type QAHandler struct {
	qa     QAService
	logger *logrus.Logger
}

func NewQAHandler(qa QAService, logger *logrus.Logger) *QAHandler {
	return &QAHandler{qa: qa, logger: logger}
}

// AskClient answers over the complaints of the caller. Admins may name
// another user with userId.
func (h *QAHandler) AskClient(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	var req models.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Question is required", nil)
		return
	}

	userID := caller.UserID
	if req.UserID != nil {
		if !ownerOrAdmin(c, caller, *req.UserID) {
			return
		}
		userID = *req.UserID
	}

	answer, err := h.qa.AnswerQuestion(c.Request.Context(), req.Question, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", models.AnswerResponse{Answer: answer})
}

// AskAdmin answers over every complaint and records history for the caller.
func (h *QAHandler) AskAdmin(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	var req models.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Question is required", nil)
		return
	}

	adminID := req.UserID
	if adminID == nil {
		adminID = &caller.UserID
	}

	answer, err := h.qa.AnswerAdminQuestion(c.Request.Context(), req.Question, adminID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", models.AnswerResponse{Answer: answer})
}

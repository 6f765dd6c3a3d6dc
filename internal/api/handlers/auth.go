package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/hosteldesk/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	auth   AuthService
	logger *logrus.Logger
}

func NewAuthHandler(auth AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Signup registers a client account.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	resp, err := h.auth.Signup(&req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "User registered successfully", resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	resp, err := h.auth.Login(&req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Login successful", resp)
}

func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}

	resp, err := h.auth.Me(caller.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

// Users lists every account.
func (h *AuthHandler) Users(c *gin.Context) {
	h.listUsers(c, "")
}

// Clients lists CLIENT accounts only.
func (h *AuthHandler) Clients(c *gin.Context) {
	h.listUsers(c, models.RoleClient)
}

func (h *AuthHandler) listUsers(c *gin.Context, role models.Role) {
	users, err := h.auth.ListUsers(role)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", users)
}

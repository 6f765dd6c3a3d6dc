package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hosteldesk/backend/internal/health"
	"github.com/hosteldesk/backend/internal/middleware"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/hosteldesk/backend/internal/services"
	"github.com/hosteldesk/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

// The interfaces below are satisfied by the concrete types in services and health.

type AuthService interface {
	Signup(req *models.SignupRequest) (*models.AuthResponse, error)
	Login(req *models.LoginRequest) (*models.AuthResponse, error)
	Me(userID uint) (*models.AuthResponse, error)
	ListUsers(role models.Role) ([]models.UserSummary, error)
}

type ComplaintService interface {
	CreateComplaint(ctx context.Context, caller services.Caller, req *models.CreateComplaintRequest, image *services.Image) (*models.ComplaintDTO, error)
	ListComplaints(caller services.Caller) ([]models.ComplaintDTO, error)
	GetComplaint(caller services.Caller, id uint) (*models.ComplaintDTO, error)
	UpdateStatus(ctx context.Context, id uint, status models.Status) (*models.ComplaintDTO, error)
	DeleteComplaint(ctx context.Context, id uint) error
	SearchComplaints(caller services.Caller, filter models.ComplaintFilter) ([]models.ComplaintDTO, error)
	ExportCSV(w io.Writer) error
}

type AIComplaintService interface {
	GenerateComplaint(ctx context.Context, description, username string) (*models.GeneratedComplaint, error)
	GenerateScoredComplaint(ctx context.Context, description string, userID uint) (*models.ScoredComplaintResponse, error)
}

type QAService interface {
	AnswerQuestion(ctx context.Context, question string, userID uint) (string, error)
	AnswerAdminQuestion(ctx context.Context, question string, adminID *uint) (string, error)
}

type AnalyticsService interface {
	History(userID uint) ([]models.QaHistoryDTO, error)
	GlobalAnalytics(ctx context.Context) (*models.AnalyticsDTO, error)
	UserAnalytics(ctx context.Context, userID uint) (*models.AnalyticsDTO, error)
	DailyCounts(userID *uint, days int) ([]models.DailyCountDTO, error)
}

type DashboardService interface {
	GetStats(ctx context.Context) (*models.DashboardStats, error)
}

type HealthService interface {
	CheckCached(ctx context.Context) (*health.OverallHealth, error)
	Snapshot(ctx context.Context, ttl time.Duration) health.OverallHealth
}

// generationFailureMessage is the only text clients see for upstream AI failures.
const generationFailureMessage = "Gemini API Failure"

// respondError maps service errors onto status codes.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrForbidden):
		utils.ErrorResponse(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, services.ErrUnauthorized):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, services.ErrConflict):
		utils.ErrorResponse(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, services.ErrGenerationFailed):
		utils.ErrorResponse(c, http.StatusBadGateway, generationFailureMessage, nil)
	default:
		logger.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// callerOrAbort returns the authenticated caller, answering 401 when absent.
func callerOrAbort(c *gin.Context) (services.Caller, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		utils.AbortWithError(c, http.StatusUnauthorized, "Authentication required")
	}
	return caller, ok
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}

// ownerOrAdmin lets clients read only their own records.
func ownerOrAdmin(c *gin.Context, caller services.Caller, userID uint) bool {
	if caller.IsAdmin() || caller.UserID == userID {
		return true
	}
	utils.ErrorResponse(c, http.StatusForbidden, "You can only access your own records", nil)
	return false
}

package handlers

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hosteldesk/backend/internal/health"
	"github.com/hosteldesk/backend/internal/middleware"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/hosteldesk/backend/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// as stands in for middleware.Auth with a fixed identity.
func as(userID uint, username string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.UsernameKey, username)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}

type mockComplaints struct{ mock.Mock }

func (m *mockComplaints) CreateComplaint(ctx context.Context, caller services.Caller, req *models.CreateComplaintRequest, image *services.Image) (*models.ComplaintDTO, error) {
	args := m.Called(caller, req, image)
	dto, _ := args.Get(0).(*models.ComplaintDTO)
	return dto, args.Error(1)
}

func (m *mockComplaints) ListComplaints(caller services.Caller) ([]models.ComplaintDTO, error) {
	args := m.Called(caller)
	dtos, _ := args.Get(0).([]models.ComplaintDTO)
	return dtos, args.Error(1)
}

func (m *mockComplaints) GetComplaint(caller services.Caller, id uint) (*models.ComplaintDTO, error) {
	args := m.Called(caller, id)
	dto, _ := args.Get(0).(*models.ComplaintDTO)
	return dto, args.Error(1)
}

func (m *mockComplaints) UpdateStatus(ctx context.Context, id uint, status models.Status) (*models.ComplaintDTO, error) {
	args := m.Called(id, status)
	dto, _ := args.Get(0).(*models.ComplaintDTO)
	return dto, args.Error(1)
}

func (m *mockComplaints) DeleteComplaint(ctx context.Context, id uint) error {
	return m.Called(id).Error(0)
}

func (m *mockComplaints) SearchComplaints(caller services.Caller, filter models.ComplaintFilter) ([]models.ComplaintDTO, error) {
	args := m.Called(caller, filter)
	dtos, _ := args.Get(0).([]models.ComplaintDTO)
	return dtos, args.Error(1)
}

func (m *mockComplaints) ExportCSV(w io.Writer) error {
	args := m.Called()
	if body := args.String(0); body != "" {
		_, _ = io.WriteString(w, body)
	}
	return args.Error(1)
}

type mockAI struct{ mock.Mock }

func (m *mockAI) GenerateComplaint(ctx context.Context, description, username string) (*models.GeneratedComplaint, error) {
	args := m.Called(description, username)
	resp, _ := args.Get(0).(*models.GeneratedComplaint)
	return resp, args.Error(1)
}

func (m *mockAI) GenerateScoredComplaint(ctx context.Context, description string, userID uint) (*models.ScoredComplaintResponse, error) {
	args := m.Called(description, userID)
	resp, _ := args.Get(0).(*models.ScoredComplaintResponse)
	return resp, args.Error(1)
}

type mockQA struct{ mock.Mock }

func (m *mockQA) AnswerQuestion(ctx context.Context, question string, userID uint) (string, error) {
	args := m.Called(question, userID)
	return args.String(0), args.Error(1)
}

func (m *mockQA) AnswerAdminQuestion(ctx context.Context, question string, adminID *uint) (string, error) {
	args := m.Called(question, adminID)
	return args.String(0), args.Error(1)
}

type mockAnalytics struct{ mock.Mock }

func (m *mockAnalytics) History(userID uint) ([]models.QaHistoryDTO, error) {
	args := m.Called(userID)
	h, _ := args.Get(0).([]models.QaHistoryDTO)
	return h, args.Error(1)
}

func (m *mockAnalytics) GlobalAnalytics(ctx context.Context) (*models.AnalyticsDTO, error) {
	args := m.Called()
	a, _ := args.Get(0).(*models.AnalyticsDTO)
	return a, args.Error(1)
}

func (m *mockAnalytics) UserAnalytics(ctx context.Context, userID uint) (*models.AnalyticsDTO, error) {
	args := m.Called(userID)
	a, _ := args.Get(0).(*models.AnalyticsDTO)
	return a, args.Error(1)
}

func (m *mockAnalytics) DailyCounts(userID *uint, days int) ([]models.DailyCountDTO, error) {
	args := m.Called(userID, days)
	d, _ := args.Get(0).([]models.DailyCountDTO)
	return d, args.Error(1)
}

type stubHealth struct {
	cached   *health.OverallHealth
	live     health.OverallHealth
	snapshot int
}

func (s *stubHealth) CheckCached(ctx context.Context) (*health.OverallHealth, error) {
	if s.cached == nil {
		return nil, context.DeadlineExceeded
	}
	return s.cached, nil
}

func (s *stubHealth) Snapshot(ctx context.Context, ttl time.Duration) health.OverallHealth {
	s.snapshot++
	return s.live
}

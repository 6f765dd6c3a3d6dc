package services

import (
	"context"
	"io"
	"time"

	"github.com/hosteldesk/backend/internal/extraction"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(user *models.User) error {
	args := m.Called(user)
	if user.ID == 0 {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) ExistsByUsername(username string) (bool, error) {
	args := m.Called(username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) GetAll() ([]models.User, error) {
	args := m.Called()
	u, _ := args.Get(0).([]models.User)
	return u, args.Error(1)
}

type mockComplaintRepo struct{ mock.Mock }

func (m *mockComplaintRepo) Create(c *models.Complaint) error {
	args := m.Called(c)
	if args.Error(0) == nil && c.ID == 0 {
		c.ID = 42
	}
	return args.Error(0)
}

func (m *mockComplaintRepo) GetByID(id uint) (*models.Complaint, error) {
	args := m.Called(id)
	c, _ := args.Get(0).(*models.Complaint)
	return c, args.Error(1)
}

func (m *mockComplaintRepo) GetByRaiser(userID uint) ([]models.Complaint, error) {
	args := m.Called(userID)
	c, _ := args.Get(0).([]models.Complaint)
	return c, args.Error(1)
}

func (m *mockComplaintRepo) GetAll() ([]models.Complaint, error) {
	args := m.Called()
	c, _ := args.Get(0).([]models.Complaint)
	return c, args.Error(1)
}

func (m *mockComplaintRepo) UpdateStatus(id uint, status models.Status) error {
	return m.Called(id, status).Error(0)
}

func (m *mockComplaintRepo) Delete(id uint) error {
	return m.Called(id).Error(0)
}

func (m *mockComplaintRepo) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockComplaintRepo) CountByStatus(status models.Status) (int64, error) {
	args := m.Called(status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockComplaintRepo) CountByCategory() (map[models.Category]int64, error) {
	args := m.Called()
	c, _ := args.Get(0).(map[models.Category]int64)
	return c, args.Error(1)
}

func (m *mockComplaintRepo) Search(raisedBy *uint, filter models.ComplaintFilter) ([]models.Complaint, error) {
	args := m.Called(raisedBy, filter)
	c, _ := args.Get(0).([]models.Complaint)
	return c, args.Error(1)
}

type mockHistoryRepo struct{ mock.Mock }

func (m *mockHistoryRepo) Create(h *models.QaHistory) error {
	return m.Called(h).Error(0)
}

func (m *mockHistoryRepo) GetRecentByUser(userID uint, limit int) ([]models.QaHistory, error) {
	args := m.Called(userID, limit)
	h, _ := args.Get(0).([]models.QaHistory)
	return h, args.Error(1)
}

func (m *mockHistoryRepo) GetByUser(userID uint) ([]models.QaHistory, error) {
	args := m.Called(userID)
	h, _ := args.Get(0).([]models.QaHistory)
	return h, args.Error(1)
}

func (m *mockHistoryRepo) GetAll() ([]models.QaHistory, error) {
	args := m.Called()
	h, _ := args.Get(0).([]models.QaHistory)
	return h, args.Error(1)
}

func (m *mockHistoryRepo) GetSince(since time.Time, userID *uint) ([]models.QaHistory, error) {
	args := m.Called(since, userID)
	h, _ := args.Get(0).([]models.QaHistory)
	return h, args.Error(1)
}

type mockExtractor struct{ mock.Mock }

func (m *mockExtractor) Extract(ctx context.Context, description string) (*extraction.StructuredFields, error) {
	args := m.Called(ctx, description)
	f, _ := args.Get(0).(*extraction.StructuredFields)
	return f, args.Error(1)
}

func (m *mockExtractor) ExtractScored(ctx context.Context, description string) (*extraction.ScoredFields, error) {
	args := m.Called(ctx, description)
	f, _ := args.Get(0).(*extraction.ScoredFields)
	return f, args.Error(1)
}

type mockEmbedder struct{ mock.Mock }

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	v, _ := args.Get(0).([]float32)
	return v, args.Error(1)
}

type mockIndex struct{ mock.Mock }

func (m *mockIndex) EnsureCollection(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockIndex) Upsert(ctx context.Context, id string, vector []float32, category, document string) bool {
	return m.Called(ctx, id, vector, category, document).Bool(0)
}

func (m *mockIndex) HasDuplicate(ctx context.Context, vector []float32) bool {
	return m.Called(ctx, vector).Bool(0)
}

func (m *mockIndex) Delete(ctx context.Context, id string) {
	m.Called(ctx, id)
}

type mockGenerator struct{ mock.Mock }

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type mockStatsCache struct{ mock.Mock }

func (m *mockStatsCache) CacheDashboardStats(ctx context.Context, stats *models.DashboardStats, expiration time.Duration) error {
	return m.Called(ctx, stats, expiration).Error(0)
}

func (m *mockStatsCache) GetCachedDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*models.DashboardStats)
	return s, args.Error(1)
}

func (m *mockStatsCache) InvalidateDashboardStats(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockAnalyticsCache struct{ mock.Mock }

func (m *mockAnalyticsCache) CacheAnalytics(ctx context.Context, key string, analytics *models.AnalyticsDTO, expiration time.Duration) error {
	return m.Called(ctx, key, analytics, expiration).Error(0)
}

func (m *mockAnalyticsCache) GetCachedAnalytics(ctx context.Context, key string) (*models.AnalyticsDTO, error) {
	args := m.Called(ctx, key)
	a, _ := args.Get(0).(*models.AnalyticsDTO)
	return a, args.Error(1)
}

func (m *mockAnalyticsCache) InvalidateAnalytics(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) { c.calls++ }

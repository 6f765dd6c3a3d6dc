package services

import (
	"context"
	"time"

	"github.com/hosteldesk/backend/internal/extraction"
	"github.com/hosteldesk/backend/internal/models"
)

// ComplaintExtractor turns a masked description into typed fields.
type ComplaintExtractor interface {
	Extract(ctx context.Context, description string) (*extraction.StructuredFields, error)
	ExtractScored(ctx context.Context, description string) (*extraction.ScoredFields, error)
}

// AnswerGenerator is the generative endpoint used by the Q&A service.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the similarity index. Implementations swallow their own
// failures.
type VectorIndex interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, id string, vector []float32, category, document string) bool
	HasDuplicate(ctx context.Context, vector []float32) bool
	Delete(ctx context.Context, id string)
}

// StatsCache is the read cache behind the dashboard.
type StatsCache interface {
	CacheDashboardStats(ctx context.Context, stats *models.DashboardStats, expiration time.Duration) error
	GetCachedDashboardStats(ctx context.Context) (*models.DashboardStats, error)
	InvalidateDashboardStats(ctx context.Context) error
}

// AnalyticsCache is the read cache behind the QA analytics endpoints.
type AnalyticsCache interface {
	CacheAnalytics(ctx context.Context, key string, analytics *models.AnalyticsDTO, expiration time.Duration) error
	GetCachedAnalytics(ctx context.Context, key string) (*models.AnalyticsDTO, error)
	InvalidateAnalytics(ctx context.Context, userID uint) error
}

// StatsInvalidator is told whenever complaint counts change.
type StatsInvalidator interface {
	Invalidate(ctx context.Context)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context) {}

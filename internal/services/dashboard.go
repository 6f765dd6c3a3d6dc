package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hosteldesk/backend/internal/models"
	"github.com/sirupsen/logrus"
)

type DashboardService struct {
	complaints models.ComplaintRepository
	cache      StatsCache
	ttl        time.Duration
	logger     *logrus.Logger
}

// NewDashboardService builds the service. cache may be nil.
func NewDashboardService(complaints models.ComplaintRepository, cache StatsCache, ttl time.Duration, logger *logrus.Logger) *DashboardService {
	return &DashboardService{
		complaints: complaints,
		cache:      cache,
		ttl:        ttl,
		logger:     logger,
	}
}

// GetStats returns complaint counts, serving from cache when possible.
func (s *DashboardService) GetStats(ctx context.Context) (*models.DashboardStats, error) {
	if s.cache != nil {
		if stats, err := s.cache.GetCachedDashboardStats(ctx); err == nil {
			return stats, nil
		}
	}

	stats, err := s.compute()
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.CacheDashboardStats(ctx, stats, s.ttl); err != nil {
			s.logger.WithError(err).Warn("Failed to cache dashboard stats")
		}
	}
	return stats, nil
}

func (s *DashboardService) compute() (*models.DashboardStats, error) {
	total, err := s.complaints.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count complaints: %w", err)
	}

	byStatus := make(map[models.Status]int64, len(models.Statuses))
	for _, status := range models.Statuses {
		n, err := s.complaints.CountByStatus(status)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s complaints: %w", status, err)
		}
		byStatus[status] = n
	}

	byCategory, err := s.complaints.CountByCategory()
	if err != nil {
		return nil, fmt.Errorf("failed to count complaints by category: %w", err)
	}

	return &models.DashboardStats{
		TotalComplaints:      total,
		OpenComplaints:       byStatus[models.StatusOpen],
		InProgressComplaints: byStatus[models.StatusInProgress],
		ResolvedComplaints:   byStatus[models.StatusResolved],
		ComplaintsByCategory: byCategory,
	}, nil
}

// Invalidate drops cached stats after a write.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDashboardStats(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.WithError(err).Warn("Failed to invalidate dashboard stats")
	}
}

package health

import (
	"context"
	"time"

	"github.com/hosteldesk/backend/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Probe checks one dependency. A failing optional probe degrades the
// overall status instead of failing it.
type Probe struct {
	Name     string
	Check    func(ctx context.Context) error
	Optional bool
}

// Cache stores the latest snapshot between periodic checks.
type Cache interface {
	CacheSystemHealth(ctx context.Context, health []models.SystemHealth, expiration time.Duration) error
	GetCachedSystemHealth(ctx context.Context) ([]models.SystemHealth, error)
}

// HealthChecker manages health checks for all services
type HealthChecker struct {
	probes     []Probe
	healthRepo models.SystemHealthRepository
	cache      Cache
	logger     *logrus.Logger
	timeout    time.Duration
	started    time.Time
}

func NewHealthChecker(healthRepo models.SystemHealthRepository, cache Cache, logger *logrus.Logger, probes ...Probe) *HealthChecker {
	return &HealthChecker{
		probes:     probes,
		healthRepo: healthRepo,
		cache:      cache,
		logger:     logger,
		timeout:    5 * time.Second,
		started:    time.Now(),
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

func (h *HealthChecker) check(ctx context.Context, probe Probe) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := probe.Check(ctx)
	responseTime := int(time.Since(start).Milliseconds())

	status := StatusHealthy
	errorMsg := ""
	if err != nil {
		status = StatusUnhealthy
		if probe.Optional {
			status = StatusDegraded
		}
		errorMsg = err.Error()
		h.logger.WithError(err).WithField("service", probe.Name).Warn("Health check failed")
	}

	if h.healthRepo != nil {
		if err := h.healthRepo.UpdateServiceHealth(probe.Name, status, responseTime, errorMsg); err != nil {
			h.logger.WithError(err).WithField("service", probe.Name).Debug("Failed to record health status")
		}
	}

	return ServiceHealth{
		Name:         probe.Name,
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().UTC().Format(time.RFC3339),
	}
}

// CheckAll performs health checks on all services
func (h *HealthChecker) CheckAll(ctx context.Context) OverallHealth {
	services := make([]ServiceHealth, 0, len(h.probes))
	for _, probe := range h.probes {
		services = append(services, h.check(ctx, probe))
	}

	return OverallHealth{
		Status:   overallStatus(services),
		Services: services,
		Uptime:   h.getUptime(),
	}
}

func overallStatus(services []ServiceHealth) string {
	status := StatusHealthy
	for _, service := range services {
		if service.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
		if service.Status == StatusDegraded {
			status = StatusDegraded
		}
	}
	return status
}

// CheckCached returns cached health status if available
func (h *HealthChecker) CheckCached(ctx context.Context) (*OverallHealth, error) {
	cachedHealth, err := h.cache.GetCachedSystemHealth(ctx)
	if err != nil {
		return nil, err
	}

	services := make([]ServiceHealth, len(cachedHealth))
	for i, health := range cachedHealth {
		services[i] = ServiceHealth{
			Name:         health.ServiceName,
			Status:       health.Status,
			ResponseTime: health.ResponseTimeMs,
			Error:        health.ErrorMessage,
			LastChecked:  health.CheckedAt.Format(time.RFC3339),
		}
	}

	return &OverallHealth{
		Status:   overallStatus(services),
		Services: services,
		Uptime:   h.getUptime(),
	}, nil
}

func (h *HealthChecker) getUptime() string {
	return time.Since(h.started).Round(time.Second).String()
}

// Snapshot runs every probe and caches the result for ttl.
func (h *HealthChecker) Snapshot(ctx context.Context, ttl time.Duration) OverallHealth {
	health := h.CheckAll(ctx)
	if h.cache == nil {
		return health
	}

	healthModels := make([]models.SystemHealth, len(health.Services))
	for i, service := range health.Services {
		checkedAt, _ := time.Parse(time.RFC3339, service.LastChecked)
		healthModels[i] = models.SystemHealth{
			ServiceName:    service.Name,
			Status:         service.Status,
			ResponseTimeMs: service.ResponseTime,
			ErrorMessage:   service.Error,
			CheckedAt:      checkedAt,
		}
	}

	cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.cache.CacheSystemHealth(cacheCtx, healthModels, ttl); err != nil {
		h.logger.WithError(err).Error("Failed to cache health status")
	}
	return health
}

// PeriodicHealthCheck runs health checks periodically
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			health := h.Snapshot(ctx, 2*interval)
			h.logger.WithField("status", health.Status).Debug("Periodic health check completed")
		}
	}
}

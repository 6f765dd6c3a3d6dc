package health

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/hosteldesk/backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRepo struct {
	updates map[string]string
}

func (r *recordingRepo) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	if r.updates == nil {
		r.updates = map[string]string{}
	}
	r.updates[serviceName] = status
	return nil
}

func (r *recordingRepo) GetServiceHealth(serviceName string) (*models.SystemHealth, error) {
	return nil, models.ErrNotFound
}

func (r *recordingRepo) GetAllServicesHealth() ([]models.SystemHealth, error) {
	return nil, nil
}

type memoryCache struct {
	stored []models.SystemHealth
	ttl    time.Duration
}

func (m *memoryCache) CacheSystemHealth(ctx context.Context, health []models.SystemHealth, expiration time.Duration) error {
	m.stored = health
	m.ttl = expiration
	return nil
}

func (m *memoryCache) GetCachedSystemHealth(ctx context.Context) ([]models.SystemHealth, error) {
	if m.stored == nil {
		return nil, errors.New("cache miss")
	}
	return m.stored, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func TestCheckAllStatuses(t *testing.T) {
	tests := []struct {
		name   string
		probes []Probe
		want   string
	}{
		{"all healthy", []Probe{{Name: "postgresql", Check: ok}, {Name: "redis", Check: ok}}, StatusHealthy},
		{"optional down", []Probe{{Name: "postgresql", Check: ok}, {Name: "chroma", Check: down, Optional: true}}, StatusDegraded},
		{"required down", []Probe{{Name: "postgresql", Check: down}, {Name: "chroma", Check: down, Optional: true}}, StatusUnhealthy},
		{"no probes", nil, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &recordingRepo{}
			checker := NewHealthChecker(repo, &memoryCache{}, quietLogger(), tt.probes...)

			health := checker.CheckAll(context.Background())
			assert.Equal(t, tt.want, health.Status)
			assert.Len(t, health.Services, len(tt.probes))
			for _, p := range tt.probes {
				assert.Contains(t, repo.updates, p.Name)
			}
		})
	}
}

func TestCheckReportsError(t *testing.T) {
	checker := NewHealthChecker(nil, nil, quietLogger(), Probe{Name: "gemini", Check: down, Optional: true})

	health := checker.CheckAll(context.Background())
	require.Len(t, health.Services, 1)
	assert.Equal(t, "gemini", health.Services[0].Name)
	assert.Equal(t, StatusDegraded, health.Services[0].Status)
	assert.Equal(t, "connection refused", health.Services[0].Error)
}

func TestSnapshotCachesAndCheckCachedReads(t *testing.T) {
	cache := &memoryCache{}
	checker := NewHealthChecker(&recordingRepo{}, cache, quietLogger(),
		Probe{Name: "postgresql", Check: ok},
		Probe{Name: "chroma", Check: down, Optional: true},
	)

	_, err := checker.CheckCached(context.Background())
	require.Error(t, err)

	checker.Snapshot(context.Background(), 2*time.Minute)
	assert.Equal(t, 2*time.Minute, cache.ttl)
	require.Len(t, cache.stored, 2)

	cached, err := checker.CheckCached(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusDegraded, cached.Status)
	assert.Equal(t, "chroma", cached.Services[1].Name)
}

func TestProbeHonoursTimeout(t *testing.T) {
	checker := NewHealthChecker(nil, nil, quietLogger(), Probe{
		Name: "slow",
		Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	checker.timeout = 10 * time.Millisecond

	health := checker.CheckAll(context.Background())
	assert.Equal(t, StatusUnhealthy, health.Status)
}

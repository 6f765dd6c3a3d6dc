package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/hosteldesk/backend/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticValidator struct {
	token  string
	claims *services.TokenClaims
}

func (v staticValidator) ValidateToken(token string) (*services.TokenClaims, error) {
	if token != v.token {
		return nil, errors.New("bad token")
	}
	return v.claims, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func perform(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAndRequireRole(t *testing.T) {
	validator := staticValidator{
		token:  "good",
		claims: &services.TokenClaims{UserID: 7, Username: "asha", Role: models.RoleClient},
	}

	r := gin.New()
	r.GET("/", Auth(validator), RequireRole(models.RoleClient), func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		require.True(t, ok)
		assert.Equal(t, uint(7), caller.UserID)
		assert.Equal(t, "asha", c.GetString(UsernameKey))
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer good", http.StatusNoContent},
		{"lowercase scheme", "bearer good", http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"no token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, perform(r, tt.header).Code)
		})
	}
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	validator := staticValidator{
		token:  "good",
		claims: &services.TokenClaims{UserID: 7, Role: models.RoleClient},
	}
	r := gin.New()
	r.GET("/", Auth(validator), RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := perform(r, "Bearer good")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Insufficient permissions")
}

func TestRequireRoleWithoutAuthIsUnauthenticated(t *testing.T) {
	r := gin.New()
	r.GET("/", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	assert.Equal(t, http.StatusUnauthorized, perform(r, "").Code)
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, "").Code)
	assert.Equal(t, http.StatusOK, perform(r, "").Code)
	w := perform(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, perform(r, "").Code)

	now = now.Add(10 * time.Minute)
	rl.sweep()
	assert.Empty(t, rl.visitors)
}

func TestRateLimiterDisabled(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(0).RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, perform(r, "").Code)
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), AccessLog(quietLogger()), SecurityHeaders())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := perform(r, "")
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

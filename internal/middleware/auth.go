package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/hosteldesk/backend/internal/services"
	"github.com/hosteldesk/backend/pkg/utils"
)

// Context keys set by Auth.
const (
	UserIDKey   = "userID"
	UsernameKey = "username"
	RoleKey     = "role"
)

// TokenValidator is satisfied by services.AuthService.
type TokenValidator interface {
	ValidateToken(token string) (*services.TokenClaims, error)
}

// Auth requires a valid bearer token and stores its claims on the context.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			utils.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(RoleKey)
		if !exists {
			utils.AbortWithError(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		role, ok := value.(models.Role)
		if !ok {
			utils.AbortWithError(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		utils.AbortWithError(c, http.StatusForbidden, "Insufficient permissions")
	}
}

// CallerFrom reads the identity stored by Auth.
func CallerFrom(c *gin.Context) (services.Caller, bool) {
	id, ok := c.Get(UserIDKey)
	if !ok {
		return services.Caller{}, false
	}
	userID, ok := id.(uint)
	if !ok {
		return services.Caller{}, false
	}
	role, _ := c.Get(RoleKey)
	r, _ := role.(models.Role)
	return services.Caller{UserID: userID, Role: r}, true
}

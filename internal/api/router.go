package api

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hosteldesk/backend/internal/api/handlers"
	"github.com/hosteldesk/backend/internal/middleware"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	Mode        string
	RateLimit   int
	UploadDir   string
	CORSOrigins []string
}

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Complaints *handlers.ComplaintHandler
	AI         *handlers.AIHandler
	QA         *handlers.QAHandler
	Analytics  *handlers.AnalyticsHandler
	Dashboard  *handlers.DashboardHandler
	Health     *handlers.HealthHandler
}

// NewRouter builds the engine. The rate limiter sweeps idle clients until
// ctx is done.
func NewRouter(ctx context.Context, cfg RouterConfig, h Handlers, tokens middleware.TokenValidator, logger *logrus.Logger) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	go limiter.Cleanup(time.Minute, ctx.Done())

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(logger),
		middleware.SecurityHeaders(),
	)
	// cors.New panics on an empty origin list.
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:     []string{"Authorization", "Content-Type", "Accept", "X-Requested-With", "Cache-Control", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           time.Hour,
		}))
	}

	r.GET("/health", h.Health.Health)
	r.GET("/health/live", h.Health.Live)
	if cfg.UploadDir != "" {
		r.Static("/uploads", cfg.UploadDir)
	}

	authenticated := middleware.Auth(tokens)
	clientOnly := middleware.RequireRole(models.RoleClient)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	api := r.Group("/api")
	api.Use(limiter.RateLimit())
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/login", h.Auth.Login)
			auth.GET("/me", authenticated, h.Auth.Me)
		}

		users := api.Group("/users", authenticated, adminOnly)
		{
			users.GET("", h.Auth.Users)
			users.GET("/clients", h.Auth.Clients)
		}

		complaints := api.Group("/complaints", authenticated)
		{
			complaints.POST("", h.Complaints.Create)
			complaints.GET("", h.Complaints.List)
			complaints.GET("/search", h.Complaints.Search)
			complaints.GET("/:id", h.Complaints.Get)
			complaints.PUT("/:id/status", adminOnly, h.Complaints.UpdateStatus)
			complaints.PATCH("/:id/status", adminOnly, h.Complaints.UpdateStatus)
			complaints.DELETE("/:id", adminOnly, h.Complaints.Delete)
		}

		ai := api.Group("/ai", authenticated, clientOnly)
		{
			ai.POST("/generate-complaint", h.AI.GenerateComplaint)
			ai.POST("/generate-complaint/scored", h.AI.GenerateScoredComplaint)
		}

		api.POST("/clients/qa", authenticated, h.QA.AskClient)

		history := api.Group("/qa/history", authenticated)
		{
			history.GET("/:userId", h.Analytics.History)
			history.GET("/analytics/global", adminOnly, h.Analytics.Global)
			history.GET("/analytics/global/daily", adminOnly, h.Analytics.GlobalDaily)
			history.GET("/analytics/user/:userId", h.Analytics.User)
			history.GET("/analytics/user/:userId/daily", h.Analytics.UserDaily)
		}

		admin := api.Group("/admin", authenticated, adminOnly)
		{
			admin.POST("/qa", h.QA.AskAdmin)
			admin.GET("/complaints/export", h.Complaints.Export)
			admin.GET("/dashboard/stats", h.Dashboard.Stats)
		}
	}

	return r
}

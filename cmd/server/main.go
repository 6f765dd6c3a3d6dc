package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hosteldesk/backend/internal/api"
	"github.com/hosteldesk/backend/internal/api/handlers"
	"github.com/hosteldesk/backend/internal/chroma"
	"github.com/hosteldesk/backend/internal/config"
	"github.com/hosteldesk/backend/internal/database"
	"github.com/hosteldesk/backend/internal/extraction"
	"github.com/hosteldesk/backend/internal/gemini"
	"github.com/hosteldesk/backend/internal/health"
	"github.com/hosteldesk/backend/internal/idgen"
	"github.com/hosteldesk/backend/internal/migration"
	"github.com/hosteldesk/backend/internal/repository"
	"github.com/hosteldesk/backend/internal/services"
	"github.com/hosteldesk/backend/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var migrationsPath = flag.String("migrations", "migrations", "Directory holding ordered .sql migrations")

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.ValidateAuth(); err != nil {
		logger.WithError(err).Fatal("Auth configuration validation failed")
	}
	if err := cfg.ValidateGemini(); err != nil {
		logger.WithError(err).Fatal("Gemini configuration validation failed")
	}
	if err := cfg.ValidateChroma(); err != nil {
		logger.WithError(err).Fatal("Chroma configuration validation failed")
	}

	if err := idgen.Init(cfg.Snowflake.Node); err != nil {
		logger.WithError(err).Fatal("Failed to initialize ticket number generator")
	}

	dbManager, err := database.NewManager(cfg.DatabaseConfig(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := migration.NewRunner(dbManager, dbManager.DB, logger).RunMigrations(*migrationsPath); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}

	repos := repository.NewRepositoryManager(dbManager.DB)
	cache := database.NewCache(dbManager.Redis, logger)

	geminiClient := gemini.NewClient(cfg.GeminiConfig(), logger)
	embedder := gemini.NewEmbedder(cfg.GeminiConfig(), logger)
	chromaClient := chroma.NewClient(cfg.ChromaConfig(), logger)

	indexer := services.NewIndexer(embedder, chromaClient, logger)
	dashboardService := services.NewDashboardService(repos.Complaint, cache, cfg.Cache.StatsTTL, logger)
	aiService := services.NewAIComplaintService(repos.User, repos.Complaint, extraction.NewExtractor(geminiClient, logger), indexer, dashboardService, logger)
	qaService := services.NewQAService(repos.User, repos.Complaint, repos.QaHistory, geminiClient, cache, logger)
	complaintService := services.NewComplaintService(repos.User, repos.Complaint, services.NewDiskImageStore(cfg.Server.UploadDir), indexer, dashboardService, logger)
	analyticsService := services.NewAnalyticsService(repos.QaHistory, cache, logger)
	authService := services.NewAuthService(repos.User, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger)

	if cfg.Auth.AdminUsername != "" {
		if _, err := authService.EnsureAdmin(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			logger.WithError(err).Fatal("Failed to bootstrap admin account")
		}
	}

	probes := []health.Probe{
		{Name: "postgresql", Check: dbManager.PingDatabase},
		{Name: "redis", Check: dbManager.PingRedis},
		{Name: "gemini", Check: geminiClient.Ping, Optional: true},
	}
	if chromaClient.Enabled() {
		probes = append(probes, health.Probe{Name: "chroma", Check: chromaClient.Heartbeat, Optional: true})
	}
	checker := health.NewHealthChecker(repos.SystemHealth, cache, logger, probes...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checkGemini(ctx, geminiClient, logger)

	go checker.PeriodicHealthCheck(ctx, cfg.Health.Interval)

	if cfg.Chroma.SyncOnStartup {
		go func() {
			complaints, err := repos.Complaint.GetAll()
			if err != nil {
				logger.WithError(err).Error("Startup vector sync skipped")
				return
			}
			indexer.Reindex(ctx, complaints)
		}()
	}

	router := api.NewRouter(ctx, api.RouterConfig{
		Mode:        cfg.Server.Mode,
		RateLimit:   cfg.Server.RateLimit,
		UploadDir:   cfg.Server.UploadDir,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, api.Handlers{
		Auth:       handlers.NewAuthHandler(authService, logger),
		Complaints: handlers.NewComplaintHandler(complaintService, logger),
		AI:         handlers.NewAIHandler(aiService, logger),
		QA:         handlers.NewQAHandler(qaService, logger),
		Analytics:  handlers.NewAnalyticsHandler(analyticsService, logger),
		Dashboard:  handlers.NewDashboardHandler(dashboardService, logger),
		Health:     handlers.NewHealthHandler(checker, 2*cfg.Health.Interval, logger),
	}, authService, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
	logger.Info("Server stopped")
}

// checkGemini probes the generation endpoint once so a bad key shows up in
// the startup log instead of on the first request.
func checkGemini(ctx context.Context, client *gemini.Client, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		logger.WithError(err).Warn("Gemini startup check failed")
		return
	}
	logger.Info("Gemini startup check passed")
}

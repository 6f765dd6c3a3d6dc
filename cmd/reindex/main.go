package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hosteldesk/backend/internal/chroma"
	"github.com/hosteldesk/backend/internal/config"
	"github.com/hosteldesk/backend/internal/database"
	"github.com/hosteldesk/backend/internal/gemini"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/hosteldesk/backend/internal/repository"
	"github.com/hosteldesk/backend/internal/services"
	"github.com/hosteldesk/backend/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	dryRun  = flag.Bool("dry-run", false, "List what would be indexed without calling the vector store")
	verbose = flag.Bool("verbose", false, "Enable verbose logging")
	limit   = flag.Int("limit", 0, "Index at most this many complaints, newest first (0 = all)")
	timeout = flag.Duration("timeout", 30*time.Minute, "Abort the run after this long")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.ValidateChroma(); err != nil {
		logger.WithError(err).Fatal("Chroma configuration validation failed")
	}
	if cfg.Chroma.URL == "" && !*dryRun {
		logger.Fatal("CHROMA_URL is not set, nothing to index into")
	}

	dbManager, err := database.NewManager(cfg.DatabaseConfig(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	repos := repository.NewRepositoryManager(dbManager.DB)
	complaints, err := repos.Complaint.GetAll()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load complaints")
	}
	if *limit > 0 && *limit < len(complaints) {
		complaints = complaints[:*limit]
	}

	if *dryRun {
		printPlan(complaints, logger)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	indexer := services.NewIndexer(
		gemini.NewEmbedder(cfg.GeminiConfig(), logger),
		chroma.NewClient(cfg.ChromaConfig(), logger),
		logger,
	)

	indexed, failed := indexer.Reindex(ctx, complaints)
	if failed > 0 {
		logger.WithFields(logrus.Fields{"indexed": indexed, "failed": failed}).Warn("Reindex finished with failures")
		os.Exit(1)
	}
	logger.WithField("indexed", indexed).Info("Reindex completed successfully")
}

func printPlan(complaints []models.Complaint, logger *logrus.Logger) {
	for _, c := range complaints {
		logger.WithFields(logrus.Fields{
			"complaint_id":       c.ID,
			"ticket_no":          c.TicketNo,
			"category":           c.Category,
			"description_length": len(c.Description),
		}).Info("DRY RUN: Would index complaint")
	}
	logger.WithField("total", len(complaints)).Info("DRY RUN complete")
}

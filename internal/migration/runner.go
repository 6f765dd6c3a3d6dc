package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Schema applies the gorm models. database.Manager satisfies it.
type Schema interface {
	Migrate() error
}

type Runner struct {
	schema Schema
	db     *gorm.DB
	logger *logrus.Logger
}

func NewRunner(schema Schema, db *gorm.DB, logger *logrus.Logger) *Runner {
	return &Runner{
		schema: schema,
		db:     db,
		logger: logger,
	}
}

// appliedMigration records one executed .sql file.
type appliedMigration struct {
	Name string `gorm:"primaryKey"`
}

func (appliedMigration) TableName() string { return "schema_migrations" }

// RunMigrations executes all pending migrations
func (r *Runner) RunMigrations(migrationsPath string) error {
	r.logger.Info("Starting database migrations...")

	if err := r.schema.Migrate(); err != nil {
		return fmt.Errorf("GORM auto-migration failed: %w", err)
	}

	if err := r.runSQLMigrations(migrationsPath); err != nil {
		return fmt.Errorf("SQL migrations failed: %w", err)
	}

	r.logger.Info("Database migrations completed successfully")
	return nil
}

func (r *Runner) runSQLMigrations(migrationsPath string) error {
	sqlFiles, err := PendingFiles(migrationsPath)
	if err != nil {
		return err
	}
	if len(sqlFiles) == 0 {
		return nil
	}

	if err := r.db.AutoMigrate(&appliedMigration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var applied []appliedMigration
	if err := r.db.Find(&applied).Error; err != nil {
		return fmt.Errorf("failed to load applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, a := range applied {
		done[a.Name] = true
	}

	for _, fileName := range sqlFiles {
		if done[fileName] {
			continue
		}
		if err := r.runSQLFile(filepath.Join(migrationsPath, fileName)); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", fileName, err)
		}
		r.logger.WithField("file", fileName).Info("Migration executed successfully")
	}

	return nil
}

// PendingFiles lists the .sql files in dir in lexical order. A missing
// directory yields no files.
func PendingFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)
	return sqlFiles, nil
}

// runSQLFile executes a file and records it in one transaction.
func (r *Runner) runSQLFile(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	name := filepath.Base(filePath)
	statements := SplitStatements(string(content))

	return r.db.Transaction(func(tx *gorm.DB) error {
		for i, stmt := range statements {
			r.logger.WithFields(logrus.Fields{
				"file":      name,
				"statement": i + 1,
			}).Debug("Executing SQL statement")

			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		return tx.Create(&appliedMigration{Name: name}).Error
	})
}

// SplitStatements drops comment lines and splits on semicolons. Files that
// contain dollar quoting are returned whole.
func SplitStatements(sql string) []string {
	var cleanedLines []string
	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cleanedLines = append(cleanedLines, line)
	}
	cleaned := strings.TrimSpace(strings.Join(cleanedLines, "\n"))
	if cleaned == "" {
		return nil
	}

	if strings.Contains(cleaned, "$$") {
		return []string{cleaned}
	}

	var result []string
	for _, stmt := range strings.Split(cleaned, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}

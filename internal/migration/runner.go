package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/myproject/website/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AppliedMigration records a .sql file that has run against the database.
type AppliedMigration struct {
	Name      string `gorm:"primaryKey;size:255"`
	AppliedAt time.Time
}

func (AppliedMigration) TableName() string { return "schema_migrations" }

type Runner struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewRunner(db *gorm.DB, logger *logrus.Logger) *Runner {
	return &Runner{
		db:     db,
		logger: logger,
	}
}

// RunMigrations auto-migrates the models, then runs the .sql files in
// migrationsPath that have not been applied yet, in lexical order. A missing
// directory is not an error.
func (r *Runner) RunMigrations(migrationsPath string) error {
	r.logger.Info("Starting database migrations...")

	if err := r.db.AutoMigrate(&models.Page{}, &models.SEOSettings{}, &AppliedMigration{}); err != nil {
		return fmt.Errorf("GORM auto-migration failed: %w", err)
	}

	if migrationsPath != "" {
		if err := r.runSQLMigrations(migrationsPath); err != nil {
			return fmt.Errorf("SQL migrations failed: %w", err)
		}
	}

	r.logger.Info("Database migrations completed successfully")
	return nil
}

func (r *Runner) runSQLMigrations(migrationsPath string) error {
	entries, err := os.ReadDir(migrationsPath)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.WithField("path", migrationsPath).Debug("No SQL migrations directory")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	applied, err := r.appliedNames()
	if err != nil {
		return err
	}

	for _, name := range names {
		if applied[name] {
			r.logger.WithField("file", name).Debug("Migration already applied")
			continue
		}
		if err := r.apply(migrationsPath, name); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", name, err)
		}
		r.logger.WithField("file", name).Info("Migration executed successfully")
	}

	return nil
}

func (r *Runner) appliedNames() (map[string]bool, error) {
	var rows []AppliedMigration
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	applied := make(map[string]bool, len(rows))
	for _, row := range rows {
		applied[row.Name] = true
	}
	return applied, nil
}

// apply runs one file and records it in the same transaction.
func (r *Runner) apply(dir, name string) error {
	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		for i, stmt := range r.statements(string(content)) {
			r.logger.WithFields(logrus.Fields{
				"file":      name,
				"statement": i + 1,
			}).Debug("Executing SQL statement")

			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		return tx.Create(&AppliedMigration{Name: name, AppliedAt: time.Now().UTC()}).Error
	})
}

// statements drops "--" comment lines and splits on semicolons. Files with
// dollar-quoted bodies are returned whole, since those bodies contain
// semicolons of their own.
func (r *Runner) statements(sql string) []string {
	var kept []string
	for _, line := range strings.Split(sql, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	body := strings.TrimSpace(strings.Join(kept, "\n"))
	if body == "" {
		return nil
	}

	if strings.Contains(body, "$$") {
		return []string{body}
	}

	var stmts []string
	for _, part := range strings.Split(body, ";") {
		if part = strings.TrimSpace(part); part != "" {
			stmts = append(stmts, part)
		}
	}
	return stmts
}

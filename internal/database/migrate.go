package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/pageza/ticketdesk/backend/internal/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsDir = "migrations"

// RunMigrations brings the schema up to date and seeds the default categories.
// SQLite uses gorm auto-migration; Postgres applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *gorm.DB, log *slog.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Info("using gorm auto-migration for sqlite")
		if err := db.WithContext(ctx).AutoMigrate(AllModels()...); err != nil {
			return fmt.Errorf("auto-migrate failed: %w", err)
		}
	} else {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := MigrateUp(ctx, sqlDB); err != nil {
			return err
		}
	}

	created, err := models.SeedDefaultCategories(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if created > 0 {
		log.Info("seeded default categories", "count", created)
	}
	return nil
}

func prepareGoose() error {
	goose.SetBaseFS(embedMigrations)
	return goose.SetDialect("postgres")
}

// MigrateUp applies every pending postgres migration.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent postgres migration.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// MigrationStatus prints the state of each migration through goose's logger.
func MigrationStatus(ctx context.Context, db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, migrationsDir)
}

// SchemaVersion returns the current goose version.
func SchemaVersion(ctx context.Context, db *sql.DB) (int64, error) {
	if err := prepareGoose(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}

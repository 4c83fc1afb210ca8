// Command migrate manages the ticketdesk database schema.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pageza/ticketdesk/backend/config"
	"github.com/pageza/ticketdesk/backend/internal/database"
	"github.com/pageza/ticketdesk/backend/internal/logger"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Ticketdesk schema migrations",
		Long: `Ticketdesk schema migrations.

Postgres schemas are managed by the embedded goose migrations. SQLite
databases are brought up to date with gorm auto-migration, so only the
up command applies to them.`,
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations and seed default categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Database, log)
			if err != nil {
				return err
			}
			if err := database.RunMigrations(cmd.Context(), db, log); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: withPostgres(func(ctx context.Context, db *sql.DB, log *slog.Logger) error {
			if err := database.MigrateDown(ctx, db); err != nil {
				return err
			}
			version, err := database.SchemaVersion(ctx, db)
			if err != nil {
				return err
			}
			log.Info("migration rolled back", "version", version)
			return nil
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the state of each migration",
		RunE: withPostgres(func(ctx context.Context, db *sql.DB, _ *slog.Logger) error {
			return database.MigrationStatus(ctx, db)
		}),
	})

	return root
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.Init(cfg.Logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// withPostgres opens a plain sql handle for goose commands.
func withPostgres(fn func(ctx context.Context, db *sql.DB, log *slog.Logger) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if cfg.Database.Driver != "postgres" {
			return fmt.Errorf("%s requires the postgres driver, got %q", cmd.Name(), cfg.Database.Driver)
		}
		db, err := database.OpenSQL(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(cmd.Context(), db, log)
	}
}

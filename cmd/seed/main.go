// Command seed loads a YAML fixture of categories, users and tickets.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pageza/ticketdesk/backend/config"
	"github.com/pageza/ticketdesk/backend/internal/database"
	"github.com/pageza/ticketdesk/backend/internal/logger"
	"github.com/pageza/ticketdesk/backend/internal/seed"
	"github.com/pageza/ticketdesk/backend/internal/service"
)

func main() {
	var fixturePath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load development fixtures",
		Long: `Load development fixtures into the configured database.

Existing categories, users and tickets are left untouched, so the command
can be run repeatedly against the same database.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			log, err := logger.Init(cfg.Logger)
			if err != nil {
				return err
			}

			fixture, err := seed.Load(fixturePath)
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

			_, err = seed.Apply(cmd.Context(), db, service.NewCredentials(cfg.Auth.BcryptCost), fixture, log)
			return err
		},
	}
	cmd.Flags().StringVarP(&fixturePath, "file", "f", "fixtures/seed.example.yaml", "fixture file to load")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

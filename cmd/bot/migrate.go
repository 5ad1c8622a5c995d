package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Proton-105/citrine-bot/internal/database"
	"github.com/Proton-105/citrine-bot/pkg/logger"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply PostgreSQL migrations for the user_storage table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), opts)
		},
	}
}

func runMigrate(ctx context.Context, opts *rootOptions) error {
	cfg, _, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(*cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.NewMigrator(db, log).Migrate(ctx, cfg.Database.MigrationsDir); err != nil {
		return err
	}

	log.Info("database migrations applied successfully")
	return nil
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/joestump/bookmarks/internal/config"
	"github.com/joestump/bookmarks/internal/db"
	"github.com/joestump/bookmarks/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log.Level, !cfg.Production())
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			database, err := db.New(ctx, cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(ctx, database, cfg.DB.Driver); err != nil {
				return err
			}

			v, err := db.Version(database)
			if err != nil {
				return err
			}
			log.Info("migrations complete", logger.Int64("version", v))
			return nil
		},
	}
}

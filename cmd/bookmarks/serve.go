package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/joestump/bookmarks/internal/api"
	"github.com/joestump/bookmarks/internal/auth"
	"github.com/joestump/bookmarks/internal/config"
	"github.com/joestump/bookmarks/internal/db"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/metrics"
	"github.com/joestump/bookmarks/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
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

			if cfg.APIToken == config.DevToken {
				log.Warn("using the default development API token; set BOOKMARKS_API_TOKEN")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			database, err := db.New(ctx, cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(ctx, database, cfg.DB.Driver); err != nil {
				return err
			}

			bookmarkStore := store.NewBookmarkStore(database)

			gauge, err := startBookmarkGauge(ctx, cfg.Metrics.Refresh, bookmarkStore, log)
			if err != nil {
				return err
			}
			defer func() { <-gauge.Stop().Done() }()

			router := api.NewRouter(api.Deps{
				BearerAuth:    auth.NewBearerTokenMiddleware(cfg.APIToken, log),
				BookmarkStore: bookmarkStore,
				Logger:        log,
				DB:            database,
				SchemaVersion: func() (int64, error) { return db.Version(database) },
				Prefix:        cfg.HTTP.Prefix,
				ClientOrigin:  cfg.ClientOrigin,
				Production:    cfg.Production(),
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       60 * time.Second,
				MaxHeaderBytes:    1 << 20,
			}

			go func() {
				<-ctx.Done()
				log.Info("HTTP server shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.Error("shutdown", logger.Error(err))
				}
			}()

			log.Infof("listening on %s (env=%s, db=%s)", cfg.HTTP.Addr, cfg.Env, cfg.DB.Driver)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

// bookmarkCounter is the slice of the store the gauge refresher needs.
type bookmarkCounter interface {
	Count(ctx context.Context) (int, error)
}

// startBookmarkGauge refreshes the bookmarks_total gauge on the given cron
// schedule, once immediately and then until the returned cron is stopped.
func startBookmarkGauge(ctx context.Context, spec string, s bookmarkCounter, log logger.Logger) (*cron.Cron, error) {
	refresh := func() {
		n, err := s.Count(ctx)
		if err != nil {
			log.Error("refresh bookmark gauge", logger.Error(err))
			return
		}
		metrics.BookmarksTotal.Set(float64(n))
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, refresh); err != nil {
		return nil, err
	}
	refresh()
	c.Start()
	return c, nil
}

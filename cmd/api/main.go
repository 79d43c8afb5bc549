// Command api serves the computed fantasy scoring records read-only.
//
// Usage:
//
//	scoracle-api
//	STORE_BACKEND=postgres API_PORT=8080 scoracle-api

// @title Scoracle Fantasy API
// @version 1.0.0
// @description Read-only fantasy-football scoring records for players and team defenses.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Scoracle
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/scoracle-fantasy/internal/api"
	"github.com/albapepper/scoracle-fantasy/internal/api/handler"
	"github.com/albapepper/scoracle-fantasy/internal/cache"
	"github.com/albapepper/scoracle-fantasy/internal/config"
	"github.com/albapepper/scoracle-fantasy/internal/db"
	"github.com/albapepper/scoracle-fantasy/internal/maintenance"
	"github.com/albapepper/scoracle-fantasy/internal/store"

	_ "github.com/albapepper/scoracle-fantasy/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	appCache := cache.New(cfg.CacheEnabled)
	defer appCache.Close()
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	var (
		backend handler.Backend
		pinger  handler.Pinger
		tasks   []maintenance.Task
	)

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		logger.Info("Connecting to database...")
		pool, err := db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
		backend = store.NewPostgres(pool.Pool, logger)
		pinger = pool

	default:
		mem := store.NewMemory()
		if err := mem.LoadFrom(cfg.DataDir); err != nil {
			logger.Error("Failed to load snapshot", "dir", cfg.DataDir, "error", err)
			os.Exit(1)
		}
		players, rostered, defenses := mem.Counts()
		logger.Info("Snapshot loaded", "dir", cfg.DataDir,
			"players", players, "rostered", rostered, "defenses", defenses)
		backend = mem

		// The CLI writes the snapshot from another process; pick its changes up.
		tasks = append(tasks, maintenance.Task{
			Name:     "snapshot-reload",
			Interval: cfg.SnapshotReload,
			Run: func(context.Context) error {
				if err := mem.LoadFrom(cfg.DataDir); err != nil {
					return err
				}
				dropped := appCache.InvalidatePrefix("/api/v1/")
				logger.Debug("Snapshot reloaded", "cache_dropped", dropped)
				return nil
			},
		})
	}

	go maintenance.Start(ctx, tasks, logger)

	h := handler.New(backend, pinger, appCache, cfg, logger)
	router := api.NewRouter(h, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Scoracle Fantasy API",
			"addr", addr,
			"backend", cfg.StoreBackend,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

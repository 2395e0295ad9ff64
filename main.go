package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Bingearr/config"
	"Bingearr/database"
	"Bingearr/handlers"
	"Bingearr/services"
	"Bingearr/services/cache"
	"Bingearr/services/notify"
	"Bingearr/services/scheduler"
	"Bingearr/services/sync"
	"Bingearr/services/tasks"
	"Bingearr/services/tmdb"
	"Bingearr/services/watchstatus"
	"Bingearr/shared/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Environment, cfg.Debug)

	slog.Info("Initializing Bingearr components")

	services.InitSessionStore(cfg)

	if err := database.Connect(cfg); err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	if err := database.SeedAdminAccount(); err != nil {
		slog.Error("Failed to seed admin account", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := tmdb.NewClient(cfg.TMDBAPIKey, cfg.TMDBBaseURL, cfg.SyncItemDelay, nil)
	if !catalog.Configured() {
		slog.Warn("TMDB_API_KEY is not set, sync passes will fail")
	}

	contentCache := cache.New(cfg.CacheTTL)
	hub := notify.NewHub()
	runner := tasks.NewRunner(2, 64, 30*time.Minute)
	defer runner.Stop()

	store := sync.NewStore(database.DB)
	statuses := watchstatus.NewEngine(database.DB)
	syncer := sync.NewService(catalog, store, statuses, contentCache, hub, runner)

	sched := scheduler.NewService(syncer, cfg.SyncShowInterval, cfg.SyncMovieInterval)
	go sched.Start(ctx)

	api := &handlers.API{
		Sync:      syncer,
		Statuses:  statuses,
		Scheduler: sched,
		Cache:     contentCache,
		Hub:       hub,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})
	api.RegisterRoutes(mux)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Server starting", "port", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}

	<-sched.Done()
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/survival-kitchen/internal/config"
	"github.com/jwebster45206/survival-kitchen/internal/handlers"
	"github.com/jwebster45206/survival-kitchen/internal/logger"
	"github.com/jwebster45206/survival-kitchen/internal/middleware"
	"github.com/jwebster45206/survival-kitchen/internal/services/events"
	"github.com/jwebster45206/survival-kitchen/internal/services/queue"
	"github.com/jwebster45206/survival-kitchen/internal/sessions"
	"github.com/jwebster45206/survival-kitchen/internal/storage"
	"github.com/jwebster45206/survival-kitchen/internal/worker"
	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Survival Kitchen API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, cfg.SnapshotTTL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	defaultCatalog := catalog.Default()
	if cfg.Catalog != "" {
		defaultCatalog, err = store.GetCatalog(storageCtx, cfg.Catalog)
		if err != nil {
			log.Error("Failed to load default catalog", "catalog", cfg.Catalog, "error", err)
			os.Exit(1)
		}
	}
	log.Info("Default catalog loaded", "name", defaultCatalog.Name)

	rdb := store.Client()
	messages := queue.NewMessageQueue(queue.NewClientFrom(rdb, log), cfg.SnapshotTTL)
	broadcaster := events.NewBroadcaster(rdb, log)
	manager := sessions.NewManager(store, messages, broadcaster, log)

	// Engines outlive their snapshot by at most one sweep
	reaper := worker.New(manager, cfg.SnapshotTTL, log, "")
	go func() {
		if err := reaper.Start(); err != nil {
			log.Error("Reaper failed", "error", err)
		}
	}()

	router := handlers.NewRouter(handlers.RouterConfig{
		Manager:        manager,
		Storage:        store,
		Redis:          rdb,
		DefaultCatalog: defaultCatalog,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateBurst),
		Logger:         log,
	})

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the events stream stays open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...", "live_games", manager.Len())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	reaper.Stop()

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}

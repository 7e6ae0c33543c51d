package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/patternscope/patternscope/api"
	embedded "github.com/patternscope/patternscope/db"
	"github.com/patternscope/patternscope/internal/config"
	"github.com/patternscope/patternscope/internal/db"
	"github.com/patternscope/patternscope/internal/jobs"
	"github.com/patternscope/patternscope/internal/notify"
	"github.com/patternscope/patternscope/internal/repository/sqlite"
	"github.com/patternscope/patternscope/internal/schema"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	log.Printf("Starting patternscope server version %s (built at %s)", version, buildTime)

	ctx := context.Background()

	// Open database connection and apply migrations + seeds
	database, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, database, embedded.Migrations, embedded.SeedFiles); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	repo := sqlite.New(database)
	schemas, err := schema.NewLoader(ctx, repo)
	if err != nil {
		log.Fatalf("Failed to load onboarding schemas: %v", err)
	}

	// Notification pipeline: Telegram when configured, otherwise a no-op
	// sink that completes jobs silently.
	var notifier notify.Notifier
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			log.Fatalf("Failed to connect to Telegram: %v", err)
		}
		notifier = tg
	} else {
		notifier = &notify.NoopNotifier{Logger: logger}
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	pool := jobs.NewWorkerPool(jobs.NewRepository(database), notify.Handlers(notifier), logger, cfg.NotifyWorkers)
	pool.Start(workerCtx)

	repos := api.Repos{
		Users:       repo,
		Submissions: repo,
		Analyses:    repo,
		Content:     repo,
		Tweets:      repo,
		Feedback:    repo,
		Admin:       repo,
		Prompts:     repo,
	}
	handler := api.SetupRoutes(cfg, version, buildTime, repos, schemas, pool)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	stopWorkers()
	pool.Stop()

	if err := database.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Server exited")
}

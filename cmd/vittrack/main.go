package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"vittrack/internal/config"
	"vittrack/internal/events"
	"vittrack/internal/extract"
	apphttp "vittrack/internal/http"
	"vittrack/internal/ingest"
	"vittrack/internal/services"
	"vittrack/internal/storage"
	"vittrack/internal/transcribe"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting vittrack server")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// The category registry is immutable reference data; a missing default
	// category is a deployment error, not something to limp through.
	categories, err := repo.ListCategories(context.Background())
	if err != nil {
		logger.Error("Failed to load categories", "error", err)
		os.Exit(1)
	}
	registry, err := ingest.NewRegistry(categories)
	if err != nil {
		logger.Error("Category registry unusable", "error", err)
		os.Exit(1)
	}

	transcriber, err := transcribe.New(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize transcriber", "error", err, "backend", cfg.TranscriberBackend)
		os.Exit(1)
	}
	logger.Info("Transcriber initialized", "backend", cfg.TranscriberBackend)

	extractor := extract.NewGroqExtractor(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqChatModel, registry.Names())

	// AMQP is optional: without it the server still works, only the
	// analytics aggregates fall behind until the reconcile pass.
	var publisher *events.Client
	if cfg.AMQPURL != "" {
		publisher, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without events", "error", err)
			publisher = nil
		} else {
			defer publisher.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	var pipelinePublisher ingest.Publisher
	var servicePublisher services.Publisher
	if publisher != nil {
		pipelinePublisher = publisher
		servicePublisher = publisher
	}

	pipeline := ingest.NewPipeline(transcriber, extractor, repo, repo, registry, pipelinePublisher)
	expenseService := services.NewExpenseService(repo, servicePublisher)

	srv := apphttp.NewServer(":"+cfg.Port, repo, expenseService, pipeline)

	// The audio pipeline makes two upstream calls in sequence, so the write
	// timeout has to cover both.
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 180 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting vittrack server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

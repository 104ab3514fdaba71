package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/config"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/database"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/logging"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/server"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/store"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/upload"
)

func main() {
	// A local .env is optional; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Database
	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db, cfg.PostStore == "sql"); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// ERROR+ records are also kept in system_logs
	dbLogHandler := logging.NewDBHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, dbLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetention, cleanupDone)

	// Post store
	var postStore store.PostStore
	var disconnectMongo func()
	switch cfg.PostStore {
	case "mongo":
		client, err := database.ConnectMongo(context.Background(), cfg)
		if err != nil {
			slog.Error("mongo connection failed", "error", err)
			os.Exit(1)
		}
		disconnectMongo = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				slog.Error("mongo disconnect error", "error", err)
			}
		}
		mongoStore := store.NewMongoPostStore(client.Database(cfg.MongoDatabase))
		if err := mongoStore.EnsureIndexes(context.Background()); err != nil {
			slog.Error("mongo index creation failed", "error", err)
			os.Exit(1)
		}
		postStore = mongoStore
	default:
		postStore = store.NewGormPostStore(db)
	}
	slog.Info("post store ready", "backend", cfg.PostStore)

	uploads, err := upload.NewStore(cfg.UploadDir, cfg.BackendURL, cfg.UploadMaxBytes)
	if err != nil {
		slog.Error("upload store init failed", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
			cfg.SentryDSN = ""
		}
	}

	if !cfg.GoogleEnabled() {
		slog.Warn("google sign-in disabled: GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set")
	}

	app := server.New(cfg, server.Deps{
		DB:        db,
		PostStore: postStore,
		Uploads:   uploads,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if disconnectMongo != nil {
		disconnectMongo()
	}
	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

// Package main is the entry point for the EduHansa library server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eduhansa/internal/assets"
	"eduhansa/internal/cache"
	"eduhansa/internal/config"
	"eduhansa/internal/content"
	"eduhansa/internal/database"
	"eduhansa/internal/fixtures"
	"eduhansa/internal/handlers"
	"eduhansa/internal/logging"
	"eduhansa/internal/middleware"
	"eduhansa/internal/render"
	"eduhansa/internal/router"
	"eduhansa/internal/storage"
	"eduhansa/internal/store"
	"eduhansa/internal/view"
	"eduhansa/web"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON elsewhere.
	slog.SetDefault(logging.New(os.Stdout, cfg.Env, cfg.LogLevel))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"revalidate", cfg.Revalidate,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	documents := store.NewDocumentStore(db)

	// Seed the sample library in development (no-op if books exist).
	if cfg.IsDev() {
		n, err := fixtures.Seed(context.Background(), documents)
		if err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
		if n > 0 {
			slog.Info("sample library seeded", "documents", n)
		}
	}

	// Connect to Valkey for the rendered page cache (optional).
	var pages handlers.PageCache
	if cfg.CacheEnabled() {
		valkeyClient, err := cache.ConnectValkey(context.Background(), cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		pages = cache.NewPageCache(valkeyClient, cfg.Revalidate)
		slog.Info("page cache enabled", "ttl", cfg.Revalidate)
	} else {
		slog.Warn("valkey not configured, pages are rendered on every request")
	}

	// Connect to S3-compatible object storage (optional).
	var (
		files     assets.PublicFiles
		presigner handlers.Presigner
	)
	if cfg.StorageEnabled() {
		storageClient, err := storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3BucketPublic, cfg.S3BucketPrivate, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		files, presigner = storageClient, storageClient
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"public_bucket", cfg.S3BucketPublic,
			"private_bucket", cfg.S3BucketPrivate,
		)
	} else {
		slog.Warn("s3 storage not configured, images resolve against asset base url", "base_url", cfg.AssetBaseURL)
	}

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		slog.Error("failed to load static assets", "error", err)
		os.Exit(1)
	}

	contentClient := content.NewClient(documents)
	transformer := view.New(assets.NewResolver(files, cfg.AssetBaseURL), nil)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxies...)
	defer limiter.Stop()

	r := router.New(
		handlers.NewPublic(contentClient, transformer, renderer, pages, presigner),
		handlers.NewAPI(contentClient, transformer, presigner),
		limiter,
		static,
	)

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

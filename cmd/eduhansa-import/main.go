// Package main is the EduHansa content import tool. It loads documents,
// markdown posts and cover images into the library, then clears the
// rendered page cache so the site picks up the changes.
//
// Usage:
//
//	eduhansa-import seed [--force]
//	eduhansa-import documents FILE.yaml...
//	eduhansa-import posts DIR
//	eduhansa-import covers DIR
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"eduhansa/internal/cache"
	"eduhansa/internal/config"
	"eduhansa/internal/database"
	"eduhansa/internal/logging"
	"eduhansa/internal/storage"
	"eduhansa/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.Env, cfg.LogLevel))

	root := newRootCmd(func(ctx context.Context) (*app, func(), error) {
		return openApp(ctx, cfg)
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// openApp connects to the services an import needs. Valkey and S3 are
// optional; commands that require S3 fail when it is missing.
func openApp(ctx context.Context, cfg *config.Config) (*app, func(), error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	closers := []func() error{db.Close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	a := &app{docs: store.NewDocumentStore(db)}

	if cfg.StorageEnabled() {
		files, err := storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3BucketPublic, cfg.S3BucketPrivate, cfg.S3PublicURL,
		)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		a.files = files
	}

	if cfg.CacheEnabled() {
		client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Warn("valkey unreachable, page cache will expire on its own", "error", err)
		} else {
			closers = append(closers, client.Close)
			a.pages = cache.NewPageCache(client, cfg.Revalidate)
		}
	}

	return a, closeAll, nil
}

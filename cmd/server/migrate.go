package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/soaringjerry/Resilience/internal/config"
	"github.com/soaringjerry/Resilience/internal/db"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations to the configured store",
		Long: `Apply the SQL migrations for the configured store and exit.

Migrations are re-runnable. For SQLite a lock file next to the database
keeps concurrent starts from migrating at the same time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			backend, err := openLocked(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer backend.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "%s store is up to date\n", cfg.Store)
			return nil
		},
	}
}

// lockPath is the lock file guarding migrations, or "" when the store needs none.
func lockPath(cfg config.Config) string {
	if cfg.Store != "sqlite" || cfg.SQLitePath == "" {
		return ""
	}
	return cfg.SQLitePath + ".lock"
}

// openLocked opens the configured store while holding the migration lock.
func openLocked(ctx context.Context, cfg config.Config, logger *slog.Logger) (db.Backend, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := db.Options{
		Driver:        cfg.Store,
		SQLitePath:    cfg.SQLitePath,
		PostgresDSN:   cfg.PostgresDSN,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
		MigrationsDir: cfg.MigrationsDir,
		Logger:        logger,
	}
	path := lockPath(cfg)
	if path == "" {
		return db.Open(ctx, opts)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	lock := flock.New(path)
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("release migration lock", "path", path, "error", err)
		}
	}()
	return db.Open(ctx, opts)
}

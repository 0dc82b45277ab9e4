package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soaringjerry/Resilience/internal/services"
)

// Backend is a record and user store with a lifecycle.
type Backend interface {
	services.RecordStore
	services.UserStore
	Ping(ctx context.Context) error
	Close() error
}

type Options struct {
	Driver        string
	SQLitePath    string
	PostgresDSN   string
	MongoURI      string
	MongoDatabase string
	MigrationsDir string
	Logger        *slog.Logger
}

// Open connects the configured backend and brings its schema up to date.
func Open(ctx context.Context, opts Options) (Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch opts.Driver {
	case "memory":
		logger.Warn("using in-memory store; records are lost on restart")
		return NewMemoryStore(), nil
	case "", "sqlite":
		sqlDB, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(sqlDB, DialectSQLite, opts.MigrationsDir); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		store, err := NewSQLiteStore(sqlDB)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		logger.Info("sqlite store ready", "path", opts.SQLitePath)
		return store, nil
	case "postgres":
		sqlDB, err := OpenPostgres(opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := RunMigrations(sqlDB, DialectPostgres, opts.MigrationsDir); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("postgres store ready")
		return NewPostgresStore(sqlDB), nil
	case "mongo":
		client, err := ConnectMongo(ctx, opts.MongoURI)
		if err != nil {
			return nil, err
		}
		store := NewMongoStore(client, opts.MongoDatabase)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		logger.Info("mongo store ready", "database", opts.MongoDatabase)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

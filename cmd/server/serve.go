package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/Resilience/internal/api"
	"github.com/soaringjerry/Resilience/internal/cache"
	"github.com/soaringjerry/Resilience/internal/catalog"
	"github.com/soaringjerry/Resilience/internal/config"
	"github.com/soaringjerry/Resilience/internal/db"
	"github.com/soaringjerry/Resilience/internal/middleware"
	"github.com/soaringjerry/Resilience/internal/services"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	backend, err := openLocked(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := backend.Close(); cerr != nil {
			logger.Warn("close store", "error", cerr)
		}
	}()

	var records services.RecordStore = backend
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cache.RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("redis unreachable; history reads go to the store", "addr", cfg.RedisAddr, "error", err)
		}
		records = db.NewCachedStore(backend, rc, cfg.CacheTTL, logger)
	}

	if cfg.JWTSecret == "" {
		logger.Warn("RESILIENCE_JWT_SECRET not set; using the development secret")
	}
	tokens := middleware.NewAuth(cfg.JWTSecret)
	engine := services.NewEngine(cat)

	router := api.NewRouter(api.Deps{
		Engine: engine,
		Assessments: services.NewAssessmentService(engine, records, middleware.Identity{},
			services.WithSessionTTL(cfg.SessionTTL),
			services.WithStoreTimeout(cfg.StoreTimeout),
			services.WithLogger(logger),
		),
		History:        services.NewHistoryService(engine, records, logger),
		Auth:           services.NewAuthService(backend, tokens.SignToken),
		Tokens:         tokens,
		Health:         backend,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
		Commit:         cfg.Commit,
		BuildTime:      cfg.BuildTime,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("resilience server listening", "addr", cfg.Addr, "store", cfg.Store, "version", Version)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/soaringjerry/Resilience/internal/utils"
)

type Config struct {
	Addr string

	Store          string
	SQLitePath     string
	PostgresDSN    string
	MongoURI       string
	MongoDatabase  string
	MigrationsDir  string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CacheTTL       time.Duration
	StoreTimeout   time.Duration
	CatalogPath    string
	JWTSecret      string
	SessionTTL     time.Duration
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	StaticDir      string
	Commit         string
	BuildTime      string
}

// Load reads an optional .env file and then the RESILIENCE_* environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Addr:          utils.SafeEnv("RESILIENCE_ADDR", ":8080"),
		Store:         strings.ToLower(utils.SafeEnv("RESILIENCE_STORE", "sqlite")),
		SQLitePath:    utils.SafeEnv("RESILIENCE_SQLITE_PATH", "./data/resilience.db"),
		PostgresDSN:   os.Getenv("RESILIENCE_POSTGRES_DSN"),
		MongoURI:      os.Getenv("RESILIENCE_MONGO_URI"),
		MongoDatabase: utils.SafeEnv("RESILIENCE_MONGO_DB", "resilience"),
		MigrationsDir: os.Getenv("RESILIENCE_MIGRATIONS_DIR"),
		RedisAddr:     os.Getenv("RESILIENCE_REDIS_ADDR"),
		RedisPassword: os.Getenv("RESILIENCE_REDIS_PASSWORD"),
		CatalogPath:   os.Getenv("RESILIENCE_CATALOG_PATH"),
		JWTSecret:     os.Getenv("RESILIENCE_JWT_SECRET"),
		LogLevel:      utils.SafeEnv("RESILIENCE_LOG_LEVEL", "info"),
		LogFormat:     utils.SafeEnv("RESILIENCE_LOG_FORMAT", "text"),
		StaticDir:     os.Getenv("RESILIENCE_STATIC_DIR"),
		Commit:        os.Getenv("RESILIENCE_COMMIT"),
		BuildTime:     os.Getenv("RESILIENCE_BUILD_TIME"),
	}

	var errs []error
	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"RESILIENCE_CACHE_TTL", "5m", &cfg.CacheTTL},
		{"RESILIENCE_STORE_TIMEOUT", "10s", &cfg.StoreTimeout},
		{"RESILIENCE_SESSION_TTL", "2h", &cfg.SessionTTL},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(utils.SafeEnv(d.key, d.fallback))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.key, err))
			continue
		}
		*d.dst = v
	}

	redisDB, err := strconv.Atoi(utils.SafeEnv("RESILIENCE_REDIS_DB", "0"))
	if err != nil {
		errs = append(errs, fmt.Errorf("RESILIENCE_REDIS_DB: %w", err))
	}
	cfg.RedisDB = redisDB

	for _, o := range strings.Split(os.Getenv("RESILIENCE_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	switch cfg.Store {
	case "sqlite", "memory":
	case "postgres":
		if cfg.PostgresDSN == "" {
			errs = append(errs, errors.New("RESILIENCE_POSTGRES_DSN is required for the postgres store"))
		}
	case "mongo":
		if cfg.MongoURI == "" {
			errs = append(errs, errors.New("RESILIENCE_MONGO_URI is required for the mongo store"))
		}
	default:
		errs = append(errs, fmt.Errorf("RESILIENCE_STORE: unknown store %q", cfg.Store))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewLogger builds the process logger. format is "json" or "text".
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

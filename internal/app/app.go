// Package app wires configuration into the client, stores and syncer shared by the commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gridiron_intel/ingestion/internal/cache"
	"gridiron_intel/ingestion/internal/client"
	"gridiron_intel/ingestion/internal/config"
	"gridiron_intel/ingestion/internal/ingest"
	"gridiron_intel/ingestion/internal/models"
	"gridiron_intel/ingestion/internal/ratelimit"
	"gridiron_intel/ingestion/internal/repository"
	"gridiron_intel/ingestion/internal/sqlitestore"
	"gridiron_intel/ingestion/internal/usage"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrSyncUnavailable is returned when the configured store cannot hold games and teams
var ErrSyncUnavailable = errors.New("games and teams require DATABASE_DRIVER=postgres")

// App holds the wired components. Close releases them.
type App struct {
	Config  *config.Config
	DB      *repository.Database
	SQLite  *sqlitestore.Store
	Redis   *cache.RedisCache
	Limiter ratelimit.Limiter
	Tracker *usage.Tracker
	Client  *client.Client
	Syncer  *ingest.Syncer
}

// New connects the usage store, optional Redis, and builds the client
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.Tracker = usage.NewTracker(store, usage.WithQuota(cfg.MonthlyQuota))

	if cfg.RedisEnabled {
		a.Redis, err = cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			log.Info().Str("addr", cfg.RedisAddr()).Msg("Redis cache connected")
		}
	}

	a.Limiter = a.newLimiter()

	opts := client.Options{
		BaseURLs: map[models.Sport]string{
			models.SportNFL:    cfg.BaseURL(models.SportNFL),
			models.SportNCAAFB: cfg.BaseURL(models.SportNCAAFB),
			models.SportNCAAMB: cfg.BaseURL(models.SportNCAAMB),
		},
		Timeout:      cfg.APITimeout,
		Limiter:      a.Limiter,
		Usage:        a.Tracker,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		MaxBackoff:   cfg.MaxBackoff,
		ScheduleTTL:  cfg.CacheTTLSchedule,
		HierarchyTTL: cfg.CacheTTLHierarchy,
	}
	if a.Redis != nil {
		opts.Cache = a.Redis
	}
	a.Client = client.NewClient(cfg.Keys, opts)

	if a.DB != nil {
		a.Syncer = ingest.NewSyncer(a.Client, a.DB.Games, a.DB.Teams)
	}

	log.Info().
		Str("database", cfg.DatabaseDriver).
		Str("rate_limit_backend", cfg.RateLimitBackend).
		Int("rate_limit", cfg.RateLimit).
		Dur("rate_window", cfg.RateWindow).
		Int("max_retries", cfg.MaxRetries).
		Int("monthly_quota", a.Tracker.Quota()).
		Msg("Sportradar client initialized")

	return a, nil
}

func (a *App) openStore(ctx context.Context) (usage.Store, error) {
	cfg := a.Config

	if cfg.DatabaseDriver == "sqlite" {
		store, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		a.SQLite = store
		log.Info().Str("path", store.Path()).Msg("SQLite usage store opened")
		return store, nil
	}

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	a.DB = db
	return db.APIUsage, nil
}

// newLimiter picks the shared Redis window when configured and reachable
func (a *App) newLimiter() ratelimit.Limiter {
	cfg := a.Config
	if cfg.RateLimitBackend == "redis" {
		if a.Redis != nil {
			return ratelimit.NewRedisWindow(a.Redis.Client(), "gridiron:ratelimit", cfg.RateLimit, cfg.RateWindow)
		}
		log.Warn().Msg("RATE_LIMIT_BACKEND=redis but Redis is unavailable, using in-process limiter")
	}
	return ratelimit.NewTokenBucket(cfg.RateLimit, cfg.RateWindow)
}

// RequireSyncer returns the syncer or ErrSyncUnavailable
func (a *App) RequireSyncer() (*ingest.Syncer, error) {
	if a.Syncer == nil {
		return nil, ErrSyncUnavailable
	}
	return a.Syncer, nil
}

// RequireDB returns the game and team database, or ErrSyncUnavailable
func (a *App) RequireDB() (*repository.Database, error) {
	if a.DB == nil {
		return nil, ErrSyncUnavailable
	}
	return a.DB, nil
}

// Close releases connections
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
	if a.SQLite != nil {
		if err := a.SQLite.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close SQLite store")
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// SetupLogger configures the global zerolog logger
func SetupLogger(appEnv, logLevel string) {
	// Pretty console logging in development
	if appEnv == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if logLevel != "" {
		if parsed, err := zerolog.ParseLevel(logLevel); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
}

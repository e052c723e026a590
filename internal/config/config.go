package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gridiron_intel/ingestion/internal/models"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// MaxRetriesLimit bounds SPORTSRADAR_MAX_RETRIES
const MaxRetriesLimit = 10

// Config holds all application configuration
type Config struct {
	// Sportradar API keys, one per sport (see LoadAPIKeys)
	Keys APIKeys `ignored:"true"`

	// Sportradar API
	NFLBaseURL    string        `envconfig:"SPORTSRADAR_NFL_BASE_URL" default:"https://api.sportradar.us/nfl/official/trial/v7/en"`
	NCAAFBBaseURL string        `envconfig:"SPORTSRADAR_NCAAFB_BASE_URL" default:"https://api.sportradar.us/ncaafb/trial/v7/en"`
	NCAAMBBaseURL string        `envconfig:"SPORTSRADAR_NCAAMB_BASE_URL" default:"https://api.sportradar.us/ncaamb/trial/v8/en"`
	APITimeout    time.Duration `envconfig:"SPORTSRADAR_TIMEOUT" default:"30s"`

	// API Rate Limiting: RateLimit calls per RateWindow
	RateLimit        int           `envconfig:"SPORTSRADAR_RATE_LIMIT" default:"1"`
	RateWindow       time.Duration `envconfig:"SPORTSRADAR_RATE_WINDOW" default:"1s"`
	RateLimitBackend string        `envconfig:"RATE_LIMIT_BACKEND" default:"memory"`
	MaxRetries       int           `envconfig:"SPORTSRADAR_MAX_RETRIES" default:"1"`
	RetryBackoff     time.Duration `envconfig:"SPORTSRADAR_RETRY_BACKOFF" default:"2s"`
	MaxBackoff       time.Duration `envconfig:"SPORTSRADAR_MAX_BACKOFF" default:"30s"`

	// Quota accounting
	MonthlyQuota int `envconfig:"SPORTSRADAR_MONTHLY_QUOTA" default:"1000"`

	// Database
	DatabaseDriver   string `envconfig:"DATABASE_DRIVER" default:"postgres"`
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"gridiron"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"gridiron_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" default:""`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`
	SQLitePath       string `envconfig:"SQLITE_PATH" default:"data/gridiron.db"`

	// Redis
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Caching TTL
	CacheTTLSchedule  time.Duration `envconfig:"CACHE_TTL_SCHEDULE" default:"6h"`
	CacheTTLHierarchy time.Duration `envconfig:"CACHE_TTL_HIERARCHY" default:"24h"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Sync
	SyncSports     []string `envconfig:"SYNC_SPORTS" default:"nfl"`
	SyncSeason     int      `envconfig:"SYNC_SEASON" default:"0"`
	SyncSeasonType string   `envconfig:"SYNC_SEASON_TYPE" default:"REG"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"false"`
	NightlySyncCron    string `envconfig:"NIGHTLY_SYNC_CRON" default:"0 3 * * *"`
	UsageCheckCron     string `envconfig:"USAGE_CHECK_CRON" default:"@hourly"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	keys, err := LoadAPIKeys()
	if err != nil {
		return nil, err
	}
	cfg.Keys = keys

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.RateLimit <= 0 {
		return fmt.Errorf("SPORTSRADAR_RATE_LIMIT must be positive")
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("SPORTSRADAR_RATE_WINDOW must be positive")
	}
	if c.MaxRetries < 0 || c.MaxRetries > MaxRetriesLimit {
		return fmt.Errorf("SPORTSRADAR_MAX_RETRIES must be between 0 and %d", MaxRetriesLimit)
	}
	if c.MonthlyQuota <= 0 {
		return fmt.Errorf("SPORTSRADAR_MONTHLY_QUOTA must be positive")
	}

	switch c.RateLimitBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("RATE_LIMIT_BACKEND must be memory or redis, got %q", c.RateLimitBackend)
	}
	if c.RateLimitBackend == "redis" && !c.RedisEnabled {
		return fmt.Errorf("RATE_LIMIT_BACKEND=redis requires REDIS_ENABLED")
	}

	switch c.DatabaseDriver {
	case "postgres":
		if c.DatabasePassword == "" {
			return fmt.Errorf("DATABASE_PASSWORD is required")
		}
	case "sqlite":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
	}

	// Only sports that are synced need a key at startup
	sports, err := c.Sports()
	if err != nil {
		return err
	}
	for _, sport := range sports {
		if _, err := c.Keys.Key(sport); err != nil {
			return err
		}
	}

	return nil
}

// Sports returns the parsed SYNC_SPORTS list
func (c *Config) Sports() ([]models.Sport, error) {
	sports := make([]models.Sport, 0, len(c.SyncSports))
	for _, raw := range c.SyncSports {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		sport, err := models.ParseSport(raw)
		if err != nil {
			return nil, fmt.Errorf("SYNC_SPORTS: %w", err)
		}
		sports = append(sports, sport)
	}
	return sports, nil
}

// Season returns SYNC_SEASON, or the season in progress at now.
// January and February belong to the previous year's season.
func (c *Config) Season(now time.Time) int {
	if c.SyncSeason > 0 {
		return c.SyncSeason
	}
	if now.Month() < time.March {
		return now.Year() - 1
	}
	return now.Year()
}

// BaseURL returns the Sportradar base URL for sport
func (c *Config) BaseURL(sport models.Sport) string {
	switch sport {
	case models.SportNCAAFB:
		return c.NCAAFBBaseURL
	case models.SportNCAAMB:
		return c.NCAAMBBaseURL
	default:
		return c.NFLBaseURL
	}
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

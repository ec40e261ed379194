// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Cache drivers accepted in CACHE_DRIVER.
const (
	CacheNone     = "none"
	CachePostgres = "postgres"
	CacheSQLite   = "sqlite"
	CacheRedis    = "redis"
)

// maxCoordPrecision is the most decimal digits a float64 coordinate carries.
const maxCoordPrecision = 15

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Defaults to 8 MiB, enough for a map snapshot.
	MaxBodyBytes int64

	Model   ModelConfig
	Planner PlannerConfig
	Cache   CacheConfig
	Export  ExportConfig
}

// ModelConfig configures the generative model.
type ModelConfig struct {
	APIKey     string // GEMINI_API_KEY, required
	Name       string // GEMINI_MODEL
	BaseURL    string // GEMINI_BASE_URL, empty means the public endpoint
	MaxRetries uint64 // GEMINI_MAX_RETRIES
}

// PlannerConfig configures itinerary building and session housekeeping.
type PlannerConfig struct {
	CoordPrecision int           // COORD_PRECISION, decimal digits kept before matching; -1 disables rounding
	SessionTTL     time.Duration // SESSION_TTL, idle sessions older than this are swept
}

// CacheConfig selects and configures the model response cache.
type CacheConfig struct {
	Driver      string        // CACHE_DRIVER: none, postgres, sqlite, redis
	TTL         time.Duration // CACHE_TTL, zero keeps entries forever
	DatabaseURL string        // DATABASE_URL, required for postgres
	SQLitePath  string        // SQLITE_PATH
	RedisAddr   string        // REDIS_ADDR, required for redis
	RedisDB     int           // REDIS_DB
}

// ExportConfig configures PDF upload. Uploads are disabled when Bucket is empty.
type ExportConfig struct {
	Bucket        string
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// Enabled reports whether exports should be uploaded to object storage.
func (e ExportConfig) Enabled() bool {
	return e.Bucket != ""
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, together
// with every value that failed to parse.
func Load() (Config, error) {
	var errs error
	retries := getInt64(&errs, "GEMINI_MAX_RETRIES", 3)
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		MaxBodyBytes: getInt64(&errs, "MAX_BODY_BYTES", 8<<20),
		Model: ModelConfig{
			APIKey:     os.Getenv("GEMINI_API_KEY"),
			Name:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			BaseURL:    os.Getenv("GEMINI_BASE_URL"),
		},
		Planner: PlannerConfig{
			CoordPrecision: int(getInt64(&errs, "COORD_PRECISION", 6)),
			SessionTTL:     getDuration(&errs, "SESSION_TTL", 2*time.Hour),
		},
		Cache: CacheConfig{
			Driver:      strings.ToLower(getEnv("CACHE_DRIVER", CacheNone)),
			TTL:         getDuration(&errs, "CACHE_TTL", 24*time.Hour),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			SQLitePath:  getEnv("SQLITE_PATH", "dayplanner.db"),
			RedisAddr:   os.Getenv("REDIS_ADDR"),
			RedisDB:     int(getInt64(&errs, "REDIS_DB", 0)),
		},
		Export: ExportConfig{
			Bucket:        os.Getenv("EXPORT_BUCKET"),
			Endpoint:      os.Getenv("EXPORT_ENDPOINT"),
			Region:        getEnv("EXPORT_REGION", "us-east-1"),
			AccessKey:     os.Getenv("EXPORT_ACCESS_KEY"),
			SecretKey:     os.Getenv("EXPORT_SECRET_KEY"),
			PublicBaseURL: os.Getenv("EXPORT_PUBLIC_BASE_URL"),
		},
	}

	var missing []string
	if cfg.Model.APIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	switch cfg.Cache.Driver {
	case CacheNone, CacheSQLite:
	case CachePostgres:
		if cfg.Cache.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case CacheRedis:
		if cfg.Cache.RedisAddr == "" {
			missing = append(missing, "REDIS_ADDR")
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("CACHE_DRIVER must be one of none, postgres, sqlite, redis; got %q", cfg.Cache.Driver))
	}
	if p := cfg.Planner.CoordPrecision; p < -1 || p > maxCoordPrecision {
		errs = multierr.Append(errs, fmt.Errorf("COORD_PRECISION must be between -1 and %d; got %d", maxCoordPrecision, p))
	}
	if retries < 0 {
		errs = multierr.Append(errs, fmt.Errorf("GEMINI_MAX_RETRIES must not be negative; got %d", retries))
	} else {
		cfg.Model.MaxRetries = uint64(retries)
	}
	if cfg.MaxBodyBytes <= 0 {
		errs = multierr.Append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}

	if len(missing) > 0 {
		errs = multierr.Append(fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", ")), errs)
	}
	if errs != nil {
		return Config{}, errs
	}
	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(errs *error, key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		*errs = multierr.Append(*errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return fallback
	}
	return n
}

// getDuration accepts Go duration syntax ("90m", "2h"). "0" disables the
// corresponding expiry.
func getDuration(errs *error, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d < 0 {
		*errs = multierr.Append(*errs, fmt.Errorf("%s: %q is not a valid duration", key, v))
		return fallback
	}
	return d
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/score.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Storage backends and sync layouts
// --------------------------------------------------------------------------

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"

	LayoutDocument = "document"
	LayoutWeekly   = "weekly"
)

// DefaultNFLVerseBaseURL is the nflverse-data GitHub releases root.
const DefaultNFLVerseBaseURL = "https://github.com/nflverse/nflverse-data/releases/download"

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database (remote document store)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Local store
	DataDir        string
	StoreBackend   string        // file, postgres
	SyncLayout     string        // document, weekly
	SnapshotReload time.Duration // API re-reads DATA_DIR on this interval; 0 disables

	// Data source
	NFLVerseBaseURL           string
	NFLVerseLocalDir          string // when set, read CSVs from disk instead of downloading
	NFLVerseRequestsPerMinute int
	NFLVerseTimeout           time.Duration
	CurrentSeason             int

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	LogLevel    string

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		DataDir:        envOr("DATA_DIR", "local_data"),
		StoreBackend:   strings.ToLower(envOr("STORE_BACKEND", BackendFile)),
		SyncLayout:     strings.ToLower(envOr("SYNC_LAYOUT", LayoutDocument)),
		SnapshotReload: time.Duration(envInt("SNAPSHOT_RELOAD_SECONDS", 60)) * time.Second,

		NFLVerseBaseURL:           strings.TrimRight(envOr("NFLVERSE_BASE_URL", DefaultNFLVerseBaseURL), "/"),
		NFLVerseLocalDir:          envOr("NFLVERSE_LOCAL_DIR", ""),
		NFLVerseRequestsPerMinute: envInt("NFLVERSE_REQUESTS_PER_MINUTE", 30),
		NFLVerseTimeout:           time.Duration(envInt("NFLVERSE_TIMEOUT_SECONDS", 120)) * time.Second,
		CurrentSeason:             envInt("CURRENT_SEASON", 2024),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		LogLevel:    envOr("LOG_LEVEL", "info"),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}

	switch cfg.StoreBackend {
	case BackendFile, BackendPostgres:
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendFile, BackendPostgres, cfg.StoreBackend)
	}
	switch cfg.SyncLayout {
	case LayoutDocument, LayoutWeekly:
	default:
		return nil, fmt.Errorf("SYNC_LAYOUT must be %q or %q, got %q", LayoutDocument, LayoutWeekly, cfg.SyncLayout)
	}
	if cfg.StoreBackend == BackendPostgres {
		if err := cfg.RequireDatabase(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// RequireDatabase reports an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SlogLevel parses LogLevel, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

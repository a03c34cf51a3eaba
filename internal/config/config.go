package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends selectable with STORAGE_TYPE
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// Config is the server configuration read from the environment
type Config struct {
	Addr                  string
	LogLevel              string
	StorageType           string
	RedisURL              string
	DataDir               string
	SQLitePath            string
	ScoringPolicy         string
	LeaderboardSize       int
	DefaultTotalQuestions int
	SessionTTL            time.Duration
	BcryptCost            int
	CORSOrigins           []string

	// Warnings collects values that were present but unusable; defaults were applied instead
	Warnings []string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the server still starts when .env is absent
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from environment variables only
func FromEnv() Config {
	var cfg Config

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":" + envOr("PORT", "8000")
	}
	cfg.Addr = addr
	cfg.LogLevel = strings.ToUpper(envOr("LOG_LEVEL", "INFO"))
	cfg.StorageType = strings.ToLower(envOr("STORAGE_TYPE", StorageMemory))
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.DataDir = envOr("DATA_DIR", "data")
	cfg.SQLitePath = envOr("SQLITE_PATH", "data/colorsort.db")
	cfg.ScoringPolicy = strings.ToLower(envOr("SCORING_POLICY", "graduated"))
	cfg.LeaderboardSize = cfg.envIntOr("LEADERBOARD_SIZE", 10)
	cfg.DefaultTotalQuestions = cfg.envIntOr("DEFAULT_TOTAL_QUESTIONS", 5)
	cfg.SessionTTL = cfg.envDurationOr("SESSION_TTL", 24*time.Hour)
	cfg.BcryptCost = cfg.envIntOr("BCRYPT_COST", 10)
	cfg.CORSOrigins = splitList(envOr("CORS_ORIGINS", "*"))

	return cfg
}

// Validate reports every setting that cannot be used
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	switch c.StorageType {
	case StorageMemory, StorageFile, StorageSQLite:
	case StorageRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_TYPE %q", c.StorageType))
	}
	if c.StorageType == StorageFile && c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR cannot be empty"))
	}
	if c.StorageType == StorageSQLite && c.SQLitePath == "" {
		errs = append(errs, errors.New("SQLITE_PATH cannot be empty"))
	}
	if c.LeaderboardSize < 1 {
		errs = append(errs, fmt.Errorf("LEADERBOARD_SIZE must be positive, got %d", c.LeaderboardSize))
	}
	if c.DefaultTotalQuestions < 1 {
		errs = append(errs, fmt.Errorf("DEFAULT_TOTAL_QUESTIONS must be positive, got %d", c.DefaultTotalQuestions))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost))
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO", "":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (c *Config) envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid value for %s=%q, using default %d", key, v, def))
	}
	return def
}

func (c *Config) envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid value for %s=%q, using default %s", key, v, def))
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

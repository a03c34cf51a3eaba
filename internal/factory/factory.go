package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/colorsort/internal/config"
	"github.com/mcoot/colorsort/internal/dependencies/clock"
	"github.com/mcoot/colorsort/internal/dependencies/random"
	"github.com/mcoot/colorsort/internal/metrics"
	"github.com/mcoot/colorsort/internal/services/account"
	"github.com/mcoot/colorsort/internal/services/leaderboard"
	"github.com/mcoot/colorsort/internal/services/puzzle"
	"github.com/mcoot/colorsort/internal/services/session"
	"github.com/mcoot/colorsort/internal/sse"
	"github.com/mcoot/colorsort/internal/storage"
	filestorage "github.com/mcoot/colorsort/internal/storage/file"
	"github.com/mcoot/colorsort/internal/storage/memory"
	redisstorage "github.com/mcoot/colorsort/internal/storage/redis"
	sqlitestorage "github.com/mcoot/colorsort/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	StorageName string

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Metrics            *metrics.Metrics
	PuzzleService      *puzzle.Service
	SessionController  *session.Controller
	LeaderboardService *leaderboard.Service
	AccountService     *account.Service
	Hub                *sse.Hub

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis", "file" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DataDir holds the record files when StorageType is "file"
	DataDir string
	// SQLitePath is the database file when StorageType is "sqlite"
	SQLitePath string
	// Session holds session defaults. Zero fields take session.DefaultConfig values.
	Session session.Config
	// LeaderboardSize caps the leaderboard. Zero means leaderboard.DefaultSize.
	LeaderboardSize int
	// Account holds account settings. A zero BcryptCost takes the bcrypt default.
	Account account.Config
}

// ConfigFrom maps server configuration onto factory configuration
func ConfigFrom(cfg config.Config, logger *slog.Logger) Config {
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = cfg.RedisURL
	redisCfg.SessionTTL = cfg.SessionTTL

	return Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		RedisConfig: &redisCfg,
		DataDir:     cfg.DataDir,
		SQLitePath:  cfg.SQLitePath,
		Session: session.Config{
			DefaultScoringPolicy:  cfg.ScoringPolicy,
			DefaultTotalQuestions: cfg.DefaultTotalQuestions,
		},
		LeaderboardSize: cfg.LeaderboardSize,
		Account:         account.Config{BcryptCost: cfg.BcryptCost},
	}
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageMemory
	}

	store, closers, err := newStorage(storageType, cfg, logger)
	if err != nil {
		return nil, err
	}

	app := newWithDependencies(store, clock.New(), random.New(), metrics.New(), cfg, logger)
	app.StorageName = storageType
	app.closers = closers
	return app, nil
}

// newStorage builds the configured backend. File and SQLite keep only the
// durable records; sessions stay in memory for those backends.
func newStorage(storageType string, cfg Config, logger *slog.Logger) (storage.Storage, []io.Closer, error) {
	switch storageType {
	case config.StorageMemory:
		return memory.New(), nil, nil
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig, logger)
		if err != nil {
			return nil, nil, err
		}
		return redisStore, []io.Closer{redisStore}, nil
	case config.StorageFile:
		if cfg.DataDir == "" {
			return nil, nil, errors.New("DataDir required when StorageType is file")
		}
		records, err := filestorage.New(cfg.DataDir, logger)
		if err != nil {
			return nil, nil, err
		}
		return storage.Compose(memory.New(), records), nil, nil
	case config.StorageSQLite:
		if cfg.SQLitePath == "" {
			return nil, nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		records, err := sqlitestorage.New(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return storage.Compose(memory.New(), records), []io.Closer{records}, nil
	default:
		return nil, nil, fmt.Errorf("invalid StorageType %q: must be memory, redis, file or sqlite", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, m *metrics.Metrics, cfg Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	sessionCfg := session.DefaultConfig()
	if cfg.Session.DefaultScoringPolicy != "" {
		sessionCfg.DefaultScoringPolicy = cfg.Session.DefaultScoringPolicy
	}
	if cfg.Session.DefaultTotalQuestions > 0 {
		sessionCfg.DefaultTotalQuestions = cfg.Session.DefaultTotalQuestions
	}
	if cfg.Session.MaxTotalQuestions > 0 {
		sessionCfg.MaxTotalQuestions = cfg.Session.MaxTotalQuestions
	}

	accountCfg := cfg.Account
	if accountCfg.BcryptCost == 0 {
		accountCfg = account.DefaultConfig()
	}

	size := cfg.LeaderboardSize
	if size <= 0 {
		size = leaderboard.DefaultSize
	}

	// Create services
	puzzleService := puzzle.New(rnd)
	sessionController := session.NewController(store, puzzleService, clk, m, logger, sessionCfg)
	leaderboardService := leaderboard.New(store, size, m, logger)
	accountService := account.New(store, clk, m, logger, accountCfg)

	hub := sse.NewHub(logger)
	go hub.Run()
	leaderboardService.SetBroadcaster(sse.NewBroadcaster(hub, logger))

	return &App{
		Storage:            store,
		StorageName:        config.StorageMemory,
		Clock:              clk,
		Random:             rnd,
		Metrics:            m,
		PuzzleService:      puzzleService,
		SessionController:  sessionController,
		LeaderboardService: leaderboardService,
		AccountService:     accountService,
		Hub:                hub,
	}
}

// Close stops the SSE hub and releases storage connections
func (a *App) Close() error {
	a.Hub.Close()

	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

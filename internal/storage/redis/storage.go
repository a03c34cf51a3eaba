package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/colorsort/internal/model"
	"github.com/mcoot/colorsort/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	logger *slog.Logger
}

// leaderboardRow is one element of the leaderboard list
type leaderboardRow struct {
	Username string `json:"username"`
	Score    *int   `json:"score"`
}

// New creates a new Redis storage instance
func New(cfg Config, logger *slog.Logger) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, logger *slog.Logger) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection is alive
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) NextSessionID(ctx context.Context) (model.SessionID, error) {
	id, err := s.client.Incr(ctx, sessionSeqKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("incrementing session counter: %w", err)
	}
	return model.SessionID(id), nil
}

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.ID), data, s.cfg.SessionTTL).Err()
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: session %d: %v", model.ErrMalformedStore, id, err)
	}
	return &session, nil
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	// SETNX makes the uniqueness check and the insert a single step
	created, err := s.client.SetNX(ctx, accountKey(account.Username), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrDuplicateUsername
	}
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	data, err := s.client.Get(ctx, accountKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("%w: account %q: %v", model.ErrMalformedStore, username, err)
	}
	return &account, nil
}

// Leaderboard operations

// GetLeaderboard returns the stored rows in order. Rows that fail to decode
// or lack a username or score are logged and skipped.
func (s *Storage) GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	rows, err := s.client.LRange(ctx, leaderboardKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(rows))
	for i, raw := range rows {
		var row leaderboardRow
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			s.logger.Warn("dropping malformed leaderboard row",
				slog.Int("index", i),
				slog.String("error", fmt.Errorf("%w: %v", model.ErrMalformedStore, err).Error()),
			)
			continue
		}
		if row.Username == "" || row.Score == nil {
			s.logger.Warn("dropping leaderboard row with missing fields", slog.Int("index", i))
			continue
		}
		entries = append(entries, model.LeaderboardEntry{Username: row.Username, Score: *row.Score})
	}
	return entries, nil
}

func (s *Storage) SaveLeaderboard(ctx context.Context, entries []model.LeaderboardEntry) error {
	rows := make([]any, 0, len(entries))
	for _, entry := range entries {
		score := entry.Score
		data, err := json.Marshal(leaderboardRow{Username: entry.Username, Score: &score})
		if err != nil {
			return err
		}
		rows = append(rows, string(data))
	}

	// Replace the list atomically
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, leaderboardKey())
	if len(rows) > 0 {
		pipe.RPush(ctx, leaderboardKey(), rows...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

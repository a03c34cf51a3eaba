package leaderboard

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/mcoot/colorsort/internal/metrics"
	"github.com/mcoot/colorsort/internal/model"
	"github.com/mcoot/colorsort/internal/storage"
)

// DefaultSize is the number of rows the leaderboard keeps
const DefaultSize = 10

// Update inserts newEntry (if any), stable-sorts by score descending,
// truncates to limit and assigns ranks. entries is never modified.
// Equal scores keep their existing order, with the new entry placed after them.
func Update(entries []model.LeaderboardEntry, newEntry *model.LeaderboardEntry, limit int) []model.RankedEntry {
	working := make([]model.LeaderboardEntry, 0, len(entries)+1)
	working = append(working, entries...)
	if newEntry != nil {
		working = append(working, *newEntry)
	}

	slices.SortStableFunc(working, func(a, b model.LeaderboardEntry) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if limit >= 0 && len(working) > limit {
		working = working[:limit]
	}

	ranked := make([]model.RankedEntry, len(working))
	for i, e := range working {
		ranked[i] = model.RankedEntry{Rank: i + 1, Username: e.Username, Score: e.Score}
	}
	return ranked
}

// Entries strips ranks for storage
func Entries(ranked []model.RankedEntry) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, len(ranked))
	for i, r := range ranked {
		entries[i] = model.LeaderboardEntry{Username: r.Username, Score: r.Score}
	}
	return entries
}

// Broadcaster is notified with the new ranking after every accepted submission
type Broadcaster interface {
	BroadcastLeaderboard(entries []model.RankedEntry)
}

// Service owns the shared top-N leaderboard
type Service struct {
	storage     storage.RecordStore
	size        int
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	logger      *slog.Logger

	// Serializes load -> update -> save
	mu sync.Mutex
}

// New creates a new leaderboard Service; size <= 0 selects DefaultSize
func New(storage storage.RecordStore, size int, metrics *metrics.Metrics, logger *slog.Logger) *Service {
	if size <= 0 {
		size = DefaultSize
	}
	return &Service{
		storage: storage,
		size:    size,
		metrics: metrics,
		logger:  logger,
	}
}

// SetBroadcaster registers a listener for leaderboard changes
func (s *Service) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// Size returns the maximum number of rows kept
func (s *Service) Size() int {
	return s.size
}

// load reads the stored rows. A malformed store is logged and read as empty.
func (s *Service) load(ctx context.Context) ([]model.LeaderboardEntry, error) {
	entries, err := s.storage.GetLeaderboard(ctx)
	if err != nil {
		if errors.Is(err, model.ErrMalformedStore) {
			s.logger.Warn("leaderboard store unreadable, starting empty", slog.String("error", err.Error()))
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

// Submit records a score and returns the new ranking
func (s *Service) Submit(ctx context.Context, username string, score int) ([]model.RankedEntry, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", model.ErrInvalidEntry)
	}
	if score < 0 {
		return nil, fmt.Errorf("%w: score must not be negative", model.ErrInvalidEntry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	ranked := Update(current, &model.LeaderboardEntry{Username: username, Score: score}, s.size)
	if err := s.storage.SaveLeaderboard(ctx, Entries(ranked)); err != nil {
		s.logger.Error("failed to save leaderboard", slog.String("error", err.Error()))
		return nil, err
	}

	s.metrics.LeaderboardSubmitted()
	s.logger.Info("score submitted",
		slog.String("username", username),
		slog.Int("score", score),
	)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastLeaderboard(slices.Clone(ranked))
	}

	return ranked, nil
}

// Top returns the current ranking
func (s *Service) Top(ctx context.Context) ([]model.RankedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return Update(current, nil, s.size), nil
}

package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mcoot/colorsort/internal/model"
	"github.com/mcoot/colorsort/internal/storage"
)

const (
	accountsFile    = "accounts.json"
	leaderboardFile = "leaderboard.json"
)

type accountRecord struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r accountRecord) valid() bool {
	return r.Username != "" && r.PasswordHash != ""
}

type leaderboardRecord struct {
	Username string `json:"username"`
	Score    *int   `json:"score"`
}

func (r leaderboardRecord) valid() bool {
	return r.Username != "" && r.Score != nil
}

// record is a persisted row that knows whether its required fields are set
type record interface {
	accountRecord | leaderboardRecord
	valid() bool
}

// Storage keeps accounts and the leaderboard as JSON arrays in a directory.
//
// Each array element is decoded on its own: an element that does not decode
// or lacks a required field is logged and dropped, the rest load normally.
// A file that is not a JSON array at all is logged and read as empty.
type Storage struct {
	mu     sync.Mutex
	dir    string
	logger *slog.Logger
}

// New creates a file store rooted at dir, creating the directory if needed
func New(dir string, logger *slog.Logger) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &Storage{dir: dir, logger: logger}, nil
}

// Ensure Storage implements the interface
var _ storage.RecordStore = (*Storage)(nil)

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := load[accountRecord](s, accountsFile)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.Username == account.Username {
			return model.ErrDuplicateUsername
		}
	}

	records = append(records, accountRecord{
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
		CreatedAt:    account.CreatedAt,
	})
	return s.write(accountsFile, records)
}

func (s *Storage) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := load[accountRecord](s, accountsFile)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.Username == username {
			return &model.Account{
				Username:     r.Username,
				PasswordHash: r.PasswordHash,
				CreatedAt:    r.CreatedAt,
			}, nil
		}
	}
	return nil, model.ErrAccountNotFound
}

// Leaderboard operations

func (s *Storage) GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := load[leaderboardRecord](s, leaderboardFile)
	if err != nil {
		return nil, err
	}
	entries := make([]model.LeaderboardEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, model.LeaderboardEntry{Username: r.Username, Score: *r.Score})
	}
	return entries, nil
}

func (s *Storage) SaveLeaderboard(ctx context.Context, entries []model.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]leaderboardRecord, 0, len(entries))
	for _, e := range entries {
		score := e.Score
		records = append(records, leaderboardRecord{Username: e.Username, Score: &score})
	}
	return s.write(leaderboardFile, records)
}

// load decodes the records in name. A missing file yields no records.
func load[T record](s *Storage, name string) ([]T, error) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("treating corrupt store file as empty",
			slog.String("path", path),
			slog.String("error", fmt.Errorf("%w: %v", model.ErrMalformedStore, err).Error()),
		)
		return nil, nil
	}

	records := make([]T, 0, len(raw))
	for i, elem := range raw {
		var r T
		if err := json.Unmarshal(elem, &r); err != nil {
			s.logger.Warn("dropping malformed record",
				slog.String("path", path),
				slog.Int("index", i),
				slog.String("error", fmt.Errorf("%w: %v", model.ErrMalformedStore, err).Error()),
			)
			continue
		}
		if !r.valid() {
			s.logger.Warn("dropping record with missing fields",
				slog.String("path", path),
				slog.Int("index", i),
			)
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// write replaces name atomically via a temp file and rename
func (s *Storage) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/mcoot/colorsort/internal/model"
	"github.com/mcoot/colorsort/internal/storage"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		username TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS leaderboard (
		position INTEGER PRIMARY KEY,
		username TEXT NOT NULL,
		score INTEGER NOT NULL
	)`,
}

// Storage keeps accounts and the leaderboard in a SQLite database
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens (or creates) the database at path and runs migrations
func New(path string, logger *slog.Logger) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers so the driver never reports SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Storage{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Ensure Storage implements the interface
var _ storage.RecordStore = (*Storage)(nil)

func (s *Storage) migrate() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	query, args, err := sqlBuilder.Insert("accounts").
		Options("OR IGNORE").
		Columns("username", "password_hash", "created_at").
		Values(account.Username, account.PasswordHash, account.CreatedAt.UTC().Format(time.RFC3339Nano)).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("inserting account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrDuplicateUsername
	}
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	query, args, err := sqlBuilder.Select("username", "password_hash", "created_at").
		From("accounts").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var account model.Account
	var createdAt string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&account.Username, &account.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	if account.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		s.logger.Warn("account has unreadable created_at",
			slog.String("username", username),
			slog.String("value", createdAt),
		)
	}
	return &account, nil
}

// Leaderboard operations

func (s *Storage) GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	query, args, err := sqlBuilder.Select("username", "score").
		From("leaderboard").
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var (
			username sql.NullString
			score    any
		)
		if err := rows.Scan(&username, &score); err != nil {
			s.logger.Warn("dropping unreadable leaderboard row",
				slog.String("error", fmt.Errorf("%w: %v", model.ErrMalformedStore, err).Error()),
			)
			continue
		}
		n, ok := score.(int64)
		if !username.Valid || username.String == "" || !ok {
			s.logger.Warn("dropping malformed leaderboard row",
				slog.String("username", username.String),
				slog.Any("score", score),
			)
			continue
		}
		entries = append(entries, model.LeaderboardEntry{Username: username.String, Score: int(n)})
	}
	return entries, rows.Err()
}

func (s *Storage) SaveLeaderboard(ctx context.Context, entries []model.LeaderboardEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM leaderboard"); err != nil {
		return fmt.Errorf("clearing leaderboard: %w", err)
	}

	if len(entries) > 0 {
		insert := sqlBuilder.Insert("leaderboard").Columns("position", "username", "score")
		for i, e := range entries {
			insert = insert.Values(i, e.Username, e.Score)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("writing leaderboard: %w", err)
		}
	}

	return tx.Commit()
}

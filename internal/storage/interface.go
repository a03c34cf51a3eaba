package storage

import (
	"context"

	"github.com/mcoot/colorsort/internal/model"
)

// SessionStore is the session registry: an id counter plus session records
type SessionStore interface {
	// NextSessionID returns the next id from a counter that starts at 1 and never repeats
	NextSessionID(ctx context.Context) (model.SessionID, error)
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
}

// RecordStore holds the durable records: accounts and the leaderboard
type RecordStore interface {
	// CreateAccount stores a new account, failing with model.ErrDuplicateUsername
	// if the username is taken. The check and insert are atomic.
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, username string) (*model.Account, error)

	GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
	SaveLeaderboard(ctx context.Context, entries []model.LeaderboardEntry) error
}

// Storage defines the interface for data persistence
type Storage interface {
	SessionStore
	RecordStore
}

type composite struct {
	SessionStore
	RecordStore
}

// Compose builds a Storage from separate session and record backends
func Compose(sessions SessionStore, records RecordStore) Storage {
	return composite{SessionStore: sessions, RecordStore: records}
}

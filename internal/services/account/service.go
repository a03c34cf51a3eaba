package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/colorsort/internal/dependencies/clock"
	"github.com/mcoot/colorsort/internal/metrics"
	"github.com/mcoot/colorsort/internal/model"
	"github.com/mcoot/colorsort/internal/storage"
)

// CredentialHasher turns credentials into stored hashes and checks them
type CredentialHasher interface {
	Hash(credential string) (string, error)
	Verify(hash, credential string) bool
}

// BcryptHasher hashes credentials with bcrypt
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(credential string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h BcryptHasher) Verify(hash, credential string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(credential)) == nil
}

var _ CredentialHasher = BcryptHasher{}

// Config holds configuration for the account service
type Config struct {
	BcryptCost int
}

// DefaultConfig returns default account configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Service handles account registration and login
type Service struct {
	storage storage.RecordStore
	hasher  CredentialHasher
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new account Service backed by bcrypt
func New(storage storage.RecordStore, clock clock.Clock, metrics *metrics.Metrics, logger *slog.Logger, cfg Config) *Service {
	return NewWithHasher(storage, BcryptHasher{Cost: cfg.BcryptCost}, clock, metrics, logger)
}

// NewWithHasher creates an account Service with a custom credential hasher
func NewWithHasher(storage storage.RecordStore, hasher CredentialHasher, clock clock.Clock, metrics *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		hasher:  hasher,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// Register creates an account. A taken username yields model.ErrDuplicateUsername.
func (s *Service) Register(ctx context.Context, username, credential string) (*model.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || credential == "" {
		s.metrics.AccountEvent("register", "invalid")
		return nil, fmt.Errorf("%w: username and password are required", model.ErrInvalidCredentials)
	}

	hash, err := s.hasher.Hash(credential)
	if err != nil {
		s.metrics.AccountEvent("register", "invalid")
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidCredentials, err)
	}

	account := &model.Account{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.storage.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, model.ErrDuplicateUsername) {
			s.metrics.AccountEvent("register", "duplicate")
			s.logger.Info("registration rejected, username taken", slog.String("username", username))
		} else {
			s.logger.Error("failed to create account",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	s.metrics.AccountEvent("register", "ok")
	s.logger.Info("account created", slog.String("username", username))
	return account, nil
}

// Login checks a username and credential. Unknown users and wrong
// credentials both yield model.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, credential string) (*model.Account, error) {
	username = strings.TrimSpace(username)
	account, err := s.storage.GetAccount(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			s.metrics.AccountEvent("login", "failed")
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(account.PasswordHash, credential) {
		s.metrics.AccountEvent("login", "failed")
		s.logger.Info("login failed", slog.String("username", username))
		return nil, model.ErrInvalidCredentials
	}

	s.metrics.AccountEvent("login", "ok")
	s.logger.Info("login succeeded", slog.String("username", username))
	return account, nil
}

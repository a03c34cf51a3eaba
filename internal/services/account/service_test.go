package account

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/colorsort/internal/dependencies/mocks"
	"github.com/mcoot/colorsort/internal/model"
	"github.com/mcoot/colorsort/internal/storage/memory"
	"github.com/mcoot/colorsort/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, nil, testutil.NopLogger(), Config{BcryptCost: bcrypt.MinCost})
	s.ctx = context.Background()
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	account, err := s.service.Register(s.ctx, "alice", "secret")
	s.Require().NoError(err)

	s.Equal("alice", account.Username)
	s.Equal(s.clock.Now(), account.CreatedAt)
	s.NotEqual("secret", account.PasswordHash)
}

func (s *ServiceSuite) TestRegisterStoresHash() {
	_, err := s.service.Register(s.ctx, "alice", "secret")
	s.Require().NoError(err)

	stored, err := s.storage.GetAccount(s.ctx, "alice")
	s.Require().NoError(err)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret")))
}

func (s *ServiceSuite) TestRegisterDuplicateUsername() {
	_, err := s.service.Register(s.ctx, "alice", "secret")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "other")
	s.ErrorIs(err, model.ErrDuplicateUsername)

	// Original credential still works
	_, err = s.service.Login(s.ctx, "alice", "secret")
	s.NoError(err)
}

func (s *ServiceSuite) TestRegisterRequiresFields() {
	_, err := s.service.Register(s.ctx, "", "secret")
	s.ErrorIs(err, model.ErrInvalidCredentials)

	_, err = s.service.Register(s.ctx, "  ", "secret")
	s.ErrorIs(err, model.ErrInvalidCredentials)

	_, err = s.service.Register(s.ctx, "alice", "")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestRegisterRejectsOverlongCredential() {
	_, err := s.service.Register(s.ctx, "alice", strings.Repeat("x", 100))
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestConcurrentRegisterOnlyOneWins() {
	const n = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.service.Register(s.ctx, "bob", "pw"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, wins)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	_, err := s.service.Register(s.ctx, "alice", "secret")
	s.Require().NoError(err)

	account, err := s.service.Login(s.ctx, "alice", "secret")
	s.Require().NoError(err)
	s.Equal("alice", account.Username)
}

func (s *ServiceSuite) TestLoginWrongCredential() {
	_, err := s.service.Register(s.ctx, "alice", "secret")
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "secret")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

// plainHasher compares credentials verbatim
type plainHasher struct{}

func (plainHasher) Hash(c string) (string, error) { return c, nil }
func (plainHasher) Verify(h, c string) bool      { return h == c }

func (s *ServiceSuite) TestCustomHasher() {
	service := NewWithHasher(s.storage, plainHasher{}, s.clock, nil, testutil.NopLogger())

	account, err := service.Register(s.ctx, "carol", "pw")
	s.Require().NoError(err)
	s.Equal("pw", account.PasswordHash)

	_, err = service.Login(s.ctx, "carol", "pw")
	s.NoError(err)
}

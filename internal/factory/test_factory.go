package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/colorsort/internal/dependencies/mocks"
	"github.com/mcoot/colorsort/internal/metrics"
	"github.com/mcoot/colorsort/internal/services/account"
	"github.com/mcoot/colorsort/internal/storage/memory"
	"github.com/mcoot/colorsort/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Callers should Close it when done to stop the SSE hub.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, metrics.New(), Config{
		Account: account.Config{BcryptCost: bcrypt.MinCost},
	}, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

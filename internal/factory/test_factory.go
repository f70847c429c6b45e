package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gripp-game/gripp-api/internal/dependencies/mocks"
	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/services/auth"
	"github.com/gripp-game/gripp-api/internal/storage/memory"
	"github.com/gripp-game/gripp-api/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(auth.DefaultConfig())
}

// NewTestAppWithConfig creates a test App with a custom auth configuration
func NewTestAppWithConfig(authCfg auth.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	hasher := &auth.BcryptHasher{Cost: bcrypt.MinCost}

	app := newWithDependencies(store, mockClock, mockRandom, hasher, authCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// TestStatements is a small catalog with levels [3, 1, 2, 1]
func TestStatements() []model.Statement {
	return []model.Statement{
		{ID: "s1", Text: "has climbed a mountain", Level: 3},
		{ID: "s2", Text: "has been to Paris", Level: 1},
		{ID: "s3", Text: "can juggle", Level: 2},
		{ID: "s4", Text: "owns a cat", Level: 1},
	}
}

// LoadTestStatements seeds the test catalog
func (t *TestApp) LoadTestStatements() error {
	return t.Seeder(TestStatements()).Reset(context.Background())
}
